package servus

import (
	errs "github.com/servuscms/servus/internal/errors"
	"github.com/servuscms/servus/internal/relay"
	"github.com/servuscms/servus/internal/signer"
)

// Failure taxonomy, re-exported so callers compare against a single set of
// symbols.
//
// ErrSignerUnavailable is a wait-and-retry condition: the signing capability
// has not been injected yet. ErrNoEOSE marks an inconclusive query whose
// partial results must not be read as "empty". ErrMalformedRecord is only
// ever attached to individual skipped records, never to a whole stream.
var (
	ErrSignerUnavailable = signer.ErrUnavailable
	ErrNoEOSE            = errs.ErrNoEOSE
	ErrMalformedRecord   = errs.ErrMalformedRecord
	ErrConnSpent         = relay.ErrSpent
)

// RemoteRejection is an explicit negative acknowledgement from the remote
// side; optimistic local state must be rolled back when one surfaces.
type RemoteRejection = errs.RemoteRejection

// TransportError wraps a connection that could not be opened or dropped
// mid-operation. No operation retries automatically.
type TransportError = errs.TransportError

// IsRecoverable reports whether reissuing the failed operation could
// succeed.
func IsRecoverable(err error) bool { return errs.IsRecoverable(err) }
