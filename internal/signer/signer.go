// Package signer abstracts the key-holding capability that signs events.
// The capability is host-provided and opaque: the SDK never sees private key
// material, and the capability may only become available some time after
// startup, so acquisition is modelled as an awaitable provider rather than a
// fail-fast lookup.
package signer

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/servuscms/servus/internal/nostr"
)

// ErrUnavailable means the signing capability has not been injected yet.
// It is a wait-and-retry condition, not a hard failure.
var ErrUnavailable = errors.New("signer: capability unavailable")

// Signer signs events on behalf of one key.
type Signer interface {
	// PublicKey returns the hex-encoded x-only public key of the signing
	// identity.
	PublicKey(ctx context.Context) (string, error)
	// Sign fills in PubKey, ID and Sig on ev. CreatedAt, Kind, Tags and
	// Content must already be set. The call suspends until the capability
	// responds; cancellation is owned by ctx.
	Sign(ctx context.Context, ev *nostr.Event) error
}

// Provider hands out the signer once the host has injected it, returning
// ErrUnavailable until then.
type Provider func() (Signer, error)

// Await polls the provider with exponential backoff until it yields a
// signer, the provider fails hard, or ctx is done. There is no elapsed-time
// cap; the caller's context owns cancellation.
func Await(ctx context.Context, p Provider) (Signer, error) {
	var s Signer
	op := func() error {
		got, err := p()
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				return err
			}
			return backoff.Permanent(err)
		}
		s = got
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 50 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = 0

	if err := backoff.Retry(op, backoff.WithContext(exp, ctx)); err != nil {
		return nil, err
	}
	return s, nil
}

// Static wraps an already-available signer as a Provider.
func Static(s Signer) Provider {
	return func() (Signer, error) { return s, nil }
}
