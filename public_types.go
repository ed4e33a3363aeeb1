package servus

import (
	"context"

	"github.com/servuscms/servus/internal/nostr"
	"github.com/servuscms/servus/internal/records"
	"github.com/servuscms/servus/internal/signer"
)

// Public type aliases so SDK consumers can import only the servus package.
type (
	// Domain records
	Record = records.Record
	Post   = records.Post
	Note   = records.Note

	// Wire model
	Event  = nostr.Event
	Filter = nostr.Filter

	// Signing capability
	Signer         = signer.Signer
	SignerProvider = signer.Provider
)

// Event kinds understood by the SDK.
const (
	KindNote          = nostr.KindNote
	KindDelete        = nostr.KindDelete
	KindBlossomAuth   = nostr.KindBlossomAuth
	KindHTTPAuth      = nostr.KindHTTPAuth
	KindLongForm      = nostr.KindLongForm
	KindLongFormDraft = nostr.KindLongFormDraft
	KindCustomData    = nostr.KindCustomData
)

// DeriveSlug derives an addressable slug from a post title. The SDK derives
// a slug at most once per record; persisted records keep theirs.
func DeriveSlug(title string) string { return records.DeriveSlug(title) }

// NewLocalSigner builds the in-process dev signer from a 32-byte hex secret.
func NewLocalSigner(secretHex string) (Signer, error) { return signer.NewLocal(secretHex) }

// GenerateLocalSigner builds the in-process dev signer with a fresh key.
func GenerateLocalSigner() (Signer, error) { return signer.GenerateLocal() }

// AwaitSigner waits for a host-injected signing capability with backoff
// under ctx. It never fails fast on ErrSignerUnavailable.
func AwaitSigner(ctx context.Context, p SignerProvider) (Signer, error) {
	return signer.Await(ctx, p)
}
