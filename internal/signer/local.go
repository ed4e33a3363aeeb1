package signer

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/servuscms/servus/internal/nostr"
)

// Local signs events with an in-process secp256k1 key. It exists for the CLI
// and for tests; production deployments inject the host capability instead.
type Local struct {
	key *btcec.PrivateKey
}

// NewLocal builds a Local signer from a 32-byte hex secret key.
func NewLocal(secretHex string) (*Local, error) {
	b, err := nostr.FromHex(secretHex)
	if err != nil {
		return nil, fmt.Errorf("signer: secret key: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("signer: secret key must be 32 bytes, got %d", len(b))
	}
	key, _ := btcec.PrivKeyFromBytes(b)
	return &Local{key: key}, nil
}

// GenerateLocal creates a Local signer with a fresh random key.
func GenerateLocal() (*Local, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("signer: generate key: %w", err)
	}
	return &Local{key: key}, nil
}

// PublicKey returns the x-only public key in hex.
func (l *Local) PublicKey(_ context.Context) (string, error) {
	return nostr.ToHex(schnorr.SerializePubKey(l.key.PubKey())), nil
}

// Sign computes the event id and produces a BIP-340 signature over it.
func (l *Local) Sign(ctx context.Context, ev *nostr.Event) error {
	pub, err := l.PublicKey(ctx)
	if err != nil {
		return err
	}
	ev.PubKey = pub
	if ev.Tags == nil {
		ev.Tags = [][]string{}
	}
	id, err := nostr.ComputeID(ev)
	if err != nil {
		return err
	}
	ev.ID = id
	digest, err := nostr.FromHex(id)
	if err != nil {
		return err
	}
	sig, err := schnorr.Sign(l.key, digest)
	if err != nil {
		return fmt.Errorf("signer: sign: %w", err)
	}
	ev.Sig = nostr.ToHex(sig.Serialize())
	return nil
}
