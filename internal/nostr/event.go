// Package nostr implements the event model spoken by Servus relays: signed,
// content-addressed records, the canonical serialization that derives their
// ids, and the wire frames exchanged over the per-site socket protocol.
package nostr

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Event kinds understood by Servus.
const (
	KindNote          = 1
	KindDelete        = 5
	KindBlossomAuth   = 24242
	KindHTTPAuth      = 27235
	KindLongForm      = 30023
	KindLongFormDraft = 30024
	KindCustomData    = 30078
)

// ErrInvalidEvent is returned by Verify when an event's id or signature does
// not check out. Received data failing this check must be treated as
// untrusted.
var ErrInvalidEvent = errors.New("nostr: invalid event")

// Event is an immutable, signed, content-addressed record. ID is the sha256
// of the canonical serialization; Sig is a BIP-340 schnorr signature over ID
// made by PubKey.
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Canonical produces the deterministic byte sequence hashed to obtain an
// event id: the UTF-8 JSON array [0,pubkey,created_at,kind,tags,content]
// with no extra whitespace. HTML escaping is disabled so the output matches
// what relays compute for the same fields.
func Canonical(pubkey string, createdAt int64, kind int, tags [][]string, content string) ([]byte, error) {
	if tags == nil {
		tags = [][]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]interface{}{0, pubkey, createdAt, kind, tags, content}); err != nil {
		return nil, fmt.Errorf("nostr: canonical serialization: %w", err)
	}
	// Encode appends a newline that is not part of the canonical form.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ComputeID returns the hex-encoded sha256 of the event's canonical form.
func ComputeID(ev *Event) (string, error) {
	c, err := Canonical(ev.PubKey, ev.CreatedAt, ev.Kind, ev.Tags, ev.Content)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(c)
	return ToHex(sum[:]), nil
}

// Tag returns the value of the last tag named name, scanning the tag list
// once. Later occurrences overwrite earlier ones. Tags shorter than two
// elements are skipped.
func (ev *Event) Tag(name string) (string, bool) {
	var value string
	var found bool
	for _, t := range ev.Tags {
		if len(t) < 2 {
			continue
		}
		if t[0] == name {
			value = t[1]
			found = true
		}
	}
	return value, found
}

// IsAddressable reports whether the event kind is parameterized replaceable,
// i.e. addressed by (kind, pubkey, d-tag) rather than by event id.
func (ev *Event) IsAddressable() bool {
	return ev.Kind >= 30000 && ev.Kind < 40000
}

// IsLongForm reports whether the event is a long-form article, published or
// draft.
func (ev *Event) IsLongForm() bool {
	return ev.Kind == KindLongForm || ev.Kind == KindLongFormDraft
}

// Verify recomputes the event id and checks the schnorr signature against
// the event pubkey. It returns ErrInvalidEvent on any mismatch.
func (ev *Event) Verify() error {
	id, err := ComputeID(ev)
	if err != nil {
		return err
	}
	if id != ev.ID {
		return fmt.Errorf("%w: id %q does not match canonical digest %q", ErrInvalidEvent, ev.ID, id)
	}

	pkb, err := FromHex(ev.PubKey)
	if err != nil {
		return fmt.Errorf("%w: pubkey: %v", ErrInvalidEvent, err)
	}
	pub, err := schnorr.ParsePubKey(pkb)
	if err != nil {
		return fmt.Errorf("%w: pubkey: %v", ErrInvalidEvent, err)
	}
	sigb, err := FromHex(ev.Sig)
	if err != nil {
		return fmt.Errorf("%w: sig: %v", ErrInvalidEvent, err)
	}
	sig, err := schnorr.ParseSignature(sigb)
	if err != nil {
		return fmt.Errorf("%w: sig: %v", ErrInvalidEvent, err)
	}
	digest, err := FromHex(ev.ID)
	if err != nil {
		return fmt.Errorf("%w: id: %v", ErrInvalidEvent, err)
	}
	if !sig.Verify(digest, pub) {
		return fmt.Errorf("%w: signature does not verify against pubkey", ErrInvalidEvent)
	}
	return nil
}
