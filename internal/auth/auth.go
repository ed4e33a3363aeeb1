// Package auth builds the short-lived authorization envelopes that prove key
// ownership to the admin and blob APIs: a signed event, JSON-serialized,
// base64-encoded, and prefixed with the "Nostr " scheme.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/servuscms/servus/internal/nostr"
	"github.com/servuscms/servus/internal/signer"
)

// Scheme is the authorization scheme prefix.
const Scheme = "Nostr "

// transferTTL is the fixed lifetime of transfer authorizations. It is a
// policy constant, not configurable.
const transferTTL = 10 * 24 * time.Hour

// Builder produces authorization header values for one signer. Now is
// injectable for tests and defaults to time.Now.
type Builder struct {
	Signer signer.Signer
	Now    func() time.Time
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Request builds a request-auth header for one HTTP call: a kind-27235
// event carrying the full URL and verb, with empty content.
func (b *Builder) Request(ctx context.Context, fullURL, method string) (string, error) {
	ev := &nostr.Event{
		CreatedAt: b.now().Unix(),
		Kind:      nostr.KindHTTPAuth,
		Tags: [][]string{
			{"u", fullURL},
			{"method", method},
		},
	}
	return b.envelope(ctx, ev)
}

// Transfer builds a transfer-auth header for a blob upload or delete. The
// operation name describes the semantic action ("upload", "delete"), the
// digest pins the payload, and the expiration is always now plus ten days in
// whole seconds. The label is a human-readable description of the action.
func (b *Builder) Transfer(ctx context.Context, operation, sha256Hex, label string) (string, error) {
	exp := b.now().Add(transferTTL).Unix()
	ev := &nostr.Event{
		CreatedAt: b.now().Unix(),
		Kind:      nostr.KindBlossomAuth,
		Tags: [][]string{
			{"t", operation},
			{"expiration", strconv.FormatInt(exp, 10)},
			{"x", sha256Hex},
		},
		Content: label,
	}
	return b.envelope(ctx, ev)
}

func (b *Builder) envelope(ctx context.Context, ev *nostr.Event) (string, error) {
	if err := b.Signer.Sign(ctx, ev); err != nil {
		return "", err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return Scheme + base64.StdEncoding.EncodeToString(payload), nil
}
