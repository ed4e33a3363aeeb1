package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servuscms/servus/internal/nostr"
	"github.com/servuscms/servus/internal/signer"
)

func decodeEnvelope(t *testing.T, header string) *nostr.Event {
	t.Helper()
	require.True(t, strings.HasPrefix(header, Scheme), "header must use the Nostr scheme")
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, Scheme))
	require.NoError(t, err)
	var ev nostr.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return &ev
}

func newBuilder(t *testing.T, now time.Time) *Builder {
	t.Helper()
	s, err := signer.GenerateLocal()
	require.NoError(t, err)
	return &Builder{Signer: s, Now: func() time.Time { return now }}
}

func TestRequestAuth(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)
	b := newBuilder(t, now)

	header, err := b.Request(context.Background(), "https://example.com/api/sites", "GET")
	require.NoError(t, err)

	ev := decodeEnvelope(t, header)
	assert.Equal(t, nostr.KindHTTPAuth, ev.Kind)
	assert.Equal(t, now.Unix(), ev.CreatedAt)
	assert.Empty(t, ev.Content)
	assert.Equal(t, [][]string{
		{"u", "https://example.com/api/sites"},
		{"method", "GET"},
	}, ev.Tags)
	assert.NoError(t, ev.Verify())
}

func TestTransferAuthExpirationIsTenDays(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 500_000_000) // fractional seconds truncate
	b := newBuilder(t, now)

	want := strconv.FormatInt(now.Add(10*24*time.Hour).Unix(), 10)

	for op, label := range map[string]string{
		"upload": "Upload file",
		"delete": "Delete file",
	} {
		header, err := b.Transfer(context.Background(), op, "ab"+strings.Repeat("cd", 31), label)
		require.NoError(t, err)

		ev := decodeEnvelope(t, header)
		assert.Equal(t, nostr.KindBlossomAuth, ev.Kind)
		assert.Equal(t, label, ev.Content)

		tags := map[string]string{}
		for _, tag := range ev.Tags {
			tags[tag[0]] = tag[1]
		}
		assert.Equal(t, op, tags["t"])
		assert.Equal(t, want, tags["expiration"], "expiration is now + 10 days regardless of operation")
		assert.Equal(t, "ab"+strings.Repeat("cd", 31), tags["x"])
		assert.NoError(t, ev.Verify())
	}
}

func TestBuilderDefaultsToWallClock(t *testing.T) {
	t.Parallel()
	s, err := signer.GenerateLocal()
	require.NoError(t, err)
	b := &Builder{Signer: s}

	before := time.Now().Unix()
	header, err := b.Request(context.Background(), "https://x/api/sites", "POST")
	require.NoError(t, err)
	after := time.Now().Unix()

	ev := decodeEnvelope(t, header)
	assert.GreaterOrEqual(t, ev.CreatedAt, before)
	assert.LessOrEqual(t, ev.CreatedAt, after)
}

func TestSignerFailurePropagates(t *testing.T) {
	t.Parallel()
	b := &Builder{Signer: unavailableSigner{}}
	_, err := b.Request(context.Background(), "https://x", "GET")
	assert.ErrorIs(t, err, signer.ErrUnavailable)
}

type unavailableSigner struct{}

func (unavailableSigner) PublicKey(context.Context) (string, error) {
	return "", signer.ErrUnavailable
}

func (unavailableSigner) Sign(context.Context, *nostr.Event) error {
	return signer.ErrUnavailable
}
