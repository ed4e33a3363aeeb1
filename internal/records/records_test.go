package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/servuscms/servus/internal/errors"
	"github.com/servuscms/servus/internal/nostr"
)

func TestProjectPostLastWriteWins(t *testing.T) {
	t.Parallel()
	ev := &nostr.Event{
		ID:      "ev1",
		Kind:    nostr.KindLongForm,
		Content: "body",
		Tags: [][]string{
			{"d", "a"},
			{"title", "T1"},
			{"d", "b"},
			{"title", "T2"},
		},
	}

	rec, err := Project("example.com", ev)
	require.NoError(t, err)
	p, ok := rec.(*Post)
	require.True(t, ok)

	assert.Equal(t, "b", p.Slug)
	assert.Equal(t, "T2", p.Title)
	assert.Equal(t, "body", p.Content)
	assert.Equal(t, "example.com", p.Site)
	assert.True(t, p.Persisted)
	assert.False(t, p.Draft)
}

func TestProjectPageVsPost(t *testing.T) {
	t.Parallel()
	page := &nostr.Event{
		ID:   "ev-page",
		Kind: nostr.KindLongForm,
		Tags: [][]string{{"d", "about"}, {"title", "About"}},
	}
	rec, err := Project("s", page)
	require.NoError(t, err)
	assert.True(t, rec.(*Post).IsPage())

	post := &nostr.Event{
		ID:   "ev-post",
		Kind: nostr.KindLongForm,
		Tags: [][]string{{"d", "hi"}, {"title", "Hi"}, {"published_at", "1000"}},
	}
	rec, err = Project("s", post)
	require.NoError(t, err)
	p := rec.(*Post)
	assert.False(t, p.IsPage())
	assert.Equal(t, "1000", p.PublishedAt)
}

func TestProjectDraftKind(t *testing.T) {
	t.Parallel()
	ev := &nostr.Event{
		ID:   "ev-draft",
		Kind: nostr.KindLongFormDraft,
		Tags: [][]string{{"d", "wip"}},
	}
	rec, err := Project("s", ev)
	require.NoError(t, err)
	p := rec.(*Post)
	assert.True(t, p.Draft)
	assert.Equal(t, nostr.KindLongFormDraft, p.Kind())
}

func TestProjectNote(t *testing.T) {
	t.Parallel()
	ev := &nostr.Event{ID: "ev-note", Kind: nostr.KindNote, Content: "short"}
	rec, err := Project("s", ev)
	require.NoError(t, err)
	n, ok := rec.(*Note)
	require.True(t, ok)
	assert.Equal(t, "short", n.Content)
	assert.True(t, n.Persisted)
}

func TestProjectSummaryTag(t *testing.T) {
	t.Parallel()
	ev := &nostr.Event{
		ID:   "ev-s",
		Kind: nostr.KindLongForm,
		Tags: [][]string{{"d", "x"}, {"summary", "tl;dr"}},
	}
	rec, err := Project("s", ev)
	require.NoError(t, err)
	assert.Equal(t, "tl;dr", rec.(*Post).Summary)
}

func TestProjectMalformed(t *testing.T) {
	t.Parallel()
	cases := map[string]*nostr.Event{
		"nil event":          nil,
		"missing id":         {Kind: nostr.KindNote},
		"long-form, no slug": {ID: "x", Kind: nostr.KindLongForm, Tags: [][]string{{"title", "T"}}},
		"unhandled kind":     {ID: "x", Kind: nostr.KindCustomData},
	}
	for name, ev := range cases {
		_, err := Project("s", ev)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, errs.ErrMalformedRecord, name)
	}
}

func TestDeriveSlug(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "my-first-post", DeriveSlug("My First Post!"))
	assert.Equal(t, "my-first-post", DeriveSlug(DeriveSlug("My First Post!")), "derivation is idempotent")
	assert.Equal(t, "hello_world-2", DeriveSlug("Hello_World 2"))
	assert.Equal(t, "", DeriveSlug("!!!"))
	assert.Equal(t, DeriveSlug("Same Title"), DeriveSlug("Same Title"), "derivation is deterministic")
}

func TestDeletionTags(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"e", "ev1"}, NoteDeletionTag("ev1"))
	assert.Equal(t, []string{"a", "30023:abc:hello"}, AddressDeletionTag(30023, "abc", "hello"))
}
