// Package records projects generic wire events onto typed domain records.
// Projection is a single pass over the tag list with overwrite semantics:
// when a tag repeats, the last occurrence wins.
package records

import (
	"fmt"
	"regexp"
	"strings"

	errs "github.com/servuscms/servus/internal/errors"
	"github.com/servuscms/servus/internal/nostr"
)

// Record is the tagged union of domain shapes a wire event can project to.
type Record interface {
	// RecordID returns the backing event id, empty for records that have
	// not been signed yet.
	RecordID() string
	domainRecord()
}

// Post is a long-form article or a static page. A page is a post without a
// publication date; a draft is distinguished by the event kind, not by any
// field of the content itself.
type Post struct {
	EventID     string
	Title       string
	Slug        string
	Summary     string
	Content     string
	PublishedAt string
	Site        string
	Draft       bool

	// Persisted is false for records created locally and not yet
	// acknowledged by the remote store.
	Persisted bool
}

func (p *Post) RecordID() string { return p.EventID }
func (p *Post) domainRecord()    {}

// IsPage reports whether the post is a static page, i.e. carries no
// publication date.
func (p *Post) IsPage() bool { return p.PublishedAt == "" }

// Kind returns the event kind a save of this post must use.
func (p *Post) Kind() int {
	if p.Draft {
		return nostr.KindLongFormDraft
	}
	return nostr.KindLongForm
}

// Note is a short plain-text record with no title or slug.
type Note struct {
	EventID   string
	Content   string
	Site      string
	Persisted bool
}

func (n *Note) RecordID() string { return n.EventID }
func (n *Note) domainRecord()    {}

// Project maps a wire event received for site onto a domain record.
// Unrecognized tags are ignored; repeated tags overwrite. Events of a kind
// this client does not model, or missing fields their kind requires, return
// ErrMalformedRecord so callers can skip them without aborting the stream.
func Project(site string, ev *nostr.Event) (Record, error) {
	if ev == nil || ev.ID == "" {
		return nil, fmt.Errorf("%w: missing event id", errs.ErrMalformedRecord)
	}

	switch ev.Kind {
	case nostr.KindLongForm, nostr.KindLongFormDraft:
		p := &Post{
			EventID:   ev.ID,
			Content:   ev.Content,
			Site:      site,
			Draft:     ev.Kind == nostr.KindLongFormDraft,
			Persisted: true,
		}
		for _, t := range ev.Tags {
			if len(t) < 2 {
				continue
			}
			switch t[0] {
			case "d":
				p.Slug = t[1]
			case "title":
				p.Title = t[1]
			case "summary":
				p.Summary = t[1]
			case "published_at":
				p.PublishedAt = t[1]
			}
		}
		if p.Slug == "" {
			return nil, fmt.Errorf("%w: long-form event %s has no d tag", errs.ErrMalformedRecord, ev.ID)
		}
		return p, nil

	case nostr.KindNote:
		return &Note{
			EventID:   ev.ID,
			Content:   ev.Content,
			Site:      site,
			Persisted: true,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unhandled kind %d", errs.ErrMalformedRecord, ev.Kind)
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9_-]`)

// DeriveSlug derives an addressable slug from a title: lowercase, spaces to
// hyphens, everything outside [a-z0-9_-] stripped. Derivation is
// deterministic and idempotent; callers derive at most once per record and
// reuse the stored slug on later saves.
func DeriveSlug(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, " ", "-")
	return slugStrip.ReplaceAllString(s, "")
}

// NoteDeletionTag references a non-addressable record by event id.
func NoteDeletionTag(eventID string) []string {
	return []string{"e", eventID}
}

// AddressDeletionTag references an addressable record by its composite
// kind:pubkey:slug coordinate.
func AddressDeletionTag(kind int, pubkey, slug string) []string {
	return []string{"a", fmt.Sprintf("%d:%s:%s", kind, pubkey, slug)}
}
