package servus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/servuscms/servus/internal/nostr"
	"github.com/servuscms/servus/internal/records"
	"github.com/servuscms/servus/internal/relay"
)

// LoadPosts queries every given site (or every cached site when none are
// given) for long-form records, published and draft, and appends the
// projections to the workspace. Each site uses its own single-use
// connection; records from different sites interleave arbitrarily. The first
// error is returned, but successfully streamed sites keep their records.
func (c *Client) LoadPosts(ctx context.Context, domains ...string) error {
	return c.fanOut(ctx, domains, nostr.Filter{Kinds: []int{nostr.KindLongForm, nostr.KindLongFormDraft}})
}

// LoadNotes queries sites for short notes, appending projections to the
// workspace.
func (c *Client) LoadNotes(ctx context.Context, domains ...string) error {
	return c.fanOut(ctx, domains, nostr.Filter{Kinds: []int{nostr.KindNote}})
}

func (c *Client) fanOut(ctx context.Context, domains []string, filter nostr.Filter) error {
	if len(domains) == 0 {
		for _, s := range c.ws.Sites() {
			domains = append(domains, s.Domain)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for _, d := range domains {
		wg.Add(1)
		go func(domain string) {
			defer wg.Done()
			if err := c.streamSite(ctx, domain, filter); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(d)
	}
	wg.Wait()
	return firstErr
}

// streamSite opens one connection, issues the query, and reconciles every
// record until EOSE. Projection failures skip the record; the stream
// continues.
func (c *Client) streamSite(ctx context.Context, domain string, filter nostr.Filter) error {
	conn, err := relay.Dial(ctx, c.relayURL(domain), c.log)
	if err != nil {
		return err
	}
	subscriptionsTotal.Inc()

	return conn.Fetch(ctx, filter, func(ev *nostr.Event) {
		rec, err := records.Project(domain, ev)
		if err != nil {
			malformedRecordsTotal.Inc()
			c.log.Warn().Err(err).Str("site", domain).Str("event_id", ev.ID).Msg("skipping record")
			return
		}
		switch r := rec.(type) {
		case *records.Post:
			c.ws.AppendPost(r)
			recordsReceivedTotal.WithLabelValues("post").Inc()
		case *records.Note:
			c.ws.AppendNote(r)
			recordsReceivedTotal.WithLabelValues("note").Inc()
		}
	})
}

// SavePost signs and publishes p to its site and waits for the relay's
// acknowledgement; p is marked persisted only after a positive OK.
func (c *Client) SavePost(ctx context.Context, p *records.Post) error {
	return c.savePost(ctx, p, true)
}

// SavePostAsync is the fire-and-forget variant: it returns once the send
// completes and marks p persisted optimistically, without waiting for an
// acknowledgement. Callers that appended p speculatively must remove it on
// failure.
func (c *Client) SavePostAsync(ctx context.Context, p *records.Post) error {
	return c.savePost(ctx, p, false)
}

func (c *Client) savePost(ctx context.Context, p *records.Post, awaitOK bool) error {
	if p.Site == "" {
		return fmt.Errorf("servus: post has no site")
	}
	if p.Slug == "" {
		if p.Persisted {
			return fmt.Errorf("servus: persisted post %s has no slug", p.EventID)
		}
		p.Slug = records.DeriveSlug(p.Title)
	}

	tags := [][]string{
		{"d", p.Slug},
		{"title", p.Title},
	}
	if p.PublishedAt != "" {
		tags = append(tags, []string{"published_at", p.PublishedAt})
	}
	ev := &nostr.Event{
		CreatedAt: c.now().Unix(),
		Kind:      p.Kind(),
		Tags:      tags,
		Content:   p.Content,
	}

	err := c.publish(ctx, p.Site, ev, awaitOK)
	publishTotal.WithLabelValues(publishOutcome(err)).Inc()
	if err != nil {
		return err
	}
	p.EventID = ev.ID
	p.Persisted = true
	c.log.Info().Str("site", p.Site).Str("slug", p.Slug).Bool("draft", p.Draft).Msg("post saved")
	return nil
}

// SaveNote signs and publishes a short note, waiting for acknowledgement.
func (c *Client) SaveNote(ctx context.Context, n *records.Note) error {
	if n.Site == "" {
		return fmt.Errorf("servus: note has no site")
	}
	ev := &nostr.Event{
		CreatedAt: c.now().Unix(),
		Kind:      nostr.KindNote,
		Tags:      [][]string{},
		Content:   n.Content,
	}

	err := c.publish(ctx, n.Site, ev, true)
	publishTotal.WithLabelValues(publishOutcome(err)).Inc()
	if err != nil {
		return err
	}
	n.EventID = ev.ID
	n.Persisted = true
	c.log.Info().Str("site", n.Site).Str("event_id", ev.ID).Msg("note saved")
	return nil
}

// DeleteRecord publishes a deletion event for the given target tag on
// domain. The tag is ["e", eventID] for non-addressable records and
// ["a", "kind:pubkey:slug"] for addressable ones.
func (c *Client) DeleteRecord(ctx context.Context, domain string, deletionTag []string) error {
	ev := &nostr.Event{
		CreatedAt: c.now().Unix(),
		Kind:      nostr.KindDelete,
		Tags:      [][]string{deletionTag},
	}
	err := c.publish(ctx, domain, ev, true)
	publishTotal.WithLabelValues(publishOutcome(err)).Inc()
	return err
}

// DeletePost deletes an addressable post or page by its composite
// kind:pubkey:slug address and removes it from the workspace on success.
func (c *Client) DeletePost(ctx context.Context, p *records.Post) error {
	s, err := c.getSigner(ctx)
	if err != nil {
		return err
	}
	pubkey, err := s.PublicKey(ctx)
	if err != nil {
		return err
	}
	if p.Slug == "" {
		return errors.New("servus: cannot delete a post without a slug")
	}
	if err := c.DeleteRecord(ctx, p.Site, records.AddressDeletionTag(p.Kind(), pubkey, p.Slug)); err != nil {
		return err
	}
	c.ws.RemovePost(p)
	return nil
}

// DeleteNote deletes a note by event id and removes it from the workspace on
// success.
func (c *Client) DeleteNote(ctx context.Context, n *records.Note) error {
	if n.EventID == "" {
		return errors.New("servus: cannot delete a note without an event id")
	}
	if err := c.DeleteRecord(ctx, n.Site, records.NoteDeletionTag(n.EventID)); err != nil {
		return err
	}
	c.ws.RemoveNote(n)
	return nil
}

// publish signs ev and sends it over a fresh single-use connection.
func (c *Client) publish(ctx context.Context, domain string, ev *nostr.Event, awaitOK bool) error {
	s, err := c.getSigner(ctx)
	if err != nil {
		return err
	}
	if err := s.Sign(ctx, ev); err != nil {
		return err
	}
	conn, err := relay.Dial(ctx, c.relayURL(domain), c.log)
	if err != nil {
		return err
	}
	return conn.Publish(ctx, ev, awaitOK)
}
