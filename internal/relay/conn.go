// Package relay implements the client side of the per-site socket protocol.
// A connection is single-use: it carries exactly one query or one write and
// is spent afterwards. There is no reconnect and no live subscription after
// EOSE; refreshing means dialing again.
package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	errs "github.com/servuscms/servus/internal/errors"
	"github.com/servuscms/servus/internal/nostr"
)

// State tracks a connection through its linear lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateAwaitingOpen
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingOpen:
		return "awaiting-open"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ErrSpent is returned when a second query or write is attempted on a
// connection.
var ErrSpent = fmt.Errorf("relay: connection already used")

const closeGrace = time.Second

// Conn is one websocket connection to one site's relay endpoint.
type Conn struct {
	ws  *websocket.Conn
	url string
	log zerolog.Logger

	mu    sync.Mutex
	state State
	spent bool
	subID string
}

// Dial opens a connection to rawURL. The returned connection is ready for a
// single Fetch or Publish.
func Dial(ctx context.Context, rawURL string, log zerolog.Logger) (*Conn, error) {
	c := &Conn{url: rawURL, log: log, state: StateConnecting}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, &errs.TransportError{Op: "dial", URL: rawURL, Err: err}
	}
	c.ws = ws
	c.setState(StateAwaitingOpen)
	return c, nil
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// begin marks the connection used, returning false if it already was.
func (c *Conn) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spent || c.state == StateClosed {
		return false
	}
	c.spent = true
	return true
}

// watchContext tears the socket down when ctx is cancelled so a blocked read
// returns. The returned stop function must be deferred.
func (c *Conn) watchContext(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Fetch issues one ["REQ", subID, filter] query and streams matching events
// to onEvent until the relay signals EOSE. The subscription id only needs to
// be unique within this connection's lifetime. A transport error or abrupt
// close before EOSE surfaces as ErrNoEOSE: the records delivered so far are
// a partial, inconclusive result.
func (c *Conn) Fetch(ctx context.Context, filter nostr.Filter, onEvent func(*nostr.Event)) error {
	if !c.begin() {
		return ErrSpent
	}
	defer func() { _ = c.Close() }()
	stop := c.watchContext(ctx)
	defer stop()

	subID := uuid.NewString()
	c.mu.Lock()
	c.subID = subID
	c.mu.Unlock()

	req, err := nostr.EncodeReq(subID, filter)
	if err != nil {
		return err
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, req); err != nil {
		return &errs.TransportError{Op: "req", URL: c.url, Err: err}
	}
	c.setState(StateStreaming)
	c.log.Debug().Str("url", c.url).Str("sub_id", subID).Ints("kinds", filter.Kinds).Msg("subscription opened")

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &errs.TransportError{
				Op:  "subscription",
				URL: c.url,
				Err: fmt.Errorf("%w: %v", errs.ErrNoEOSE, err),
			}
		}

		frame, err := nostr.DecodeFrame(data)
		if err != nil {
			c.log.Warn().Err(err).Str("url", c.url).Msg("skipping undecodable frame")
			continue
		}

		switch frame.Type {
		case nostr.FrameEvent:
			if frame.SubID != subID {
				c.log.Debug().Str("sub_id", frame.SubID).Msg("event for unknown subscription")
				continue
			}
			onEvent(frame.Event)
		case nostr.FrameEOSE:
			if frame.SubID != subID {
				continue
			}
			c.log.Debug().Str("url", c.url).Str("sub_id", subID).Msg("EOSE")
			return nil
		case nostr.FrameOK:
			// An OK acknowledges a write; a negative one on a read
			// connection is still a propagated failure, never a drop.
			if !frame.OK {
				return &errs.RemoteRejection{EventID: frame.EventID, Message: frame.Message}
			}
		case nostr.FrameNotice:
			c.log.Info().Str("url", c.url).Str("message", frame.Message).Msg("relay notice")
		}
	}
}

// Publish sends one ["EVENT", event] frame. With awaitOK the call blocks
// until the relay acknowledges the event id; a negative acknowledgement
// surfaces as RemoteRejection. Without awaitOK it returns as soon as the
// send completes.
func (c *Conn) Publish(ctx context.Context, ev *nostr.Event, awaitOK bool) error {
	if !c.begin() {
		return ErrSpent
	}
	defer func() { _ = c.Close() }()
	stop := c.watchContext(ctx)
	defer stop()

	frame, err := nostr.EncodeEvent(ev)
	if err != nil {
		return err
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return &errs.TransportError{Op: "publish", URL: c.url, Err: err}
	}
	c.setState(StateStreaming)
	c.log.Debug().Str("url", c.url).Str("event_id", ev.ID).Int("kind", ev.Kind).Msg("event sent")

	if !awaitOK {
		return nil
	}

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &errs.TransportError{Op: "publish-ack", URL: c.url, Err: err}
		}
		f, err := nostr.DecodeFrame(data)
		if err != nil {
			c.log.Warn().Err(err).Str("url", c.url).Msg("skipping undecodable frame")
			continue
		}
		if f.Type != nostr.FrameOK || f.EventID != ev.ID {
			continue
		}
		if !f.OK {
			return &errs.RemoteRejection{EventID: f.EventID, Message: f.Message}
		}
		return nil
	}
}

// Close tears the connection down. Closing before EOSE is a valid
// cancellation path; a best-effort CLOSE frame is sent for an open
// subscription and all teardown errors are swallowed.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	subID := c.subID
	c.mu.Unlock()

	deadline := time.Now().Add(closeGrace)
	if subID != "" {
		if frame, err := nostr.EncodeClose(subID); err == nil {
			_ = c.ws.SetWriteDeadline(deadline)
			_ = c.ws.WriteMessage(websocket.TextMessage, frame)
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.ws.Close()
}
