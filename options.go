package servus

// Functional options applied during construction in New. Keeping them in a
// standalone file makes every available knob discoverable at a glance.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client during construction.
type Option func(*Client) error

// WithHTTPTimeout bounds each admin or blob HTTP request. Per-request
// context deadlines remain the preferred mechanism; this is the coarse
// safety net underneath them.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("servus: http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithPlaintextTransport switches site transports to ws:// and http:// for
// local development and tests.
func WithPlaintextTransport() Option {
	return func(c *Client) error {
		c.plaintext = true
		return nil
	}
}

// WithLogger routes the client's structured logs to lg.
func WithLogger(lg zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = lg
		return nil
	}
}

// WithClock overrides the time source used for event timestamps and
// authorization expirations. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return fmt.Errorf("servus: clock must not be nil")
		}
		c.now = now
		return nil
	}
}
