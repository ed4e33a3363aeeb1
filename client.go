// Package servus is the admin client SDK for Servus sites. It builds and
// signs protocol events, queries per-site relay endpoints, reconciles wire
// records into typed collections, and moves binary blobs to and from the
// per-site blob store. The client never owns canonical state: every
// collection it holds is a cached projection of remote truth, refreshable by
// reissuing the relevant query.
package servus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/servuscms/servus/internal/auth"
	"github.com/servuscms/servus/internal/config"
	"github.com/servuscms/servus/internal/signer"
)

// Client talks to one admin API and any number of site relay/blob
// endpoints on behalf of one signing identity.
type Client struct {
	apiBase   string
	provider  signer.Provider
	plaintext bool
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger

	rest *resty.Client
	ws   *Workspace

	mu        sync.Mutex
	signer    signer.Signer
	siteHTTPs map[string]*resty.Client
}

// New constructs a Client for the admin API at apiBase, signing with s.
func New(apiBase string, s signer.Signer, opts ...Option) (*Client, error) {
	if s == nil {
		return nil, fmt.Errorf("servus: signer must not be nil")
	}
	c, err := NewWithProvider(apiBase, signer.Static(s), opts...)
	if err != nil {
		return nil, err
	}
	c.signer = s
	return c, nil
}

// NewWithProvider constructs a Client whose signing capability may not be
// available yet. Operations that need the signer wait for the provider with
// backoff under the caller's context instead of failing fast, since the
// capability can be injected asynchronously after startup.
func NewWithProvider(apiBase string, p signer.Provider, opts ...Option) (*Client, error) {
	if apiBase == "" {
		return nil, fmt.Errorf("servus: apiBase must not be empty")
	}
	if p == nil {
		return nil, fmt.Errorf("servus: signer provider must not be nil")
	}

	c := &Client{
		apiBase:   apiBase,
		provider:  p,
		timeout:   30 * time.Second,
		now:       time.Now,
		log:       zerolog.Nop(),
		ws:        NewWorkspace(),
		siteHTTPs: make(map[string]*resty.Client),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.rest = c.newHTTP(apiBase)
	return c, nil
}

// FromEnv constructs a Client from SERVUS_* environment variables, using the
// built-in dev signer when SERVUS_SECRET_KEY is set.
func FromEnv(opts ...Option) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("servus: SERVUS_SECRET_KEY is not set")
	}
	s, err := signer.NewLocal(cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	base := []Option{WithHTTPTimeout(cfg.HTTPTimeout)}
	if cfg.Plaintext {
		base = append(base, WithPlaintextTransport())
	}
	return New(cfg.AdminURL, s, append(base, opts...)...)
}

// Workspace returns the client's cached record collections.
func (c *Client) Workspace() *Workspace { return c.ws }

func (c *Client) newHTTP(baseURL string) *resty.Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(c.timeout)
	if debugLoggingRequested() {
		r.SetTransport(&debugTransport{})
	}
	return r
}

// siteHTTP returns the cached blob-store HTTP client for a site domain.
func (c *Client) siteHTTP(domain string) *resty.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.siteHTTPs[domain]; ok {
		return r
	}
	r := c.newHTTP(c.siteBase(domain))
	c.siteHTTPs[domain] = r
	return r
}

// getSigner resolves the signing capability, waiting for it to appear when
// the client was built with a provider.
func (c *Client) getSigner(ctx context.Context) (signer.Signer, error) {
	c.mu.Lock()
	if c.signer != nil {
		s := c.signer
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	s, err := signer.Await(ctx, c.provider)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.signer = s
	c.mu.Unlock()
	return s, nil
}

func (c *Client) authBuilder(ctx context.Context) (*auth.Builder, error) {
	s, err := c.getSigner(ctx)
	if err != nil {
		return nil, err
	}
	return &auth.Builder{Signer: s, Now: c.now}, nil
}

// relayURL derives the socket endpoint for a site domain.
func (c *Client) relayURL(domain string) string {
	scheme := "wss"
	if c.plaintext {
		scheme = "ws"
	}
	return scheme + "://" + domain + "/"
}

// siteBase derives the blob-store base URL for a site domain.
func (c *Client) siteBase(domain string) string {
	scheme := "https"
	if c.plaintext {
		scheme = "http"
	}
	return scheme + "://" + domain
}
