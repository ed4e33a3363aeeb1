package servus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	errs "github.com/servuscms/servus/internal/errors"
)

const sitesPath = "/api/sites"

// LoadSites fetches the sites owned by the signing key and caches them in
// the workspace.
func (c *Client) LoadSites(ctx context.Context) ([]Site, error) {
	b, err := c.authBuilder(ctx)
	if err != nil {
		return nil, err
	}
	header, err := b.Request(ctx, c.apiBase+sitesPath, http.MethodGet)
	if err != nil {
		return nil, err
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		Get(sitesPath)
	if err != nil {
		return nil, &errs.TransportError{Op: "list sites", URL: c.apiBase + sitesPath, Err: err}
	}
	if resp.IsError() {
		return nil, &errs.RemoteRejection{Status: resp.StatusCode(), Message: resp.String()}
	}

	var sites []Site
	if err := json.Unmarshal(resp.Body(), &sites); err != nil {
		return nil, fmt.Errorf("servus: decode sites: %w", err)
	}
	c.ws.SetSites(sites)
	c.log.Info().Int("count", len(sites)).Msg("sites loaded")
	return sites, nil
}

// CreateSite registers a new site domain scoped to the signing key and adds
// it to the cached list.
func (c *Client) CreateSite(ctx context.Context, domain string) (*Site, error) {
	if domain == "" {
		return nil, fmt.Errorf("servus: domain must not be empty")
	}
	b, err := c.authBuilder(ctx)
	if err != nil {
		return nil, err
	}
	header, err := b.Request(ctx, c.apiBase+sitesPath, http.MethodPost)
	if err != nil {
		return nil, err
	}

	site := Site{Domain: domain}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		SetHeader("Content-Type", "application/json").
		SetBody(&site).
		Post(sitesPath)
	if err != nil {
		return nil, &errs.TransportError{Op: "create site", URL: c.apiBase + sitesPath, Err: err}
	}
	if resp.IsError() {
		return nil, &errs.RemoteRejection{Status: resp.StatusCode(), Message: resp.String()}
	}

	c.ws.AddSite(site)
	c.log.Info().Str("domain", domain).Msg("site created")
	return &site, nil
}
