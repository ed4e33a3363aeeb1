package servus

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	errs "github.com/servuscms/servus/internal/errors"
	"github.com/servuscms/servus/internal/nostr"
)

// Blob-store operation names carried in transfer authorizations. They name
// the semantic action, not the HTTP verb.
const (
	opUpload = "upload"
	opDelete = "delete"
)

// ListFiles fetches the blob listing for the signing key on domain and
// caches it in the workspace.
func (c *Client) ListFiles(ctx context.Context, domain string) ([]File, error) {
	s, err := c.getSigner(ctx)
	if err != nil {
		return nil, err
	}
	pubkey, err := s.PublicKey(ctx)
	if err != nil {
		return nil, err
	}

	path := "/list/" + pubkey
	resp, err := c.siteHTTP(domain).R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, &errs.TransportError{Op: "list files", URL: c.siteBase(domain) + path, Err: err}
	}
	if resp.IsError() {
		return nil, &errs.RemoteRejection{Status: resp.StatusCode(), Message: resp.String()}
	}

	var files []File
	if err := json.Unmarshal(resp.Body(), &files); err != nil {
		return nil, fmt.Errorf("servus: decode file listing: %w", err)
	}
	c.ws.SetFiles(files)
	return files, nil
}

// UploadFile computes the payload digest, builds an upload-scoped transfer
// authorization over it, and transfers the raw bytes to the site's blob
// store. The returned descriptor is appended to the cached listing.
func (c *Client) UploadFile(ctx context.Context, domain string, data []byte) (*File, error) {
	sum := sha256.Sum256(data)
	shaHex := nostr.ToHex(sum[:])

	b, err := c.authBuilder(ctx)
	if err != nil {
		return nil, err
	}
	header, err := b.Transfer(ctx, opUpload, shaHex, "Upload file")
	if err != nil {
		return nil, err
	}

	resp, err := c.siteHTTP(domain).R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put("/upload")
	if err != nil {
		blobTransfersTotal.WithLabelValues(opUpload, outcomeError).Inc()
		return nil, &errs.TransportError{Op: "upload", URL: c.siteBase(domain) + "/upload", Err: err}
	}
	if resp.IsError() {
		blobTransfersTotal.WithLabelValues(opUpload, outcomeRejected).Inc()
		return nil, &errs.RemoteRejection{Status: resp.StatusCode(), Message: resp.String()}
	}

	var f File
	if err := json.Unmarshal(resp.Body(), &f); err != nil {
		return nil, fmt.Errorf("servus: decode blob descriptor: %w", err)
	}
	blobTransfersTotal.WithLabelValues(opUpload, outcomeOK).Inc()
	c.ws.AddFile(f)
	c.log.Info().Str("site", domain).Str("sha256", f.SHA256).Int64("size", f.Size).Msg("file uploaded")
	return &f, nil
}

// DeleteFile removes a blob by hash, with its own delete-scoped transfer
// authorization, and drops it from the cached listing.
func (c *Client) DeleteFile(ctx context.Context, domain, sha256Hex string) error {
	b, err := c.authBuilder(ctx)
	if err != nil {
		return err
	}
	header, err := b.Transfer(ctx, opDelete, sha256Hex, "Delete file")
	if err != nil {
		return err
	}

	path := "/" + sha256Hex
	resp, err := c.siteHTTP(domain).R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		Delete(path)
	if err != nil {
		blobTransfersTotal.WithLabelValues(opDelete, outcomeError).Inc()
		return &errs.TransportError{Op: "delete file", URL: c.siteBase(domain) + path, Err: err}
	}
	if resp.IsError() {
		blobTransfersTotal.WithLabelValues(opDelete, outcomeRejected).Inc()
		return &errs.RemoteRejection{Status: resp.StatusCode(), Message: resp.String()}
	}

	blobTransfersTotal.WithLabelValues(opDelete, outcomeOK).Inc()
	c.ws.RemoveFile(sha256Hex)
	c.log.Info().Str("site", domain).Str("sha256", sha256Hex).Msg("file deleted")
	return nil
}
