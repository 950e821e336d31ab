// Package itemsapi is a client for the marketplace items backend.
package itemsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
	"github.com/samvad-hq/mercari-items-client/pkg/httpclient"
	"github.com/samvad-hq/mercari-items-client/pkg/objecturl"
)

const (
	opListItems  = "list items"
	opFetchImage = "fetch image"
	opCreateItem = "create item"

	defaultTimeout           = 15 * time.Second
	defaultEnrichConcurrency = 4
	defaultUploadName        = "image"
)

var jsonHeaders = map[string]string{
	"Content-Type": "application/json",
	"Accept":       "application/json",
}

// Options configures a Client. Zero values pick defaults.
type Options struct {
	// HTTP is the transport. Defaults to a resty client with Timeout.
	HTTP httpclient.Client
	// Registry owns fetched image payloads. Defaults to an in-memory registry.
	Registry objecturl.Registry
	Logger   Logger
	Timeout  time.Duration
	// EnrichConcurrency bounds parallel image fetches in EnrichItems.
	EnrichConcurrency int
}

// Client issues the items requests against one backend. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	baseURL     string
	http        httpclient.Client
	blobs       objecturl.Registry
	log         Logger
	concurrency int
}

// New builds a Client for baseURL, e.g. http://127.0.0.1:9000.
func New(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	if opts.HTTP == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		opts.HTTP = httpclient.NewRestyClient(timeout)
	}
	if opts.Registry == nil {
		opts.Registry = objecturl.NewRegistry(baseURL, nil)
	}
	if opts.EnrichConcurrency <= 0 {
		opts.EnrichConcurrency = defaultEnrichConcurrency
	}

	return &Client{
		baseURL:     baseURL,
		http:        opts.HTTP,
		blobs:       opts.Registry,
		log:         ensureLogger(opts.Logger),
		concurrency: opts.EnrichConcurrency,
	}, nil
}

// BaseURL returns the backend root all requests are relative to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListItems fetches GET /items. The response body is read and decoded once.
func (c *Client) ListItems(ctx context.Context) (domain.ItemListResponse, error) {
	endpoint := c.baseURL + "/items"

	resp, err := c.http.Get(ctx, endpoint, jsonHeaders)
	if err != nil {
		return domain.ItemListResponse{}, &TransportError{Op: opListItems, Method: http.MethodGet, URL: endpoint, Err: err}
	}

	body := resp.Body()
	if !isSuccess(resp.StatusCode()) {
		return domain.ItemListResponse{}, newStatusError(opListItems, http.MethodGet, endpoint, resp, body)
	}

	var out domain.ItemListResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.ItemListResponse{}, &DecodeError{Op: opListItems, Err: err}
	}

	c.log.DebugObj("items listed", "items_meta", map[string]any{
		"url":   endpoint,
		"count": len(out.Items),
	})
	return out, nil
}

// FetchImage downloads GET /image/{ref} and wraps the payload in an ObjectURL.
// The caller owns the returned URL and must pass it to ReleaseImage.
func (c *Client) FetchImage(ctx context.Context, ref domain.ImageReference) (domain.ObjectURL, error) {
	if err := validateImageReference(ref); err != nil {
		return "", err
	}
	endpoint := c.ImageLocation(ref)

	resp, err := c.http.Get(ctx, endpoint, map[string]string{"Accept": "image/*, */*"})
	if err != nil {
		return "", &TransportError{Op: opFetchImage, Method: http.MethodGet, URL: endpoint, Err: err}
	}

	body := resp.Body()
	if !isSuccess(resp.StatusCode()) {
		return "", newStatusError(opFetchImage, http.MethodGet, endpoint, resp, body)
	}

	var contentType string
	if h := resp.Header(); h != nil {
		contentType = h.Get("Content-Type")
	}
	u, err := c.blobs.Allocate(body, contentType)
	if err != nil {
		return "", fmt.Errorf("%s %s: allocate object url: %w", opFetchImage, ref, err)
	}

	c.log.DebugObj("image fetched", "image_meta", map[string]any{
		"image_name": ref,
		"bytes":      len(body),
		"object_url": u.String(),
	})
	return u, nil
}

// ReleaseImage frees an ObjectURL returned by FetchImage. Releasing twice is safe.
func (c *Client) ReleaseImage(u domain.ObjectURL) error {
	return c.blobs.Release(u)
}

// OpenImage returns the payload behind an unreleased ObjectURL.
func (c *Client) OpenImage(u domain.ObjectURL) (domain.Blob, error) {
	return c.blobs.Open(u)
}

// CreateItem posts a multipart form with the fields name, category and image.
// The response is returned undecoded; a non-2xx status is not an error.
func (c *Client) CreateItem(ctx context.Context, in domain.CreateItemInput) (httpclient.Response, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", opCreateItem, ErrInvalidInput, err)
	}
	endpoint := c.baseURL + "/items"

	form := httpclient.MultipartForm{
		Fields: map[string]string{
			"name":     in.Name,
			"category": in.Category,
		},
	}
	if in.Image.IsFile() {
		name := in.Image.Name
		if name == "" {
			name = defaultUploadName
		}
		form.Files = map[string]httpclient.FilePart{
			"image": {FileName: name, Content: in.Image.Data},
		}
	} else {
		form.Fields["image"] = in.Image.Name
	}

	resp, err := c.http.PostMultipart(ctx, endpoint, form, nil)
	if err != nil {
		return nil, &TransportError{Op: opCreateItem, Method: http.MethodPost, URL: endpoint, Err: err}
	}

	c.log.DebugObj("item submitted", "create_meta", map[string]any{
		"name":   in.Name,
		"status": resp.StatusCode(),
	})
	return resp, nil
}

// ImageLocation returns the absolute URL of an image on the backend.
func (c *Client) ImageLocation(ref domain.ImageReference) string {
	return c.baseURL + "/image/" + url.PathEscape(ref)
}

func validateImageReference(ref string) error {
	switch {
	case strings.TrimSpace(ref) == "":
		return fmt.Errorf("%w: empty", ErrInvalidImageReference)
	case ref == "." || ref == "..":
		return fmt.Errorf("%w: %q", ErrInvalidImageReference, ref)
	case strings.ContainsAny(ref, `/\`):
		return fmt.Errorf("%w: %q must be a bare filename", ErrInvalidImageReference, ref)
	}
	// An unparsable ref (e.g. "100%.jpg") is still a plain filename; PathEscape encodes it.
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return fmt.Errorf("%w: %q must not be a url", ErrInvalidImageReference, ref)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
