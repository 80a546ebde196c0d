package unsplash

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/srcsetlab/pkg/cache"
	apperrors "github.com/matzehuels/srcsetlab/pkg/errors"
	"github.com/matzehuels/srcsetlab/pkg/integrations"
	"github.com/matzehuels/srcsetlab/pkg/observability"
)

const (
	// DefaultEndpoint is the lookup proxy used when no access key is set.
	DefaultEndpoint = "https://wt-92cccbcf027a1b4070443ff04b9033cc-0.sandbox.auth0-extend.com/unsplash-scrset"

	// DefaultAPIURL is the Unsplash API root used with an access key.
	DefaultAPIURL = "https://api.unsplash.com"

	// DefaultCacheTTL is how long resolved URLs are reused.
	DefaultCacheTTL = 24 * time.Hour

	// Lookup modes reported to observability hooks.
	ModeProxy = "proxy"
	ModeAPI   = "api"

	photoIDLength = 11
)

// Resolver turns a photo page URL into a fetchable image URL.
type Resolver interface {
	ResolveImageURL(ctx context.Context, pageURL string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, pageURL string) (string, error)

// ResolveImageURL calls f.
func (f ResolverFunc) ResolveImageURL(ctx context.Context, pageURL string) (string, error) {
	return f(ctx, pageURL)
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	Endpoint  string        // lookup proxy
	APIURL    string        // Unsplash API root
	AccessKey string        // enables API mode
	CacheTTL  time.Duration // response cache lifetime
	Refresh   bool          // bypass cached lookups
}

// Client resolves Unsplash photo pages. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	endpoint  string
	apiURL    string
	accessKey string
	refresh   bool
}

// NewClient creates a client that caches lookups in backend.
func NewClient(backend cache.Cache, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	namespace := "unsplash:" + ModeProxy + ":"
	if opts.AccessKey != "" {
		namespace = "unsplash:" + ModeAPI + ":"
	}

	return &Client{
		Client:    integrations.NewClient(backend, namespace, opts.CacheTTL, nil),
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		apiURL:    strings.TrimRight(opts.APIURL, "/"),
		accessKey: opts.AccessKey,
		refresh:   opts.Refresh,
	}
}

// apiHeaders authenticates requests against the Unsplash API. Proxy
// requests carry none.
func (c *Client) apiHeaders() map[string]string {
	if c.accessKey == "" {
		return nil
	}
	return map[string]string{
		"Authorization":  "Client-ID " + c.accessKey,
		"Accept-Version": "v1",
	}
}

// Mode reports whether lookups go through the proxy or the API.
func (c *Client) Mode() string {
	if c.accessKey != "" {
		return ModeAPI
	}
	return ModeProxy
}

// ResolveImageURL returns the full-resolution image URL behind pageURL.
//
// Errors carry codes from pkg/errors: INVALID_URL for unusable input,
// NOT_FOUND, UNAUTHORIZED, RATE_LIMITED, NETWORK_ERROR for endpoint
// failures and INVALID_RESPONSE when the document has no urls.full.
func (c *Client) ResolveImageURL(ctx context.Context, pageURL string) (string, error) {
	return c.Resolve(ctx, pageURL, c.refresh)
}

// Resolve is ResolveImageURL with an explicit cache bypass.
func (c *Client) Resolve(ctx context.Context, pageURL string, refresh bool) (string, error) {
	mode := c.Mode()
	hooks := observability.Lookup()
	hooks.OnLookupStart(ctx, mode, pageURL)
	start := time.Now()

	imageURL, err := c.resolve(ctx, pageURL, refresh)
	hooks.OnLookupComplete(ctx, mode, pageURL, time.Since(start), err)
	return imageURL, err
}

func (c *Client) resolve(ctx context.Context, pageURL string, refresh bool) (string, error) {
	if err := apperrors.ValidateURL(pageURL); err != nil {
		return "", err
	}

	target := c.endpoint + "?url=" + pageURL
	if c.accessKey != "" {
		id, err := PhotoID(pageURL)
		if err != nil {
			return "", err
		}
		target = fmt.Sprintf("%s/photos/%s", c.apiURL, url.PathEscape(id))
	}

	var doc Photo
	err := c.Cached(ctx, cache.Hash([]byte(pageURL)), refresh, &doc, func() error {
		if err := c.GetWithHeaders(ctx, target, c.apiHeaders(), &doc); err != nil {
			return err
		}
		if doc.URLs.Full == "" {
			return apperrors.New(apperrors.ErrCodeInvalidResponse, "lookup for %s returned no urls.full", pageURL)
		}
		return nil
	})
	if err != nil {
		return "", classify(err, pageURL)
	}
	return doc.URLs.Full, nil
}

// classify attaches an error code to transport-level failures.
func classify(err error, pageURL string) error {
	if apperrors.GetCode(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrCodeNotFound, err, "photo %s", pageURL)
	case errors.Is(err, integrations.ErrUnauthorized):
		return apperrors.Wrap(apperrors.ErrCodeUnauthorized, err, "access key rejected")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "resolve %s", pageURL)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "resolve %s", pageURL)
	}
}

// PhotoID extracts the photo ID from an Unsplash page URL. Both
// /photos/<id> and /photos/<title-slug>-<id> forms are accepted.
func PhotoID(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidURL, err, "malformed photo URL")
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] != "photos" {
			continue
		}
		slug := segments[i+1]
		if len(slug) > photoIDLength && slug[len(slug)-photoIDLength-1] == '-' {
			return slug[len(slug)-photoIDLength:], nil
		}
		if slug != "" {
			return slug, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidURL, "not an Unsplash photo URL: %s", pageURL)
}

var _ Resolver = (*Client)(nil)
