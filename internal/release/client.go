package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// maxMetadataSize caps index.json and checkpoint responses.
const maxMetadataSize = 4 << 20

// ErrRequest wraps transport failures and unexpected status codes.
var ErrRequest = errors.New("release request failed")

// Client fetches release metadata.
type Client struct {
	client        *http.Client
	releasesURL   string
	checkpointURL string
	userAgent     string
	logger        *zap.Logger
}

// ClientOpt configures a Client.
type ClientOpt func(c *Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) ClientOpt {
	return func(c *Client) {
		c.client = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOpt {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithReleasesURL overrides DefaultReleasesURL.
func WithReleasesURL(u string) ClientOpt {
	return func(c *Client) {
		c.releasesURL = normalizeBaseURL(u)
	}
}

// WithCheckpointURL overrides DefaultCheckpointURL.
func WithCheckpointURL(u string) ClientOpt {
	return func(c *Client) {
		c.checkpointURL = normalizeBaseURL(u)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOpt {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a release client.
func New(opts ...ClientOpt) *Client {
	c := &Client{
		client:        http.DefaultClient,
		releasesURL:   DefaultReleasesURL,
		checkpointURL: DefaultCheckpointURL,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Check queries the checkpoint API for product.
func (c *Client) Check(ctx context.Context, product string) (*Check, error) {
	u := c.checkpointURL + url.PathEscape(product)

	var check Check
	if err := c.getJSON(ctx, u, &check); err != nil {
		return nil, fmt.Errorf("check %s: %w", product, err)
	}

	if check.CurrentVersion == "" {
		return nil, fmt.Errorf("check %s: no current version in response", product)
	}

	return &check, nil
}

// ResolveVersion returns version unchanged unless it is LatestVersion, in
// which case the current version is looked up.
func (c *Client) ResolveVersion(ctx context.Context, product, version string) (string, error) {
	if version != "" && version != LatestVersion {
		return version, nil
	}

	check, err := c.Check(ctx, product)
	if err != nil {
		return "", err
	}

	c.logger.Debug("resolved latest version",
		zap.String("product", product),
		zap.String("version", check.CurrentVersion),
	)

	return check.CurrentVersion, nil
}

// ProductVersion fetches {releases}{product}/{version}/index.json.
func (c *Client) ProductVersion(ctx context.Context, product, version string) (*ProductVersion, error) {
	u := fmt.Sprintf("%s%s/%s/index.json", c.releasesURL, url.PathEscape(product), url.PathEscape(version))

	var pv ProductVersion
	if err := c.getJSON(ctx, u, &pv); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", product, version, err)
	}

	if err := pv.Validate(); err != nil {
		return nil, err
	}

	pv.releasesURL = c.releasesURL

	c.logger.Debug("fetched product version",
		zap.String("product", pv.Name),
		zap.String("version", pv.Version),
		zap.Int("builds", len(pv.Builds)),
	)

	return &pv, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("requesting", zap.String("url", u))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrRequest, u, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataSize)).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
