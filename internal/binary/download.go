package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "hcdl/1.0"

	maxBackoff = 30 * time.Second
)

// ErrDownload wraps every failed download.
var ErrDownload = errors.New("download failed")

// statusError is a non-200 response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// retryable reports whether another attempt could succeed.
func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
	backoff   time.Duration
	logger    *zap.Logger
}

// DownloaderOpt configures a Downloader.
type DownloaderOpt func(d *Downloader)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) DownloaderOpt {
	return func(d *Downloader) {
		d.client.Timeout = timeout
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(retries int) DownloaderOpt {
	return func(d *Downloader) {
		d.retries = retries
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) DownloaderOpt {
	return func(d *Downloader) {
		d.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) DownloaderOpt {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOpt) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
		backoff:   time.Second,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// HTTPClient returns the underlying client so metadata requests share its
// timeout and redirect policy.
func (d *Downloader) HTTPClient() *http.Client {
	return d.client
}

// backoffFor doubles the wait per attempt (1s, 2s, 4s, ...) up to maxBackoff.
func (d *Downloader) backoffFor(attempt int) time.Duration {
	backoff := d.backoff
	for i := 1; i < attempt && backoff < maxBackoff; i++ {
		backoff *= 2
	}
	return min(backoff, maxBackoff)
}

// DownloadToFile downloads a URL to a specific file path
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			backoff := d.backoffFor(attempt)
			d.logger.Debug("retrying download",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return fmt.Errorf("%w: %s: %v", ErrDownload, url, err)
		}
	}

	return fmt.Errorf("%w after %d retries: %s: %v", ErrDownload, d.retries, url, lastErr)
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false

	d.logger.Debug("downloaded",
		zap.String("url", url),
		zap.String("path", destPath),
		zap.Int64("bytes", n),
	)

	return nil
}

// fileExists checks if a file exists and is not empty
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
