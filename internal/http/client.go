package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/matryer/try.v1"
)

// Config configures a Client.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Proxy is an optional proxy URL. Empty uses the environment.
	Proxy string

	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts for a failed download.
	MaxRetries int

	// RetryCooldown is multiplied by the attempt number between retries.
	RetryCooldown time.Duration
}

// Client wraps HTTP operations with bandcamper's configuration.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout and proxy handling
//   - Typed status errors for non-2xx responses
//   - File download with retries and progress tracking
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new HTTP client.
//
// Zero values in cfg fall back to a 60 second timeout and a generic
// User-Agent. An unparsable Proxy is an error.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "bandcamper"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %v", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// It is -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the fully read response.
//
// Returns a *StatusError if the response status is not 2xx.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, opts...)
}

// PostForm performs a form-encoded POST request.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, opts ...RequestOption) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, opts...)
}

func (c *Client) do(req *http.Request, opts ...RequestOption) (*Response, error) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for _, opt := range opts {
		opt(req)
	}

	c.logger.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("Sending request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		URL:        resp.Request.URL,
	}, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
}

// DownloadFile streams a URL into dir/stem<ext> and returns the written path.
//
// The extension comes from the Content-Disposition filename, then the final
// URL path, then fallbackName. Network errors, 429 and 5xx responses are
// retried up to MaxRetries times with a linear cooldown; other statuses fail
// immediately. A partial file is removed before each retry.
//
// Parameters:
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
func (c *Client) DownloadFile(
	ctx context.Context,
	fs afero.Fs,
	rawURL, dir, stem, fallbackName string,
	onProgress func(written, total int64),
) (string, error) {
	attempts := min(c.cfg.MaxRetries+1, try.MaxRetries)

	var dest string
	err := try.Do(func(attempt int) (retry bool, err error) {
		attemptRemained := attempt < attempts
		if attempt > 1 {
			if err := sleep(ctx, time.Duration(attempt-1)*c.cfg.RetryCooldown); err != nil {
				return false, err
			}
		}

		p, err := c.download(ctx, fs, rawURL, dir, stem, fallbackName, onProgress)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			c.logger.Debug().Err(err).Int("attempt", attempt).Str("url", rawURL).Msg("Download attempt failed")
			return attemptRemained && retryable(err), err
		}
		dest = p
		return false, nil
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

func (c *Client) download(
	ctx context.Context,
	fs afero.Fs,
	rawURL, dir, stem, fallbackName string,
	onProgress func(written, total int64),
) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, stem+fileExtension(resp, fallbackName))

	file, err := fs.Create(dest)
	if err != nil {
		return "", err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, copyErr := io.Copy(writer, resp.Body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = fs.Remove(dest)
		if copyErr != nil {
			return "", copyErr
		}
		return "", closeErr
	}
	return dest, nil
}

// fileExtension picks the extension (with dot, lowercase) for a downloaded body.
func fileExtension(resp *http.Response, fallbackName string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if ext := cleanExt(filepath.Ext(params["filename"])); ext != "" {
				return ext
			}
		}
	}
	if resp.Request != nil {
		if ext := cleanExt(path.Ext(resp.Request.URL.Path)); ext != "" {
			return ext
		}
	}
	return cleanExt(filepath.Ext(fallbackName))
}

func cleanExt(ext string) string {
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return strings.ToLower(ext)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
