package suggest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/berrythewa/quicklaunch/internal/types"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout      = 3 * time.Second
	defaultMaxBodyBytes = 256 * 1024
	defaultUserAgent    = "qlaunch/1.0"
)

// FetcherOptions configures an HTTPFetcher
type FetcherOptions struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Client       *http.Client
	Logger       *zap.Logger
}

// HTTPFetcher queries a suggestion endpoint with a single GET request
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBody   int64
	logger    *zap.Logger
}

// NewHTTPFetcher creates a fetcher, filling unset options with defaults
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &HTTPFetcher{
		client:    opts.Client,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
		logger:    opts.Logger,
	}
}

// QueryURL expands a query template with the escaped argument
func QueryURL(template, argument string) string {
	return types.Expand(template, url.QueryEscape(argument))
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, req types.QueryRequest) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	target := QueryURL(req.Query, req.Argument)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "application/x-suggestions+json, application/json, text/xml, text/plain;q=0.8, */*;q=0.5")

	f.logger.Debug("Fetching suggestions",
		zap.String("url", target),
		zap.Uint64("generation", req.Generation))

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode charset: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	items, err := Parse(req.Format, data)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Fetched suggestions",
		zap.Uint64("generation", req.Generation),
		zap.Int("count", len(items)))
	return items, nil
}
