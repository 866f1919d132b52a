package helpers

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html/charset"

	"sjsage522/pricechecker/logger"
	"sjsage522/pricechecker/pkg/errors"
	"sjsage522/pricechecker/services/cache"
)

const (
	// DefaultFetchTimeout bounds a single page request
	DefaultFetchTimeout = 15 * time.Second
	// DefaultMaxBodySize bounds the bytes read from a single page
	DefaultMaxBodySize = 8 << 20
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// PageFetcher retrieves product pages over plain HTTP GET.
// Rate limit blocks are scoped to one fetcher, so a block set during a run
// never makes a later run skip the host.
type PageFetcher struct {
	client      *http.Client
	cache       cache.CacheService
	blockTime   time.Duration
	maxBodySize int64
	session     string
	log         *logger.Logger

	mu      sync.Mutex
	blocks  map[string]bool
}

// FetcherOption customizes a PageFetcher
type FetcherOption func(*PageFetcher)

// WithTransport replaces the HTTP transport
func WithTransport(rt http.RoundTripper) FetcherOption {
	return func(f *PageFetcher) {
		f.client.Transport = rt
	}
}

// WithMaxBodySize changes how many bytes of a page are accepted
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *PageFetcher) {
		f.maxBodySize = n
	}
}

// NewPageFetcher creates a fetcher with the given request timeout.
// cacheSvc may be nil, which disables rate limit blocking.
func NewPageFetcher(timeout time.Duration, cacheSvc cache.CacheService, blockTime time.Duration, opts ...FetcherOption) *PageFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	f := &PageFetcher{
		client:      &http.Client{Timeout: timeout},
		cache:       cacheSvc,
		blockTime:   blockTime,
		maxBodySize: DefaultMaxBodySize,
		session:     uuid.NewString(),
		log:         logger.ForFetcher(),
		blocks:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// rateLimitKey is the cache key blocking further requests to host
func (f *PageFetcher) rateLimitKey(host string) string {
	return strings.ToLower(host) + "_rate_limited:" + f.session
}

// Fetch sends a GET request with browser-like headers and returns the body as UTF-8 text.
// Transport failures, timeouts and non-2xx responses are returned as errors.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NormalizeURL(rawURL), nil)
	if err != nil {
		return "", errors.NewValidation(rawURL, fmt.Sprintf("invalid URL: %v", err))
	}
	host := req.URL.Hostname()

	if f.blocked(host) {
		return "", errors.NewRateLimit(host, f.blockTime)
	}

	req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "cs-CZ,cs;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.NewNetwork(host, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		f.block(host)
		return "", errors.NewRateLimit(host, f.blockTime)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewNetwork(host, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return "", errors.NewNetwork(host, "failed to read response body", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return "", errors.NewNetwork(host, fmt.Sprintf("response body exceeds %d bytes", f.maxBodySize), nil)
	}

	text, err := toUTF8(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", errors.NewNetwork(host, "failed to decode response body", err)
	}
	return text, nil
}

func (f *PageFetcher) blocked(host string) bool {
	if f.cache == nil || host == "" {
		return false
	}
	_, err := f.cache.Get(f.rateLimitKey(host))
	return err == nil
}

func (f *PageFetcher) block(host string) {
	if f.cache == nil || host == "" || f.blockTime <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", f.blockTime/time.Second))
	key := f.rateLimitKey(host)
	if err := f.cache.Set(key, value, f.blockTime); err != nil {
		f.log.Warn().Err(err).Str("host", host).Msg("Failed to store rate limit block")
		return
	}
	f.mu.Lock()
	f.blocks[key] = true
	f.mu.Unlock()
	f.log.Warn().Str("host", host).Dur("block", f.blockTime).Msg("Rate limited, blocking host")
}

// Close lifts the rate limit blocks this fetcher set
func (f *PageFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for key := range f.blocks {
		if err := f.cache.Delete(key); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(f.blocks, key)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to lift %d rate limit blocks: %w", len(errs), stderrors.Join(errs...))
	}
	return nil
}

// toUTF8 converts body to UTF-8 using the Content-Type header and meta tags
func toUTF8(body []byte, contentType string) (string, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return string(body), nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return "", err
	}
	return buf.String(), nil
}
