package helpers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/pricechecker/pkg/errors"
)

// mockCacheService is an in-memory cache.CacheService
type mockCacheService struct {
	data map[string][]byte
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{data: make(map[string][]byte)}
}

func (m *mockCacheService) Get(key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, io.EOF
}

func (m *mockCacheService) Set(key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCacheService) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "cs-CZ")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html><head><meta itemprop="price" content="499.00"></head></html>`))
	}))
	defer server.Close()

	fetcher := NewPageFetcher(time.Second, nil, 0)
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, `content="499.00"`)
}

func TestFetchNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1250")
		w.WriteHeader(http.StatusOK)
		// "1 299,- Kč" with č encoded as 0xE8 in windows-1250
		w.Write([]byte("<span>1 299,- K\xe8</span>"))
	}))
	defer server.Close()

	fetcher := NewPageFetcher(time.Second, nil, 0)
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<span>1 299,- Kč</span>", body)
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewPageFetcher(time.Second, nil, 0)
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
	assert.True(t, errors.Is(err, errors.ErrorTypeNetwork))
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	fetcher := NewPageFetcher(50*time.Millisecond, nil, 0)
	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeNetwork))
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchRateLimitBlocksHost(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mockCache := newMockCacheService()
	fetcher := NewPageFetcher(time.Second, mockCache, time.Minute)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeRateLimit))
	assert.Contains(t, mockCache.data, fetcher.rateLimitKey("127.0.0.1"))

	// The second request is refused without reaching the server
	_, err = fetcher.Fetch(context.Background(), server.URL+"/other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeRateLimit))
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchInvalidURL(t *testing.T) {
	fetcher := NewPageFetcher(time.Second, nil, 0)

	_, err := fetcher.Fetch(context.Background(), "http://invalid.url.that.does.not.exist")
	assert.Error(t, err)

	_, err = fetcher.Fetch(context.Background(), "://missing-scheme")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeValidation))
}

func TestFetchRateLimitScopedToFetcher(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	mockCache := newMockCacheService()
	first := NewPageFetcher(time.Second, mockCache, time.Minute)
	_, err := first.Fetch(context.Background(), server.URL)
	require.True(t, errors.Is(err, errors.ErrorTypeRateLimit))

	// A later run still fetches the host even while the earlier block is stored
	second := NewPageFetcher(time.Second, mockCache, time.Minute)
	body, err := second.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)

	require.NoError(t, first.Close())
	assert.Empty(t, mockCache.data)
	require.NoError(t, second.Close())
}

func TestFetchNormalizesURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sleva-50%-lego", r.URL.Path)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	fetcher := NewPageFetcher(time.Second, nil, 0)
	body, err := fetcher.Fetch(context.Background(), "  "+server.URL+"/sleva-50%-lego")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestFetchBodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), 2048))
	}))
	defer server.Close()

	fetcher := NewPageFetcher(time.Second, nil, 0, WithMaxBodySize(1024))
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeNetwork))
	assert.Contains(t, err.Error(), "exceeds 1024 bytes")

	fetcher = NewPageFetcher(time.Second, nil, 0, WithMaxBodySize(2048))
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, body, 2048)
}
