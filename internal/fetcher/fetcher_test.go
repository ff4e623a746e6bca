package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjsage522/promowatch/config"

	apperrors "sjsage522/promowatch/pkg/errors"
)

// mockCacheService is a mock implementation of cache.CacheService for testing
type mockCacheService struct {
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{
		data: make(map[string][]byte),
		ttl:  make(map[string]time.Duration),
	}
}

func (m *mockCacheService) Get(key string) ([]byte, error) {
	if data, ok := m.data[key]; ok {
		return data, nil
	}
	return nil, io.EOF
}

func (m *mockCacheService) Set(key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttl[key] = ttl
	return nil
}

func (m *mockCacheService) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Headers:        map[string]string{"User-Agent": "Mozilla/5.0 (test)", "Accept": "text/html"},
		FetchTimeout:   time.Second,
		RateLimitBlock: 10 * time.Minute,
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0 (test)", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<article><h4>Save $20</h4></article>"))
	}))
	defer server.Close()

	f := New(testConfig(), nil, nil)
	body, err := f.Fetch(context.Background(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, "<article><h4>Save $20</h4></article>", body)
}

func TestFetchRateLimitedBlocksNextFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mockCache := newMockCacheService()
	f := New(testConfig(), mockCache, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
	assert.Equal(t, "600", string(mockCache.data[blockKey]))
	assert.Equal(t, 10*time.Minute, mockCache.ttl[blockKey])

	// The second fetch never reaches the server
	_, err = f.Fetch(context.Background(), server.URL)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchServerErrorDoesNotBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	mockCache := newMockCacheService()
	f := New(testConfig(), mockCache, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
	assert.Empty(t, mockCache.data)
}
