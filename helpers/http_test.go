package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "sjsage522/promowatch/pkg/errors"
)

var testHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (test)",
	"Accept":     "text/html",
}

func TestFetchWithHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.Equal(t, "Mozilla/5.0 (test)", r.Header.Get("User-Agent"))
		assert.Equal(t, "text/html", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello, World!</body></html>"))
	}))
	defer server.Close()

	body, err := FetchWithHeaders(context.Background(), NewClient(time.Second), server.URL, testHeaders)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Hello, World!")
}

func TestFetchWithHeadersNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "Économisez" with É encoded as 0xC9 in ISO-8859-1
		w.Write([]byte("<html><body>\xc9conomisez $20</body></html>"))
	}))
	defer server.Close()

	body, err := FetchWithHeaders(context.Background(), NewClient(time.Second), server.URL, testHeaders)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Économisez $20")
}

func TestFetchWithHeadersError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := FetchWithHeaders(context.Background(), NewClient(time.Second), server.URL, testHeaders)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))

	// Test with rate limiting
	serverRateLimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer serverRateLimited.Close()

	_, err = FetchWithHeaders(context.Background(), NewClient(time.Second), serverRateLimited.URL, testHeaders)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
}

func TestFetchWithHeadersTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := FetchWithHeaders(context.Background(), NewClient(20*time.Millisecond), server.URL, testHeaders)
	assert.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
}

func TestFetchWithHeadersInvalidURL(t *testing.T) {
	_, err := FetchWithHeaders(context.Background(), NewClient(time.Second), "http://invalid.url.that.does.not.exist", testHeaders)
	assert.Error(t, err)
}
