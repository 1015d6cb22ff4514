package fetcher

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/brandkit/models"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare host", "acme.com", "https://acme.com", false},
		{"host with path", "acme.com/about", "https://acme.com/about", false},
		{"trims whitespace", "  acme.com  ", "https://acme.com", false},
		{"protocol relative", "//acme.com", "https://acme.com", false},
		{"explicit http", "http://acme.com", "http://acme.com", false},
		{"uppercase scheme", "HTTPS://acme.com", "https://acme.com", false},
		{"drops fragment", "https://acme.com/#top", "https://acme.com/", false},
		{"empty", "", "", true},
		{"ftp scheme", "ftp://acme.com", "", true},
		{"no host", "https://", "", true},
		{"space in host", "ac me.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				var be *models.BrandError
				require.True(t, errors.As(err, &be))
				assert.Equal(t, models.ErrCodeInvalidURL, be.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFetch_Success(t *testing.T) {
	gotUA := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>Acme</title></html>"))
	}))
	defer srv.Close()

	f := New(Options{Client: srv.Client()})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "<html><title>Acme</title></html>", page.HTML)
	assert.Equal(t, srv.URL, page.Origin)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.False(t, page.FellBack)
	assert.Equal(t, ChromeUA, <-gotUA)
}

func TestFetch_NonSuccessStatusIsFinal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Options{Client: srv.Client()})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var be *models.BrandError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, models.ErrCodeFetchFailed, be.Code)
	assert.Equal(t, http.StatusNotFound, be.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_FallsBackToHTTPOnTLSFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><title>Plain</title></html>"))
	}))
	defer srv.Close()

	// No scheme: the HTTPS attempt hits a plain-HTTP listener and fails the handshake.
	host := strings.TrimPrefix(srv.URL, "http://")

	f := New(Options{Client: &http.Client{}})
	page, err := f.Fetch(context.Background(), host)
	require.NoError(t, err)

	assert.True(t, page.FellBack)
	assert.Equal(t, "http://"+host, page.Origin)
	assert.Contains(t, page.HTML, "Plain")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_FallbackStatusErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Options{Client: &http.Client{}})
	_, err := f.Fetch(context.Background(), strings.TrimPrefix(srv.URL, "http://"))

	var be *models.BrandError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, models.ErrCodeFetchFailed, be.Code)
	assert.Equal(t, http.StatusServiceUnavailable, be.StatusCode)
}

func TestFetch_BothSchemesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	f := New(Options{Client: &http.Client{}, Timeout: 2 * time.Second})
	_, err := f.Fetch(context.Background(), host)

	var be *models.BrandError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, models.ErrCodeFetchFailed, be.Code)
	assert.Zero(t, be.StatusCode)
}

func TestFetch_ExplicitHTTPIsNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	f := New(Options{Client: &http.Client{}, Timeout: 2 * time.Second})
	_, err := f.Fetch(context.Background(), target)

	var be *models.BrandError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, models.ErrCodeFetchFailed, be.Code)
	assert.NotContains(t, be.Message, "over https and http")
}

func TestFetch_DecodesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("<html><h1>Compressed</h1></html>"))
		_ = gz.Close()
	}))
	defer srv.Close()

	f := New(Options{Client: srv.Client()})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><h1>Compressed</h1></html>", page.HTML)
}

func TestFetch_DecodesDeflate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "deflate")
		zw := zlib.NewWriter(w)
		_, _ = zw.Write([]byte("<html><h1>Deflated</h1></html>"))
		_ = zw.Close()
	}))
	defer srv.Close()

	f := New(Options{Client: srv.Client()})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><h1>Deflated</h1></html>", page.HTML)
}

func TestFetch_UndecodableBodyIsFinal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write([]byte("definitely not gzip"))
	}))
	defer srv.Close()

	// Bare host: HTTPS succeeds at the transport level, so no HTTP retry.
	f := New(Options{Client: srv.Client()})
	_, err := f.Fetch(context.Background(), strings.TrimPrefix(srv.URL, "https://"))

	var be *models.BrandError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, models.ErrCodeFetchFailed, be.Code)
	assert.Zero(t, be.StatusCode)
	assert.Contains(t, be.Message, "failed to read")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_CapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	f := New(Options{Client: srv.Client(), MaxBodyBytes: 100})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.HTML, 100)
}
