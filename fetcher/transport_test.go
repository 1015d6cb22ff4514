package fetcher

import (
	"crypto/x509"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alpnOf(t *testing.T, spec *tls.ClientHelloSpec) *tls.ALPNExtension {
	t.Helper()
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			return alpn
		}
	}
	t.Fatal("no ALPN extension")
	return nil
}

func TestChromeH1Spec_FreshPerCall(t *testing.T) {
	a, err := chromeH1Spec()
	require.NoError(t, err)
	b, err := chromeH1Spec()
	require.NoError(t, err)

	assert.Equal(t, []string{"http/1.1"}, alpnOf(t, a).AlpnProtocols)

	alpnOf(t, a).AlpnProtocols = []string{"h2"}
	assert.Equal(t, []string{"http/1.1"}, alpnOf(t, b).AlpnProtocols)
}

// Run with -race: each handshake must use its own ClientHello spec.
func TestChromeTransport_ConcurrentHandshakes(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A client per goroutine forces a new TLS handshake each time.
			client := &http.Client{Transport: newChromeTransport(2*time.Second, pool), Timeout: 5 * time.Second}
			resp, err := client.Get(srv.URL)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err == nil && string(body) != "ok" {
				err = io.ErrUnexpectedEOF
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
