package fetcher

import (
	"context"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

// chromeH1Spec builds a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only. utls mutates a spec while applying it, so every connection
// needs its own.
func chromeH1Spec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	// net/http cannot speak h2 over a utls connection, so never offer it.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return &spec, nil
}

// NewChromeTransport returns an http.Transport whose TLS handshakes carry a
// Chrome fingerprint. Plain-HTTP connections use the ordinary dialer.
func NewChromeTransport(dialTimeout time.Duration) *http.Transport {
	return newChromeTransport(dialTimeout, nil)
}

// newChromeTransport verifies servers against rootCAs, or the system pool
// when nil.
func newChromeTransport(dialTimeout time.Duration, rootCAs *x509.CertPool) *http.Transport {
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	return &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)

			cfg := &tls.Config{ServerName: host, RootCAs: rootCAs}
			var tlsConn *tls.UConn
			if spec, err := chromeH1Spec(); err == nil {
				tlsConn = tls.UClient(conn, cfg, tls.HelloCustom)
				if err := tlsConn.ApplyPreset(spec); err != nil {
					conn.Close()
					return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
				}
			} else {
				tlsConn = tls.UClient(conn, cfg, tls.HelloChrome_Auto)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// NewClient builds the shared client used for page fetches and logo probes.
func NewClient(dialTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewChromeTransport(dialTimeout),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}
