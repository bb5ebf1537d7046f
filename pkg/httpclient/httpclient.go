package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

func NewHttpClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxIdleConns:        1000,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport:     transport,
		CheckRedirect: traceRedirects,
	}
}

// RedirectTrace collects the redirect hops of a single request. The transport
// still follows them; only the final response decides up/down.
type RedirectTrace struct {
	mu        sync.Mutex
	locations []*url.URL
}

func (t *RedirectTrace) record(loc *url.URL) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locations = append(t.locations, loc)
}

func (t *RedirectTrace) Locations() []*url.URL {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*url.URL, len(t.locations))
	copy(out, t.locations)
	return out
}

type redirectTraceKey struct{}

// WithRedirectTrace attaches a redirect collector to the request context.
func WithRedirectTrace(ctx context.Context) (context.Context, *RedirectTrace) {
	trace := &RedirectTrace{}
	return context.WithValue(ctx, redirectTraceKey{}, trace), trace
}

func traceRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	if trace, ok := req.Context().Value(redirectTraceKey{}).(*RedirectTrace); ok {
		trace.record(req.URL)
	}
	return nil
}
