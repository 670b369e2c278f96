package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/counterbot/core/telegram/netutil"
)

// HTTPClientOptions tunes the Bot API client. Zero values use the defaults below.
type HTTPClientOptions struct {
	// LongPollTimeout is how long getUpdates may hang; header and overall timeouts grow by it.
	LongPollTimeout time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
}

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
	defaultKeepAlive       = 30 * time.Second
	// headroom over the long-poll window for slow headers and bodies
	defaultResponseHeadroom = 10 * time.Second
	defaultRetryAttempts    = 2
	defaultRetryBackoff     = time.Second
)

// BuildHTTPClient returns an HTTP client for Bot API calls with transport-level retries.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	if opts.LongPollTimeout <= 0 {
		opts.LongPollTimeout = 10 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultRetryAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: opts.LongPollTimeout + defaultResponseHeadroom,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Timeout: opts.LongPollTimeout + 2*defaultResponseHeadroom,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: opts.MaxRetries,
			backoff:    opts.RetryBackoff,
		},
	}
}

// retryTransport replays requests that failed before any response arrived.
// Requests with a body are replayed only when GetBody is set.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	ctx := req.Context()

	resp, err := base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.maxRetries; attempt++ {
		if !netutil.ShouldRetry(err) {
			return nil, err
		}
		next := req.Clone(ctx)
		if req.Body != nil && req.Body != http.NoBody {
			if req.GetBody == nil {
				return nil, err
			}
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, err
			}
			next.Body = body
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		resp, err = base.RoundTrip(next)
	}
	return resp, err
}
