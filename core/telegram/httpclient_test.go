package telegram

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedTransport struct {
	errs  []error
	calls int
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return nil, s.errs[s.calls-1]
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func dialErr() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func TestRetryTransportRecoversFromDialErrors(t *testing.T) {
	base := &scriptedTransport{errs: []error{dialErr(), dialErr()}}
	rt := &retryTransport{base: base, maxRetries: 2, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("text=hi"))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, base.calls)
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &scriptedTransport{errs: []error{dialErr(), dialErr(), dialErr()}}
	rt := &retryTransport{base: base, maxRetries: 1, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	assert.Error(t, err)
	assert.Equal(t, 2, base.calls)
}

func TestRetryTransportSkipsPermanentErrors(t *testing.T) {
	base := &scriptedTransport{errs: []error{errors.New("tls: bad certificate")}}
	rt := &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	assert.Error(t, err)
	assert.Equal(t, 1, base.calls)
}

func TestBuildHTTPClientOutlastsLongPoll(t *testing.T) {
	c := BuildHTTPClient(HTTPClientOptions{LongPollTimeout: 50 * time.Second})
	assert.Greater(t, c.Timeout, 50*time.Second)
	rt, ok := c.Transport.(*retryTransport)
	require.True(t, ok)
	tr, ok := rt.base.(*http.Transport)
	require.True(t, ok)
	assert.Greater(t, tr.ResponseHeaderTimeout, 50*time.Second)
}
