package authclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyTransport fails the first failures calls, then answers 200 echoing the body.
type flakyTransport struct {
	mu       sync.Mutex
	failures int
	calls    int
	bodies   []string
}

var errConnReset = errors.New("connection reset by peer")

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(raw))
	}
	if f.calls <= f.failures {
		return nil, errConnReset
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("ok")),
		Request:    req,
	}, nil
}

func TestRetryTransport_RetriesTransportErrors(t *testing.T) {
	flaky := &flakyTransport{failures: 2}
	rt := newRetryTransport(flaky, RetryPolicy{Attempts: 3, Backoff: time.Millisecond})

	req, err := http.NewRequest(http.MethodPost, "http://studio.test/cart/items", strings.NewReader("payload"))
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, []string{"payload", "payload", "payload"}, flaky.bodies)
}

func TestRetryTransport_GivesUpAfterAttempts(t *testing.T) {
	flaky := &flakyTransport{failures: 10}
	rt := newRetryTransport(flaky, RetryPolicy{Attempts: 2, Backoff: time.Millisecond})

	req, err := http.NewRequest(http.MethodGet, "http://studio.test/auth/me", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.ErrorIs(t, err, errConnReset)
	assert.Equal(t, 2, flaky.calls)
}

func TestRetryTransport_DoesNotReplayOpaqueBody(t *testing.T) {
	flaky := &flakyTransport{failures: 1}
	rt := newRetryTransport(flaky, RetryPolicy{Attempts: 3, Backoff: time.Millisecond})

	req, err := http.NewRequest(http.MethodPost, "http://studio.test/cart/items", io.NopCloser(strings.NewReader("once")))
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.ErrorIs(t, err, errConnReset)
	assert.Equal(t, 1, flaky.calls)
}

func TestRetryTransport_DisabledPolicyIsPassThrough(t *testing.T) {
	flaky := &flakyTransport{}
	assert.Same(t, http.RoundTripper(flaky), newRetryTransport(flaky, RetryPolicy{}))
}
