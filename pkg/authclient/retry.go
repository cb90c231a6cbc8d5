package authclient

import (
	"net/http"
	"time"
)

// RetryPolicy retries requests that failed at the transport level, never on an HTTP
// status. Attempts counts the first try; backoff grows linearly.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy makes three attempts 100ms, 200ms apart.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 100 * time.Millisecond}

type retryTransport struct {
	base   http.RoundTripper
	policy RetryPolicy
}

// newRetryTransport wraps base; a policy of one attempt or fewer returns base unchanged.
func newRetryTransport(base http.RoundTripper, policy RetryPolicy) http.RoundTripper {
	if policy.Attempts <= 1 {
		return base
	}
	return &retryTransport{base: base, policy: policy}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	for attempt := 1; ; attempt++ {
		resp, err := t.base.RoundTrip(req)
		if err == nil || attempt >= t.policy.Attempts || ctx.Err() != nil {
			return resp, err
		}
		// a consumed body without GetBody cannot be sent again
		if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
			return resp, err
		}

		timer := time.NewTimer(t.policy.Backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			req = req.Clone(ctx)
			req.Body = body
		}
	}
}
