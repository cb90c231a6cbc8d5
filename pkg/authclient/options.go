package authclient

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Options configures a Coordinator or Session.
type Options struct {
	Transport      http.RoundTripper
	Store          TokenStore
	Logger         *zap.Logger
	OnTerminate    func(err error)
	Retry          RetryPolicy
	RefreshTimeout time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithTransport sets the underlying transport. http.DefaultTransport is used otherwise.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *Options) { o.Transport = rt }
}

// WithStore sets the token store of a Session.
func WithStore(store TokenStore) Option {
	return func(o *Options) { o.Store = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithOnTerminate registers the hook run once each time the session is terminated.
func WithOnTerminate(fn func(err error)) Option {
	return func(o *Options) { o.OnTerminate = fn }
}

// WithRetry sets the transient-failure retry policy. A zero policy disables retries.
func WithRetry(policy RetryPolicy) Option {
	return func(o *Options) { o.Retry = policy }
}

// WithRefreshTimeout bounds one refresh exchange.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *Options) { o.RefreshTimeout = d }
}

func buildOptions(opts []Option) Options {
	o := Options{
		Retry:          DefaultRetryPolicy,
		RefreshTimeout: 10 * time.Second,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Store == nil {
		o.Store = NewMemoryStore()
	}
	return o
}
