package authclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stats counts coordinator activity since construction.
type Stats struct {
	Refreshes       int64
	RefreshFailures int64
	Queued          int64
	Replays         int64
	Terminations    int64
}

type outcome struct {
	resp *http.Response
	err  error
}

// pending is a request suspended until the in-flight refresh resolves.
type pending struct {
	req  *http.Request
	done chan outcome
}

func (p *pending) resolve(resp *http.Response, err error) {
	p.done <- outcome{resp: resp, err: err}
}

// Coordinator is an http.RoundTripper that attaches the stored access token and
// serializes refreshes. It is IDLE or REFRESHING; the transition and the queue are
// guarded by mu so exactly one refresh is outstanding.
type Coordinator struct {
	base           http.RoundTripper
	store          TokenStore
	refresher      Refresher
	onTerminate    func(error)
	logger         *zap.Logger
	refreshTimeout time.Duration

	mu         sync.Mutex
	refreshing bool
	terminated bool
	generation uint64
	queue      []*pending
	stats      Stats
}

var _ http.RoundTripper = (*Coordinator)(nil)

// NewCoordinator builds a coordinator over store. Options.Store is ignored.
func NewCoordinator(store TokenStore, refresher Refresher, opts ...Option) *Coordinator {
	o := buildOptions(opts)
	return &Coordinator{
		base:           newRetryTransport(o.Transport, o.Retry),
		store:          store,
		refresher:      refresher,
		onTerminate:    o.OnTerminate,
		logger:         o.Logger,
		refreshTimeout: o.RefreshTimeout,
	}
}

// RoundTrip sends req with the current access token and handles a 401 by refreshing
// once and replaying. A replayed request that is rejected again fails with
// ErrUnauthorized. Responses other than 401, including 403, pass through untouched.
func (c *Coordinator) RoundTrip(req *http.Request) (*http.Response, error) {
	req, err := replayable(req)
	if err != nil {
		return nil, err
	}

	sent := c.accessToken()
	resp, err := c.send(req, sent)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	discard(resp)
	return c.handleUnauthorized(req, sent)
}

func (c *Coordinator) handleUnauthorized(req *http.Request, sent string) (*http.Response, error) {
	c.mu.Lock()

	tokens, ok := c.store.Load()
	if ok && tokens.AccessToken != "" && tokens.AccessToken != sent {
		// a refresh or login stored new tokens after this request was sent
		c.mu.Unlock()
		return c.replay(req)
	}

	if c.refreshing {
		p := &pending{req: req, done: make(chan outcome, 1)}
		c.queue = append(c.queue, p)
		c.stats.Queued++
		c.mu.Unlock()
		return c.await(p)
	}

	if c.terminated {
		if !ok || tokens.RefreshToken == "" {
			// already terminated; the hook has run for this session
			c.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", ErrSessionTerminated, ErrNoCredentials)
		}
		c.terminated = false
	}

	if !ok || tokens.RefreshToken == "" {
		err := c.terminateLocked(ErrNoCredentials)
		c.mu.Unlock()
		c.notifyTerminated(err)
		return nil, err
	}

	generation := c.startLocked()
	c.mu.Unlock()

	fresh, refreshErr := c.rotate(req.Context(), tokens.RefreshToken)
	if err := c.finish(generation, fresh, refreshErr); err != nil {
		return nil, err
	}
	return c.replay(req)
}

// startLocked marks an exchange as outstanding. Callers hold mu.
func (c *Coordinator) startLocked() uint64 {
	c.refreshing = true
	c.stats.Refreshes++
	return c.generation
}

// finish applies the outcome of the exchange started under generation and resolves
// the queue. The returned error is the outcome for the caller that ran the exchange.
func (c *Coordinator) finish(generation uint64, fresh Tokens, refreshErr error) error {
	c.mu.Lock()
	if generation != c.generation {
		// Reset ran while the exchange was in flight; its result is discarded
		return c.restartLocked()
	}
	queued := c.queue
	c.queue = nil
	c.refreshing = false

	if refreshErr != nil {
		c.stats.RefreshFailures++
		err := c.terminateLocked(refreshErr)
		c.mu.Unlock()
		for _, p := range queued {
			p.resolve(nil, err)
		}
		c.notifyTerminated(err)
		return err
	}

	c.store.Save(fresh)
	c.mu.Unlock()
	c.logger.Debug("tokens refreshed", zap.Int("queued", len(queued)))

	if len(queued) > 0 {
		go c.drain(queued)
	}
	return nil
}

// restartLocked runs after a discarded exchange. Requests queued since the Reset get
// an exchange of their own, started only now so that exchanges never overlap.
// Callers hold mu; it is released before returning.
func (c *Coordinator) restartLocked() error {
	if len(c.queue) == 0 {
		c.refreshing = false
		c.mu.Unlock()
		return ErrSessionReset
	}

	tokens, ok := c.store.Load()
	if !ok || tokens.RefreshToken == "" {
		queued := c.queue
		c.queue = nil
		c.refreshing = false
		err := c.terminateLocked(ErrNoCredentials)
		c.mu.Unlock()
		for _, p := range queued {
			p.resolve(nil, err)
		}
		c.notifyTerminated(err)
		return ErrSessionReset
	}

	generation := c.startLocked()
	c.mu.Unlock()

	go func() {
		fresh, err := c.rotate(context.Background(), tokens.RefreshToken)
		_ = c.finish(generation, fresh, err)
	}()
	return ErrSessionReset
}

// terminateLocked clears credentials and enters the terminated state. Callers hold mu.
func (c *Coordinator) terminateLocked(cause error) error {
	c.store.Clear()
	c.terminated = true
	c.stats.Terminations++
	return fmt.Errorf("%w: %w", ErrSessionTerminated, cause)
}

func (c *Coordinator) notifyTerminated(err error) {
	c.logger.Warn("session terminated", zap.Error(err))
	if c.onTerminate != nil {
		c.onTerminate(err)
	}
}

// rotate runs the exchange detached from the caller's cancellation, since queued
// requests depend on its result.
func (c *Coordinator) rotate(ctx context.Context, refreshToken string) (Tokens, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	tokens, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return Tokens{}, err
	}
	if tokens.AccessToken == "" {
		return Tokens{}, fmt.Errorf("refresh returned an empty access token")
	}
	return tokens, nil
}

func (c *Coordinator) await(p *pending) (*http.Response, error) {
	ctx := p.req.Context()
	select {
	case out := <-p.done:
		return out.resp, out.err
	case <-ctx.Done():
	}

	c.mu.Lock()
	removed := c.remove(p)
	c.mu.Unlock()
	if !removed {
		// already handed to the drain; close whatever it produces
		go func() {
			if out := <-p.done; out.resp != nil {
				discard(out.resp)
			}
		}()
	}
	return nil, fmt.Errorf("%w: %w", ErrRequestCanceled, ctx.Err())
}

func (c *Coordinator) remove(p *pending) bool {
	for i, q := range c.queue {
		if q == p {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return true
		}
	}
	return false
}

// drain replays queued requests one at a time in arrival order.
func (c *Coordinator) drain(queued []*pending) {
	for _, p := range queued {
		if err := p.req.Context().Err(); err != nil {
			p.resolve(nil, fmt.Errorf("%w: %w", ErrRequestCanceled, err))
			continue
		}
		p.resolve(c.replay(p.req))
	}
}

// replay sends req a second time with the current token. It is never queued again.
func (c *Coordinator) replay(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.stats.Replays++
	c.mu.Unlock()

	resp, err := c.send(req, c.accessToken())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		discard(resp)
		return nil, fmt.Errorf("%w: %s %s", ErrUnauthorized, req.Method, req.URL.Path)
	}
	return resp, nil
}

func (c *Coordinator) send(req *http.Request, accessToken string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	out.Header.Del("Authorization")
	if accessToken != "" {
		Tokens{AccessToken: accessToken}.OAuth2().SetAuthHeader(out)
	}
	return c.base.RoundTrip(out)
}

func (c *Coordinator) accessToken() string {
	tokens, ok := c.store.Load()
	if !ok {
		return ""
	}
	return tokens.AccessToken
}

// Reset rejects every queued request with ErrSessionReset. The result of a refresh in
// flight is discarded, but the exchange still counts as outstanding: later 401s queue
// behind it and get a fresh exchange once it returns. Call it after storing fresh
// credentials or on logout.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	queued := c.queue
	c.queue = nil
	c.terminated = false
	c.generation++
	c.mu.Unlock()

	for _, p := range queued {
		p.resolve(nil, ErrSessionReset)
	}
}

// Pending reports how many requests are waiting on a refresh.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Stats returns a copy of the counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// replayable guarantees req.GetBody so the request can be sent more than once.
func replayable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}
	raw, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(raw))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(raw)), nil
	}
	return out, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
