package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Session is one signed-in client. It owns the token store and the Coordinator that
// every authenticated request goes through.
type Session struct {
	baseURL string
	store   TokenStore
	coord   *Coordinator
	client  *http.Client
	plain   *http.Client
	logger  *zap.Logger
}

// NewSession creates a session against the API at baseURL. Both clients share one
// cookie jar so the guest cart cookie follows the caller into Login.
func NewSession(baseURL string, opts ...Option) (*Session, error) {
	o := buildOptions(opts)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	base := strings.TrimRight(baseURL, "/")
	plain := &http.Client{Transport: newRetryTransport(o.Transport, o.Retry), Jar: jar}
	coord := NewCoordinator(o.Store, NewHTTPRefresher(base, plain), opts...)

	return &Session{
		baseURL: base,
		store:   o.Store,
		coord:   coord,
		client:  &http.Client{Transport: coord, Jar: jar},
		plain:   plain,
		logger:  o.Logger,
	}, nil
}

// Login exchanges credentials for a token pair and stores it.
func (s *Session) Login(ctx context.Context, email, password string) (Principal, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Principal{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return Principal{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	// login is unauthenticated; a 401 here must not trigger a refresh
	resp, err := s.plain.Do(req)
	if err != nil {
		return Principal{}, fmt.Errorf("login: %w", err)
	}
	var payload authPayload
	if err := decodeData(resp, &payload); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, fmt.Errorf("login: %w", err)
	}

	s.store.Save(payload.Tokens.tokens())
	s.coord.Reset()
	s.logger.Debug("logged in", zap.String("principal_id", payload.Principal.ID))
	return payload.Principal, nil
}

// Me returns the principal of the current access token.
func (s *Session) Me(ctx context.Context) (Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/me", nil)
	if err != nil {
		return Principal{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Principal{}, fmt.Errorf("me: %w", err)
	}
	var payload mePayload
	if err := decodeData(resp, &payload); err != nil {
		return Principal{}, fmt.Errorf("me: %w", err)
	}
	return payload.Principal, nil
}

// Logout drops the stored credentials and rejects any request waiting on a refresh.
// Tokens are stateless, so there is no server call.
func (s *Session) Logout() {
	s.store.Clear()
	s.coord.Reset()
}

// HTTPClient returns the client whose requests carry the access token and refresh it
// on demand.
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// Coordinator exposes the session's coordinator, mainly for Stats.
func (s *Session) Coordinator() *Coordinator {
	return s.coord
}

// TokenSource adapts the stored access token to oauth2.TokenSource for callers that
// build their own oauth2 clients. It does not refresh.
func (s *Session) TokenSource() oauth2.TokenSource {
	return tokenSource{store: s.store}
}

type tokenSource struct {
	store TokenStore
}

func (t tokenSource) Token() (*oauth2.Token, error) {
	tokens, ok := t.store.Load()
	if !ok || tokens.AccessToken == "" {
		return nil, ErrNoCredentials
	}
	return tokens.OAuth2(), nil
}
