package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServer mimics the auth API's documented shapes.
type authServer struct {
	mu          sync.Mutex
	access      string
	refresh     string
	serial      int
	refreshes   atomic.Int32
	rejectRenew bool
}

func (s *authServer) rotate() tokenPayload {
	s.serial++
	s.access = fmt.Sprintf("access-%d", s.serial)
	s.refresh = fmt.Sprintf("refresh-%d", s.serial)
	return tokenPayload{
		TokenType:        "Bearer",
		AccessToken:      s.access,
		AccessExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshToken:     s.refresh,
		RefreshExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

// expireAccess makes the current access token fail while keeping the refresh token.
func (s *authServer) expireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = "expired"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": code, "message": code}})
}

func (s *authServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "correct-horse" {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
			return
		}
		s.mu.Lock()
		tokens := s.rotate()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": authPayload{
			Principal: Principal{ID: "u-1", Roles: []string{"client"}},
			Tokens:    tokens,
		}})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		s.refreshes.Add(1)
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.rejectRenew || req["refresh_token"] != s.refresh {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": refreshPayload{Tokens: s.rotate()}})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+s.access
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": mePayload{
			Principal: Principal{ID: "u-1", Roles: []string{"client"}},
		}})
	})
	return mux
}

func TestSession_LoginMeRefreshTerminate(t *testing.T) {
	api := &authServer{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	var terminated atomic.Int32
	store := NewMemoryStore()
	session, err := NewSession(srv.URL,
		WithStore(store),
		WithRetry(RetryPolicy{}),
		WithOnTerminate(func(error) { terminated.Add(1) }))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = session.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, api.refreshes.Load(), "a failed login never refreshes")

	principal, err := session.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "u-1", principal.ID)

	me, err := session.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"client"}, me.Roles)

	api.expireAccess()
	_, err = session.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.refreshes.Load())
	tokens, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, "refresh-2", tokens.RefreshToken)

	tok, err := session.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, tokens.AccessToken, tok.AccessToken)

	api.mu.Lock()
	api.rejectRenew = true
	api.mu.Unlock()
	api.expireAccess()

	_, err = session.Me(ctx)
	require.ErrorIs(t, err, ErrSessionTerminated)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_TOKEN", apiErr.Code)
	assert.Equal(t, int32(1), terminated.Load())
	_, ok = store.Load()
	assert.False(t, ok)
	assert.Equal(t, int64(1), session.Coordinator().Stats().RefreshFailures)
}

func TestSession_LogoutClearsTokens(t *testing.T) {
	api := &authServer{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	session, err := NewSession(srv.URL, WithRetry(RetryPolicy{}))
	require.NoError(t, err)
	_, err = session.Login(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)

	session.Logout()
	_, err = session.TokenSource().Token()
	require.ErrorIs(t, err, ErrNoCredentials)

	_, err = session.Me(context.Background())
	require.ErrorIs(t, err, ErrSessionTerminated)
	assert.Zero(t, api.refreshes.Load())
}
