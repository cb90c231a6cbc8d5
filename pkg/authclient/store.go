package authclient

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Tokens is the stored credential pair.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// OAuth2 converts the access half to an oauth2.Token.
func (t Tokens) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.AccessExpiresAt,
	}
}

// TokenStore persists the token pair of one session. Implementations must be safe for
// concurrent use.
type TokenStore interface {
	Load() (Tokens, bool)
	Save(tokens Tokens)
	Clear()
}

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
	ok     bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Tokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.ok
}

func (s *MemoryStore) Save(tokens Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens, s.ok = tokens, true
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens, s.ok = Tokens{}, false
}
