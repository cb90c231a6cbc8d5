package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Refresher exchanges a refresh token for a new pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (Tokens, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	return f(ctx, refreshToken)
}

// HTTPRefresher calls POST {baseURL}/auth/refresh with {"refresh_token": ...} and reads
// {"data": {"tokens": {...}}}. Its client must not route through a Coordinator.
type HTTPRefresher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRefresher builds a refresher; a nil client means http.DefaultClient.
func NewHTTPRefresher(baseURL string, client *http.Client) *HTTPRefresher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRefresher{endpoint: strings.TrimRight(baseURL, "/") + "/auth/refresh", client: client}
}

func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return Tokens{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Tokens{}, fmt.Errorf("refresh: %w", err)
	}

	var payload refreshPayload
	if err := decodeData(resp, &payload); err != nil {
		return Tokens{}, fmt.Errorf("refresh: %w", err)
	}
	if payload.Tokens.AccessToken == "" || payload.Tokens.RefreshToken == "" {
		return Tokens{}, errors.New("refresh: response carried no tokens")
	}
	return payload.Tokens.tokens(), nil
}
