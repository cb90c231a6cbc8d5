package authclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// wire shapes of the auth API; every success body is {"data": ...}

type tokenPayload struct {
	TokenType        string    `json:"token_type"`
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func (p tokenPayload) tokens() Tokens {
	return Tokens{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

// Principal is an identity as reported by the API.
type Principal struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
	Guest bool     `json:"guest"`
}

type authPayload struct {
	Principal Principal    `json:"principal"`
	Tokens    tokenPayload `json:"tokens"`
}

type refreshPayload struct {
	Tokens tokenPayload `json:"tokens"`
}

type mePayload struct {
	Principal Principal `json:"principal"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeData reads a 2xx {"data": ...} body into out, or turns any other status into an
// *APIError. The body is always closed.
func decodeData(resp *http.Response, out any) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
