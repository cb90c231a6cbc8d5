package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/config"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
)

// Issuer signs and verifies access/refresh token pairs.
// It holds no mutable state and is safe for concurrent use.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         Clock
}

type tokenClaims struct {
	Roles []domain.Role    `json:"roles"`
	Kind  domain.TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// NewIssuer builds an issuer from auth configuration.
func NewIssuer(cfg config.AuthConfig, clock Clock) (*Issuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth.NewIssuer: %w", err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL(),
		refreshTTL:    cfg.RefreshTTL(),
		clock:         clock,
	}, nil
}

// Now returns the issuer's notion of the current time.
func (i *Issuer) Now() time.Time { return i.clock.Now() }

// Issue signs a fresh pair for principal with iat=now. The output depends only on
// principal, now and the issuer configuration.
func (i *Issuer) Issue(principal domain.Principal, now time.Time) (domain.TokenPair, error) {
	const op = "auth.Issuer.Issue"

	if principal.ID == "" {
		return domain.TokenPair{}, fmt.Errorf("%s: empty principal id", op)
	}
	roles := domain.NormalizeRoles(principal.Roles)

	access, accessExp, err := i.sign(principal.ID, roles, domain.TokenKindAccess, now, i.accessTTL, i.accessSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%s: sign access: %w", op, err)
	}
	refresh, refreshExp, err := i.sign(principal.ID, roles, domain.TokenKindRefresh, now, i.refreshTTL, i.refreshSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%s: sign refresh: %w", op, err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Rotate verifies a refresh token and issues a brand-new pair for the same subject and roles.
// The presented token is not revoked; it stays valid until its own expiry.
func (i *Issuer) Rotate(refreshToken string) (domain.TokenPair, error) {
	const op = "auth.Issuer.Rotate"

	claims, err := i.parse(refreshToken, domain.TokenKindRefresh, i.refreshSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	// NumericDate has second precision; keep iat strictly increasing across a rotation.
	now := i.clock.Now()
	if !now.Truncate(time.Second).After(claims.issuedAt) {
		now = claims.issuedAt.Add(time.Second)
	}

	pair, err := i.Issue(claims.Principal(), now)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// ParseAccess verifies an access token with the access secret.
func (i *Issuer) ParseAccess(accessToken string) (VerifiedClaims, error) {
	claims, err := i.parse(accessToken, domain.TokenKindAccess, i.accessSecret)
	if err != nil {
		return VerifiedClaims{}, fmt.Errorf("auth.Issuer.ParseAccess: %w", err)
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token with the refresh secret.
func (i *Issuer) ParseRefresh(refreshToken string) (VerifiedClaims, error) {
	claims, err := i.parse(refreshToken, domain.TokenKindRefresh, i.refreshSecret)
	if err != nil {
		return VerifiedClaims{}, fmt.Errorf("auth.Issuer.ParseRefresh: %w", err)
	}
	return claims, nil
}

func (i *Issuer) sign(subject string, roles []domain.Role, kind domain.TokenKind, now time.Time, ttl time.Duration, secret []byte) (string, time.Time, error) {
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims := &tokenClaims{
		Roles: roles,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Time, nil
}

func (i *Issuer) parse(tokenStr string, kind domain.TokenKind, secret []byte) (VerifiedClaims, error) {
	if tokenStr == "" {
		return VerifiedClaims{}, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return VerifiedClaims{}, ErrTokenExpired
		}
		return VerifiedClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return VerifiedClaims{}, ErrInvalidToken
	}
	if claims.Kind != kind {
		return VerifiedClaims{}, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return VerifiedClaims{}, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	return VerifiedClaims{
		subject:   claims.Subject,
		roles:     domain.NormalizeRoles(claims.Roles),
		kind:      claims.Kind,
		issuedAt:  claims.IssuedAt.Time,
		expiresAt: claims.ExpiresAt.Time,
	}, nil
}
