package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"caseguard/internal/model"
	"caseguard/pkg/apierror"
)

type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RenewTTL   time.Duration
	RefreshTTL time.Duration
}

// TokenIssuer mints and parses HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	renewTTL   time.Duration
	refreshTTL time.Duration
	principals principalReader
	now        func() time.Time
}

func NewTokenIssuer(cfg TokenConfig, principals principalReader) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RenewTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	return &TokenIssuer{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		renewTTL:   cfg.RenewTTL,
		refreshTTL: cfg.RefreshTTL,
		principals: principals,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// SetClock replaces the time source; used by tests and by callers sharing one clock.
func (t *TokenIssuer) SetClock(now func() time.Time) {
	t.now = now
}

// Issue mints an access/refresh pair for principal. The token version is re-read from
// storage so a logout racing with this call is not overwritten by a stale value.
func (t *TokenIssuer) Issue(ctx context.Context, principal model.Principal) (model.TokenPair, error) {
	fresh, err := t.principals.FindByID(ctx, principal.ID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("reload principal for issuance: %w", err)
	}

	now := t.now()
	access, err := t.sign(t.accessClaims(fresh, now), now, t.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := t.signRefresh(fresh, now)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh, TokenVersion: fresh.TokenVersion}, nil
}

// IssueAccess mints only an access token, with lastActivity=now and the given version.
func (t *TokenIssuer) IssueAccess(principal model.Principal) (string, error) {
	now := t.now()
	return t.sign(t.accessClaims(principal, now), now, t.accessTTL)
}

// Renew re-signs claims with a short expiry window. Callers set LastActivity first.
func (t *TokenIssuer) Renew(claims *model.AccessClaims) (string, error) {
	return t.sign(claims, t.now(), t.renewTTL)
}

// Resign re-signs claims keeping their current expiry.
func (t *TokenIssuer) Resign(claims *model.AccessClaims) (string, error) {
	now := t.now()
	ttl := t.renewTTL
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(now)
	}
	return t.sign(claims, now, ttl)
}

func (t *TokenIssuer) accessClaims(principal model.Principal, now time.Time) *model.AccessClaims {
	return &model.AccessClaims{
		UserID:             principal.ID,
		Email:              principal.Email,
		Role:               principal.Role,
		IsFirstLogin:       principal.IsFirstLogin,
		IsProfileCompleted: principal.IsProfileCompleted,
		LastActivity:       now,
		TokenVersion:       principal.TokenVersion,
		Type:               model.TokenTypeAccess,
	}
}

func (t *TokenIssuer) sign(claims *model.AccessClaims, now time.Time, ttl time.Duration) (string, error) {
	out := *claims
	out.Type = model.TokenTypeAccess
	out.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   fmt.Sprint(claims.UserID),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &out).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) signRefresh(principal model.Principal, now time.Time) (string, error) {
	claims := &model.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(principal.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
		UserID:       principal.ID,
		TokenVersion: principal.TokenVersion,
		Type:         model.TokenTypeRefresh,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
}

func (t *TokenIssuer) keyFunc(*jwt.Token) (any, error) {
	return t.secret, nil
}

// ParseAccess validates an access token. A lapsed exp yields SESSION_EXPIRED, anything
// else INVALID_TOKEN.
func (t *TokenIssuer) ParseAccess(token string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	if _, err := t.parser().ParseWithClaims(token, claims, t.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierror.SessionExpired("session has expired")
		}
		return nil, apierror.InvalidToken("invalid token")
	}

	if claims.Type != model.TokenTypeAccess || claims.UserID <= 0 || claims.LastActivity.IsZero() {
		return nil, apierror.InvalidToken("invalid token")
	}
	return claims, nil
}

func (t *TokenIssuer) ParseRefresh(token string) (*model.RefreshClaims, error) {
	claims := &model.RefreshClaims{}
	if _, err := t.parser().ParseWithClaims(token, claims, t.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierror.SessionExpired("refresh token has expired")
		}
		return nil, apierror.InvalidToken("invalid refresh token")
	}

	if claims.Type != model.TokenTypeRefresh || claims.UserID <= 0 {
		return nil, apierror.InvalidToken("invalid refresh token")
	}
	return claims, nil
}
