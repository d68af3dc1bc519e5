package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"caseguard/internal/model"
	"caseguard/pkg/apierror"
)

func newTestIssuer(t *testing.T, principals principalReader, clock *fixedClock) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(testTokenConfig, principals)
	require.NoError(t, err)
	issuer.SetClock(clock.Now)
	return issuer
}

func TestNewTokenIssuerRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer(TokenConfig{AccessTTL: time.Hour, RenewTTL: time.Hour, RefreshTTL: time.Hour}, newMemPrincipals())
	require.Error(t, err)

	_, err = NewTokenIssuer(TokenConfig{Secret: "s", AccessTTL: time.Hour}, newMemPrincipals())
	require.Error(t, err)
}

func TestIssueEmbedsCurrentTokenVersion(t *testing.T) {
	t.Parallel()

	principals := newMemPrincipals()
	p := principals.seed("ana@example.ch", "correct-horse", model.RoleCollaborator, true)
	_, err := principals.IncrementTokenVersion(context.Background(), p.ID)
	require.NoError(t, err)

	clock := newFixedClock()
	issuer := newTestIssuer(t, principals, clock)

	// A stale in-memory copy must not leak its version into the tokens.
	pair, err := issuer.Issue(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 1, pair.TokenVersion)

	access, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, p.ID, access.UserID)
	require.Equal(t, "ana@example.ch", access.Email)
	require.Equal(t, 1, access.TokenVersion)
	require.True(t, access.LastActivity.Equal(clock.Now()))
	require.True(t, access.ExpiresAt.Time.Equal(clock.Now().Add(12*time.Hour)))
	require.Nil(t, access.SessionWarning)

	refresh, err := issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, 1, refresh.TokenVersion)
	require.True(t, refresh.ExpiresAt.Time.Equal(clock.Now().Add(7*24*time.Hour)))
}

func TestParseAccessFailures(t *testing.T) {
	t.Parallel()

	principals := newMemPrincipals()
	p := principals.seed("ana@example.ch", "correct-horse", model.RoleCollaborator, true)
	clock := newFixedClock()
	issuer := newTestIssuer(t, principals, clock)

	pair, err := issuer.Issue(context.Background(), p)
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		_, err := issuer.ParseAccess(pair.AccessToken + "x")
		require.Equal(t, apierror.CodeInvalidToken, apierror.CodeOf(err))
	})

	t.Run("refresh token presented as access token", func(t *testing.T) {
		_, err := issuer.ParseAccess(pair.RefreshToken)
		require.Equal(t, apierror.CodeInvalidToken, apierror.CodeOf(err))
	})

	t.Run("foreign secret", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenConfig{Secret: "another-secret", AccessTTL: time.Hour, RenewTTL: time.Hour, RefreshTTL: time.Hour}, principals)
		require.NoError(t, err)
		other.SetClock(clock.Now)
		token, err := other.IssueAccess(p)
		require.NoError(t, err)

		_, err = issuer.ParseAccess(token)
		require.Equal(t, apierror.CodeInvalidToken, apierror.CodeOf(err))
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := &model.AccessClaims{UserID: p.ID, LastActivity: clock.Now(), Type: model.TokenTypeAccess}
		claims.ExpiresAt = jwt.NewNumericDate(clock.Now().Add(time.Hour))
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.ParseAccess(token)
		require.Equal(t, apierror.CodeInvalidToken, apierror.CodeOf(err))
	})
}

func TestParseAccessAfterExpiry(t *testing.T) {
	t.Parallel()

	principals := newMemPrincipals()
	p := principals.seed("ana@example.ch", "correct-horse", model.RoleCollaborator, true)
	clock := newFixedClock()
	issuer := newTestIssuer(t, principals, clock)

	token, err := issuer.IssueAccess(p)
	require.NoError(t, err)

	clock.Advance(13 * time.Hour)
	_, err = issuer.ParseAccess(token)
	require.Equal(t, apierror.CodeSessionExpired, apierror.CodeOf(err))
}

func TestRenewAndResign(t *testing.T) {
	t.Parallel()

	principals := newMemPrincipals()
	p := principals.seed("ana@example.ch", "correct-horse", model.RoleCollaborator, true)
	clock := newFixedClock()
	issuer := newTestIssuer(t, principals, clock)

	token, err := issuer.IssueAccess(p)
	require.NoError(t, err)
	claims, err := issuer.ParseAccess(token)
	require.NoError(t, err)
	originalExpiry := claims.ExpiresAt.Time

	clock.Advance(45 * time.Minute)

	resigned, err := issuer.Resign(claims)
	require.NoError(t, err)
	again, err := issuer.ParseAccess(resigned)
	require.NoError(t, err)
	require.True(t, again.ExpiresAt.Time.Equal(originalExpiry))
	require.NotEqual(t, claims.ID, again.ID)

	claims.LastActivity = clock.Now()
	renewed, err := issuer.Renew(claims)
	require.NoError(t, err)
	fresh, err := issuer.ParseAccess(renewed)
	require.NoError(t, err)
	require.True(t, fresh.ExpiresAt.Time.Equal(clock.Now().Add(time.Hour)))
	require.True(t, fresh.LastActivity.Equal(clock.Now()))
}
