package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caseguard/internal/model"
	"caseguard/pkg/apierror"
)

const minPasswordLength = 8

type AuthService struct {
	principals PrincipalStore
	verifier   *CredentialVerifier
	tokens     *TokenIssuer
	audit      AuditSink
}

func NewAuthService(principals PrincipalStore, verifier *CredentialVerifier, tokens *TokenIssuer, audit AuditSink) *AuthService {
	return &AuthService{principals: principals, verifier: verifier, tokens: tokens, audit: audit}
}

// Login verifies credentials, bumps the principal's token version and issues a token pair
// embedding the new version. Tokens from the previous session stop refreshing.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.LoginResponse, error) {
	result, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("verify credentials: %w", err)
	}

	switch result.Failure {
	case FailureNone:
	case FailureDisabled:
		return model.LoginResponse{}, apierror.AccountDisabled()
	default:
		return model.LoginResponse{}, apierror.InvalidCredentials()
	}

	if _, err := s.principals.IncrementTokenVersion(ctx, result.Principal.ID); err != nil {
		return model.LoginResponse{}, fmt.Errorf("bump token version: %w", err)
	}

	return s.startSession(ctx, result.Principal.ID, model.ActionLogin, "user logged in")
}

func (s *AuthService) startSession(ctx context.Context, principalID int64, action string, description string) (model.LoginResponse, error) {
	pair, err := s.tokens.Issue(ctx, model.Principal{ID: principalID})
	if err != nil {
		return model.LoginResponse{}, err
	}

	principal, err := s.principals.FindByID(ctx, principalID)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("load principal: %w", err)
	}

	s.audit.Append(principal.ID, action, model.AuditDetail{
		Category:    model.CategoryAuth,
		TargetID:    model.Int64Ptr(principal.ID),
		Description: description,
		Metadata:    map[string]any{"tokenVersion": pair.TokenVersion},
	})

	return model.LoginResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken, User: principal}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token itself is
// not rotated; it stays usable until it expires or the token version moves.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefresh(strings.TrimSpace(refreshToken))
	if err != nil {
		return "", err
	}

	principal, err := s.principals.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrPrincipalNotFound) {
		return "", apierror.InvalidToken("invalid refresh token")
	}
	if err != nil {
		return "", fmt.Errorf("load principal: %w", err)
	}

	if claims.TokenVersion != principal.TokenVersion {
		s.audit.Append(principal.ID, model.ActionAuthRejected, model.AuditDetail{
			Category:    model.CategorySecurity,
			TargetID:    model.Int64Ptr(principal.ID),
			Description: "refresh token version mismatch",
			Metadata:    map[string]any{"tokenVersion": claims.TokenVersion, "currentVersion": principal.TokenVersion},
		})
		return "", apierror.InvalidToken("refresh token has been revoked")
	}

	if !principal.IsActive {
		return "", apierror.AccountDisabled()
	}

	token, err := s.tokens.IssueAccess(principal)
	if err != nil {
		return "", err
	}

	s.audit.Append(principal.ID, model.ActionTokenRefresh, model.AuditDetail{
		Category:    model.CategoryAuth,
		TargetID:    model.Int64Ptr(principal.ID),
		Description: "access token refreshed",
	})
	return token, nil
}

// Logout invalidates every outstanding refresh token of the principal.
func (s *AuthService) Logout(ctx context.Context, principalID int64) error {
	version, err := s.principals.IncrementTokenVersion(ctx, principalID)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}

	s.audit.Append(principalID, model.ActionLogout, model.AuditDetail{
		Category:    model.CategoryAuth,
		TargetID:    model.Int64Ptr(principalID),
		Description: "user logged out",
		Metadata:    map[string]any{"tokenVersion": version},
	})
	return nil
}

func (s *AuthService) Principal(ctx context.Context, principalID int64) (model.Principal, error) {
	return s.principals.FindByID(ctx, principalID)
}

// ChangePassword replaces the password, clears the first-login flag and starts a new session.
func (s *AuthService) ChangePassword(ctx context.Context, principalID int64, current string, next string) (model.LoginResponse, error) {
	if len(next) < minPasswordLength {
		return model.LoginResponse{}, apierror.Validation("new password is too short", map[string]any{"minLength": minPasswordLength})
	}
	if current == next {
		return model.LoginResponse{}, apierror.Validation("new password must differ from the current one", nil)
	}

	principal, err := s.principals.FindByID(ctx, principalID)
	if err != nil {
		return model.LoginResponse{}, err
	}

	result, err := s.verifier.Verify(ctx, principal.Email, current)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("verify current password: %w", err)
	}
	if !result.OK() {
		return model.LoginResponse{}, apierror.InvalidCredentials()
	}

	hash, err := HashPassword(next)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("hash password: %w", err)
	}

	firstLogin := false
	if _, err := s.principals.Update(ctx, principalID, model.PrincipalPatch{
		PasswordHash: &hash,
		IsFirstLogin: &firstLogin,
	}); err != nil {
		return model.LoginResponse{}, err
	}

	if _, err := s.principals.IncrementTokenVersion(ctx, principalID); err != nil {
		return model.LoginResponse{}, fmt.Errorf("bump token version: %w", err)
	}

	return s.startSession(ctx, principalID, model.ActionPasswordChanged, "password changed")
}
