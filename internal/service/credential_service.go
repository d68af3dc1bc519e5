package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"caseguard/internal/model"
)

type CredentialFailure string

const (
	FailureNone        CredentialFailure = ""
	FailureNotFound    CredentialFailure = "NOT_FOUND"
	FailureDisabled    CredentialFailure = "DISABLED"
	FailureBadPassword CredentialFailure = "BAD_PASSWORD"
)

type CredentialResult struct {
	Principal model.Principal
	Failure   CredentialFailure
}

func (r CredentialResult) OK() bool {
	return r.Failure == FailureNone
}

// dummyHash keeps the not-found path as slow as a real comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3PNbkNNkDPm8mC9G4AQBCZe")

type CredentialVerifier struct {
	principals PrincipalStore
	audit      AuditSink
}

func NewCredentialVerifier(principals PrincipalStore, audit AuditSink) *CredentialVerifier {
	return &CredentialVerifier{principals: principals, audit: audit}
}

// Verify checks email and password. The returned error is reserved for storage failures;
// credential problems are reported through CredentialResult.Failure.
func (v *CredentialVerifier) Verify(ctx context.Context, email string, password string) (CredentialResult, error) {
	normalized := model.NormalizeEmail(email)
	if normalized == "" {
		return CredentialResult{Failure: FailureNotFound}, nil
	}

	principal, err := v.principals.FindByEmail(ctx, normalized)
	if errors.Is(err, model.ErrPrincipalNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		slog.Info("login rejected", "reason", FailureNotFound, "email", normalized)
		return CredentialResult{Failure: FailureNotFound}, nil
	}
	if err != nil {
		return CredentialResult{}, err
	}

	if !principal.IsActive {
		v.audit.Append(principal.ID, model.ActionLoginFailed, model.AuditDetail{
			Category:    model.CategorySecurity,
			TargetID:    model.Int64Ptr(principal.ID),
			Description: "login attempt on disabled account",
			Metadata:    map[string]any{"reason": string(FailureDisabled)},
		})
		return CredentialResult{Principal: principal, Failure: FailureDisabled}, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		v.audit.Append(principal.ID, model.ActionLoginFailed, model.AuditDetail{
			Category:    model.CategorySecurity,
			TargetID:    model.Int64Ptr(principal.ID),
			Description: "login attempt with wrong password",
			Metadata:    map[string]any{"reason": string(FailureBadPassword)},
		})
		return CredentialResult{Principal: principal, Failure: FailureBadPassword}, nil
	}

	return CredentialResult{Principal: principal}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
