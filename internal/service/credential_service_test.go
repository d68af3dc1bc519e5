package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"caseguard/internal/model"
)

type failingPrincipals struct {
	*memPrincipals
}

func (failingPrincipals) FindByEmail(context.Context, string) (model.Principal, error) {
	return model.Principal{}, errors.New("pool exhausted")
}

func TestVerify(t *testing.T) {
	t.Parallel()

	principals := newMemPrincipals()
	active := principals.seed("ana@example.ch", "correct-horse", model.RoleCollaborator, true)
	disabled := principals.seed("ben@example.ch", "correct-horse", model.RoleCollaborator, false)

	tests := []struct {
		name     string
		email    string
		password string
		failure  CredentialFailure
		audited  bool
		wantID   int64
	}{
		{name: "valid credentials", email: "ana@example.ch", password: "correct-horse", wantID: active.ID},
		{name: "email is case insensitive", email: "  ANA@Example.CH ", password: "correct-horse", wantID: active.ID},
		{name: "wrong password", email: "ana@example.ch", password: "battery-staple", failure: FailureBadPassword, audited: true, wantID: active.ID},
		{name: "unknown email", email: "nobody@example.ch", password: "correct-horse", failure: FailureNotFound},
		{name: "empty email", email: "   ", password: "correct-horse", failure: FailureNotFound},
		{name: "empty password", email: "ana@example.ch", password: "", failure: FailureBadPassword, audited: true, wantID: active.ID},
		{name: "blank password", email: "ana@example.ch", password: "   ", failure: FailureBadPassword, audited: true, wantID: active.ID},
		{name: "disabled with correct password", email: "ben@example.ch", password: "correct-horse", failure: FailureDisabled, audited: true, wantID: disabled.ID},
		{name: "disabled with wrong password", email: "ben@example.ch", password: "nope", failure: FailureDisabled, audited: true, wantID: disabled.ID},
		{name: "disabled with empty password", email: "ben@example.ch", password: "", failure: FailureDisabled, audited: true, wantID: disabled.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &recordingAudit{}
			verifier := NewCredentialVerifier(principals, audit)

			result, err := verifier.Verify(context.Background(), tt.email, tt.password)
			require.NoError(t, err)
			require.Equal(t, tt.failure, result.Failure)
			require.Equal(t, tt.failure == FailureNone, result.OK())
			if tt.wantID != 0 {
				require.Equal(t, tt.wantID, result.Principal.ID)
			}

			if tt.audited {
				require.Equal(t, []string{model.ActionLoginFailed}, audit.actions())
				require.Equal(t, string(tt.failure), audit.last().detail.Metadata["reason"])
			} else {
				require.Empty(t, audit.actions())
			}
		})
	}
}

func TestVerifyStorageFailure(t *testing.T) {
	t.Parallel()

	verifier := NewCredentialVerifier(failingPrincipals{newMemPrincipals()}, &recordingAudit{})
	_, err := verifier.Verify(context.Background(), "ana@example.ch", "correct-horse")
	require.Error(t, err)
}
