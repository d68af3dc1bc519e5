package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/internal/session"
	"caseguard/pkg/apierror"
)

type stubAuth struct {
	loginEmail   string
	refreshToken string
	loggedOut    int64
	err          error
}

func (s *stubAuth) Login(_ context.Context, email string, _ string) (model.LoginResponse, error) {
	s.loginEmail = email
	if s.err != nil {
		return model.LoginResponse{}, s.err
	}
	return model.LoginResponse{Token: "access", RefreshToken: "refresh", User: model.Principal{ID: 1, Email: email}}, nil
}

func (s *stubAuth) Refresh(_ context.Context, refreshToken string) (string, error) {
	s.refreshToken = refreshToken
	if s.err != nil {
		return "", s.err
	}
	return "fresh-access", nil
}

func (s *stubAuth) Logout(_ context.Context, principalID int64) error {
	s.loggedOut = principalID
	return s.err
}

func (s *stubAuth) ChangePassword(_ context.Context, principalID int64, _ string, _ string) (model.LoginResponse, error) {
	if s.err != nil {
		return model.LoginResponse{}, s.err
	}
	return model.LoginResponse{Token: "access", RefreshToken: "refresh", User: model.Principal{ID: principalID}}, nil
}

func serve(h http.HandlerFunc, method string, path string, body string, state *session.State) (*httptest.ResponseRecorder, model.APIResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if state != nil {
		req = req.WithContext(session.WithState(req.Context(), *state))
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	var envelope model.APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	return rec, envelope
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuth{}
		h := NewAuthHandler(stub, respond.New(false, nil))

		rec, body := serve(h.Login, http.MethodPost, "/api/v1/auth/login", `{"email":"ana@example.ch","password":"correct-horse"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, model.StatusSuccess, body.Status)
		require.Equal(t, "ana@example.ch", stub.loginEmail)

		data := body.Data.(map[string]any)
		require.Equal(t, "access", data["token"])
		require.Equal(t, "refresh", data["refreshToken"])
		require.NotContains(t, data["user"], "passwordHash")
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewAuthHandler(&stubAuth{}, respond.New(false, nil))
		rec, body := serve(h.Login, http.MethodPost, "/api/v1/auth/login", `{"email":`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, apierror.CodeValidation, body.Error.Code)
	})

	t.Run("disabled account", func(t *testing.T) {
		h := NewAuthHandler(&stubAuth{err: apierror.AccountDisabled()}, respond.New(false, nil))
		rec, body := serve(h.Login, http.MethodPost, "/api/v1/auth/login", `{"email":"ben@example.ch","password":"x"}`, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, apierror.CodeAccountDisabled, body.Error.Code)
	})
}

func TestAuthHandlerRefresh(t *testing.T) {
	t.Parallel()

	stub := &stubAuth{}
	h := NewAuthHandler(stub, respond.New(false, nil))

	rec, body := serve(h.Refresh, http.MethodPost, "/api/v1/auth/refresh-token", `{"refreshToken":"  "}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierror.CodeValidation, body.Error.Code)

	rec, body = serve(h.Refresh, http.MethodPost, "/api/v1/auth/refresh-token", `{"refreshToken":" abc "}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "abc", stub.refreshToken)
	require.Equal(t, "fresh-access", body.Data.(map[string]any)["token"])

	stub.err = apierror.InvalidToken("refresh token has been revoked")
	rec, body = serve(h.Refresh, http.MethodPost, "/api/v1/auth/refresh-token", `{"refreshToken":"abc"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, apierror.CodeInvalidToken, body.Error.Code)
}

func TestAuthHandlerSessionRoutes(t *testing.T) {
	t.Parallel()

	stub := &stubAuth{}
	h := NewAuthHandler(stub, respond.New(false, nil))
	state := &session.State{Principal: model.Principal{ID: 5, Email: "ana@example.ch", Role: model.RoleCollaborator}}

	rec, body := serve(h.Verify, http.MethodGet, "/api/v1/auth/verify", "", state)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body.Data.(map[string]any)["user"].(map[string]any)
	require.Equal(t, "ana@example.ch", user["email"])

	rec, _ = serve(h.Verify, http.MethodGet, "/api/v1/auth/verify", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(h.Logout, http.MethodPost, "/api/v1/auth/logout", "", state)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(5), stub.loggedOut)

	rec, body = serve(h.KeepAlive, http.MethodPost, "/api/v1/auth/keep-alive", "", state)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "session extended", body.Message)
}
