package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/pkg/apierror"
)

type stubActivity struct {
	last model.ActivityQuery
}

func (s *stubActivity) Query(_ context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	s.last = query
	return []model.ActivityEntry{{ID: "a", Action: model.ActionLogin}}, model.Meta{Page: query.Page, Limit: query.Limit, Total: 1, TotalPages: 1}, nil
}

func TestActivityHandlerFilters(t *testing.T) {
	t.Parallel()

	stub := &stubActivity{}
	h := NewActivityHandler(stub, respond.New(false, nil))

	rec, body := serve(h.List, http.MethodGet, "/api/v1/activity?action=login&category=auth&actorId=3&from=2026-03-01T00:00:00Z&page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, body.Meta.Total)

	require.Equal(t, "LOGIN", stub.last.Action)
	require.Equal(t, "AUTH", stub.last.Category)
	require.Equal(t, int64(3), *stub.last.ActorID)
	require.True(t, stub.last.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.Nil(t, stub.last.To)
	require.Equal(t, 2, stub.last.Page)
	require.Equal(t, 10, stub.last.Limit)
}

func TestActivityHandlerRejectsBadFilters(t *testing.T) {
	t.Parallel()

	h := NewActivityHandler(&stubActivity{}, respond.New(false, nil))

	for _, query := range []string{"?from=yesterday", "?to=2026-13-01", "?actorId=abc"} {
		rec, body := serve(h.List, http.MethodGet, "/api/v1/activity"+query, "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
		require.Equal(t, apierror.CodeValidation, body.Error.Code, query)
	}
}
