// Package respond writes the JSON envelope shared by handlers and middleware.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"caseguard/internal/model"
	"caseguard/internal/session"
	"caseguard/pkg/apierror"
)

type auditAppender interface {
	Append(actorID int64, action string, detail model.AuditDetail)
}

type Responder struct {
	development bool
	audit       auditAppender
}

// New returns a Responder. In development, internal errors carry their text and stack.
func New(development bool, audit auditAppender) *Responder {
	return &Responder{development: development, audit: audit}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, data any) {
	Write(w, status, model.APIResponse{Status: model.StatusSuccess, Data: data})
}

func (rs *Responder) Page(w http.ResponseWriter, data any, meta model.Meta) {
	Write(w, http.StatusOK, model.APIResponse{Status: model.StatusSuccess, Data: data, Meta: &meta})
}

func (rs *Responder) Message(w http.ResponseWriter, status int, message string) {
	Write(w, status, model.APIResponse{Status: model.StatusSuccess, Message: message})
}

// Error maps err onto the taxonomy. Anything unclassified is INTERNAL_ERROR, logged and
// appended to the activity log as a SYSTEM entry.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	if status >= http.StatusInternalServerError {
		actorID := session.PrincipalID(r.Context())
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "actor_id", actorID, "error", err)

		if rs.audit != nil {
			rs.audit.Append(actorID, model.ActionServerError, model.AuditDetail{
				Category:    model.CategorySystem,
				Description: "internal server error",
				Metadata:    map[string]any{"method": r.Method, "path": r.URL.Path, "error": err.Error()},
			})
		}

		if rs.development {
			body.Details = map[string]any{"error": err.Error(), "stack": string(debug.Stack())}
		}
	}

	Write(w, status, model.APIResponse{Status: model.StatusError, Error: body})
}

func classify(err error) (int, *model.APIError) {
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.HTTPStatus, &model.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
	case errors.Is(err, model.ErrPrincipalNotFound):
		return http.StatusNotFound, &model.APIError{Code: apierror.CodeNotFound, Message: "user not found"}
	case errors.Is(err, model.ErrCollectionMissing):
		return http.StatusNotFound, &model.APIError{Code: apierror.CodeNotFound, Message: "collection not found"}
	case errors.Is(err, model.ErrItemNotFound):
		return http.StatusNotFound, &model.APIError{Code: apierror.CodeNotFound, Message: "item not found"}
	case errors.Is(err, model.ErrGrantNotFound):
		return http.StatusNotFound, &model.APIError{Code: apierror.CodeNotFound, Message: "grant not found"}
	case errors.Is(err, model.ErrEmailTaken):
		return http.StatusConflict, &model.APIError{Code: apierror.CodeConflict, Message: "email already registered"}
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, &model.APIError{Code: apierror.CodeValidation, Message: "invalid input"}
	default:
		return http.StatusInternalServerError, &model.APIError{Code: apierror.CodeInternal, Message: "unexpected server error"}
	}
}

// Write encodes payload with the given status.
func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
