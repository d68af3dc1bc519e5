package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"caseguard/internal/authz"
	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/internal/session"
	"caseguard/pkg/apierror"
)

const (
	ParamCollectionID = "collectionID"
	ParamItemID       = "itemID"
	ParamUserID       = "userID"
)

type authorizer interface {
	Authorize(ctx context.Context, req authz.Request) (authz.Decision, error)
}

// Guards builds per-route permission middleware on top of the session monitor.
type Guards struct {
	engine    authorizer
	responder *respond.Responder
}

func NewGuards(engine authorizer, responder *respond.Responder) *Guards {
	return &Guards{engine: engine, responder: responder}
}

// Require authorizes action on the collection or item named in the route.
func (g *Guards) Require(action authz.Action, scope authz.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := session.FromContext(r.Context())
			if !ok {
				g.responder.Error(w, r, apierror.Unauthorized("authentication required"))
				return
			}

			req := authz.Request{
				ActorID: state.Principal.ID,
				Role:    state.Principal.Role,
				Action:  action,
				Scope:   scope,
			}

			var err error
			if req.CollectionID, err = PathID(r, ParamCollectionID); err != nil {
				g.responder.Error(w, r, err)
				return
			}
			if scope == authz.ScopeItem {
				if req.ItemID, err = PathID(r, ParamItemID); err != nil {
					g.responder.Error(w, r, err)
					return
				}
			}

			if _, err := g.engine.Authorize(r.Context(), req); err != nil {
				g.responder.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits only principals holding one of roles. The role comes from storage,
// not from the token, so a demotion takes effect on the next request.
func (g *Guards) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := session.FromContext(r.Context())
			if !ok {
				g.responder.Error(w, r, apierror.Unauthorized("authentication required"))
				return
			}

			if _, exists := allowed[state.Principal.Role]; !exists {
				g.responder.Error(w, r, apierror.Forbidden("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PathID parses a positive integer route parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.Validation("invalid "+name, map[string]any{"param": name, "value": raw})
	}
	return id, nil
}
