package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"caseguard/internal/authz"
	"caseguard/internal/config"
	"caseguard/internal/handler"
	"caseguard/internal/metrics"
	"caseguard/internal/middleware"
	"caseguard/internal/model"
	"caseguard/internal/respond"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Grant    *handler.GrantHandler
	Resource *handler.ResourceHandler
	Activity *handler.ActivityHandler
	Health   *handler.HealthHandler
}

func New(
	cfg *config.Config,
	responder *respond.Responder,
	monitor *middleware.SessionMonitor,
	guards *middleware.Guards,
	m *metrics.Metrics,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery(responder))
	r.Use(middleware.Logging)
	r.Use(m.Instrument)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Check)
	r.Handle("/metrics", m.Handler())

	adminOnly := guards.RequireRole(model.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh-token", h.Auth.Refresh)

			auth.Group(func(session chi.Router) {
				session.Use(monitor.Handler)
				session.Get("/verify", h.Auth.Verify)
				session.Post("/logout", h.Auth.Logout)
				session.Post("/keep-alive", h.Auth.KeepAlive)
				session.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		api.Group(func(private chi.Router) {
			private.Use(monitor.Handler)

			private.Route("/users", func(users chi.Router) {
				users.Use(adminOnly)
				users.Get("/", h.User.List)
				users.Post("/", h.User.Register)
				users.Patch("/{userID}", h.User.Update)
				users.Delete("/{userID}", h.User.Delete)
				users.Get("/{userID}/grants", h.Grant.List)
				users.Put("/{userID}/collection-grants/{collectionID}", h.Grant.SetCollectionGrant)
				users.Delete("/{userID}/collection-grants/{collectionID}", h.Grant.RevokeCollectionGrant)
				users.Put("/{userID}/item-grants/{itemID}", h.Grant.SetItemGrant)
				users.Delete("/{userID}/item-grants/{itemID}", h.Grant.RevokeItemGrant)
			})

			private.Route("/collections", func(collections chi.Router) {
				collections.With(adminOnly).Post("/", h.Resource.CreateCollection)
				collections.With(guards.Require(authz.ActionView, authz.ScopeCollection)).Get("/{collectionID}", h.Resource.GetCollection)
				collections.With(guards.Require(authz.ActionCreate, authz.ScopeCollection)).Post("/{collectionID}/items", h.Resource.CreateItem)
				collections.With(guards.Require(authz.ActionView, authz.ScopeItem)).Get("/{collectionID}/items/{itemID}", h.Resource.GetItem)
				collections.With(guards.Require(authz.ActionEdit, authz.ScopeItem)).Put("/{collectionID}/items/{itemID}", h.Resource.UpdateItem)
				collections.With(guards.Require(authz.ActionDelete, authz.ScopeItem)).Delete("/{collectionID}/items/{itemID}", h.Resource.DeleteItem)
			})

			private.With(adminOnly).Get("/activity", h.Activity.List)
		})
	})

	return r
}
