package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/hello-server/internal/api/handlers"
	"github.com/baharkarakas/hello-server/internal/auth"
	"github.com/baharkarakas/hello-server/internal/metrics"
	"github.com/baharkarakas/hello-server/internal/middleware"
	"github.com/baharkarakas/hello-server/internal/models"
)

// NewSiteRouter routes requests read off pooled connections.
// record may be nil.
func NewSiteRouter(site *handlers.Site, record func(models.AccessLog)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics)
	if record != nil {
		r.Use(middleware.AccessLog(record))
	}

	r.Get("/", site.Hello)
	r.Get("/sleep", site.Sleep)
	r.NotFound(site.NotFound)
	r.MethodNotAllowed(site.NotFound)
	return r
}

type AdminDeps struct {
	TM      *auth.TokenManager
	Admin   *handlers.AdminHandler
	RateRPS int
}

func NewAdminRouter(d AdminDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/login", d.Admin.Login)
		r.Post("/refresh", d.Admin.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.TM), middleware.RequireRole("admin"))
			r.Get("/pool", d.Admin.PoolStats)
			r.Get("/requests", d.Admin.Requests)
		})
	})
	return r
}
