package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/account"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/internal/flash"
	"github.com/frahmantamala/motors-dealership/internal/inventory"
	"github.com/frahmantamala/motors-dealership/internal/transport/metrics"
	"github.com/frahmantamala/motors-dealership/internal/transport/middleware"
	"github.com/frahmantamala/motors-dealership/internal/transport/view"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const noticeTooManyRequests = "Too many attempts. Please wait a minute and try again."

type RateLimits struct {
	LoginPerMinute    int
	RegisterPerMinute int
}

// Routes is everything the router needs from the composition root.
type Routes struct {
	Gate        *auth.Gate
	Notices     *flash.Store
	View        *view.Renderer
	Account     *account.Handler
	Inventory   *inventory.Handler
	Health      *HealthHandler
	RateLimits  RateLimits
	MetricsPath string
	StaticDir   string
	Logger      *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps Routes) {
	deps.Gate.OnError = deps.View.ServerError

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	if deps.MetricsPath != "" {
		router.Use(metrics.Middleware)
	}
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger, deps.View.ServerError))
	router.Use(deps.Notices.Middleware)
	router.Use(deps.Gate.ResolveIdentity)

	router.NotFound(deps.View.NotFound)
	router.MethodNotAllowed(deps.View.NotFound)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		deps.View.Render(w, r, http.StatusOK, "home", view.Page{Title: "Home"})
	})
	router.Get("/trigger-error", func(w http.ResponseWriter, r *http.Request) {
		panic("intentional error from /trigger-error")
	})

	if deps.Health != nil {
		router.Get("/health", deps.Health.Health)
		router.Get("/ping", deps.Health.Ping)
	}
	if deps.MetricsPath != "" {
		router.Handle(deps.MetricsPath, promhttp.Handler())
	}
	if deps.StaticDir != "" {
		static := http.FileServer(http.Dir(deps.StaticDir))
		for _, prefix := range []string{"/css/*", "/js/*", "/images/*"} {
			router.Handle(prefix, static)
		}
	}

	router.Route("/account", func(r chi.Router) {
		r.Group(func(gr chi.Router) {
			gr.Use(deps.Gate.RequireGuest)
			gr.Get("/login", deps.Account.ShowLogin)
			gr.Get("/register", deps.Account.ShowRegister)
		})

		r.With(rateLimit(deps, deps.RateLimits.LoginPerMinute)).Post("/login", deps.Account.Login)
		r.With(rateLimit(deps, deps.RateLimits.RegisterPerMinute)).Post("/register", deps.Account.Register)
		r.Get("/logout", deps.Account.Logout)

		r.Group(func(pr chi.Router) {
			pr.Use(deps.Gate.RequireAuthenticated)
			pr.Get("/", deps.Account.Dashboard)
			pr.Get("/update", deps.Account.ShowUpdate)
			pr.Post("/update", deps.Account.Update)
			pr.Post("/updatePassword", deps.Account.UpdatePassword)
		})
	})

	router.Route("/inv", func(r chi.Router) {
		r.Get("/type/{classificationName}", deps.Inventory.ByClassification)
		r.Get("/detail/{invId}", deps.Inventory.Detail)

		r.Group(func(mr chi.Router) {
			mr.Use(deps.Gate.RequireRole(auth.RoleAdmin, auth.RoleEmployee))
			mr.Get("/", deps.Inventory.Management)
			mr.Get("/add-classification", deps.Inventory.ShowAddClassification)
			mr.Post("/add-classification", deps.Inventory.AddClassification)
			mr.Get("/add-inventory", deps.Inventory.ShowAddVehicle)
			mr.Post("/add-inventory", deps.Inventory.AddVehicle)
		})
	})
}

// rateLimit limits a form POST per client IP. A limit of zero disables it.
func rateLimit(deps Routes, perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			deps.Logger.Warn("rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			deps.Notices.Add(w, r, noticeTooManyRequests)
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		}),
	)
}
