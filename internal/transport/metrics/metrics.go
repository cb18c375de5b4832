// Package metrics defines the Prometheus metrics of the dealership site and
// the event-bus subscriber that feeds the business counters.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/core/events"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealership"

// ── Auth metrics ─────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of accounts created.",
	},
)

var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logouts_total",
		Help:      "Total number of logouts by signed-in accounts.",
	},
)

// AccountUpdatesTotal counts self-service account changes.
// Label:
//   - kind: "profile" or "password"
var AccountUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_updates_total",
		Help:      "Total number of account updates, by kind.",
	},
	[]string{"kind"},
)

// ── Inventory metrics ────────────────────────────────────────────────────────

var ClassificationsAddedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_classifications_added_total",
		Help:      "Total number of classifications added.",
	},
)

var VehiclesAddedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_vehicles_added_total",
		Help:      "Total number of vehicles added to inventory.",
	},
)

// ── HTTP metrics ─────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern, or "unmatched"
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// Subscribe wires the business counters to the domain events.
func Subscribe(bus *events.EventBus) {
	count := func(c prometheus.Counter) events.Handler {
		return func(context.Context, events.Event) error {
			c.Inc()
			return nil
		}
	}

	bus.Subscribe(events.EventTypeAccountRegistered, count(RegistrationsTotal))
	bus.Subscribe(events.EventTypeAccountLoggedIn, count(LoginsTotal.WithLabelValues("success")))
	bus.Subscribe(events.EventTypeAccountLoginFailed, count(LoginsTotal.WithLabelValues("failure")))
	bus.Subscribe(events.EventTypeAccountLoggedOut, count(LogoutsTotal))
	bus.Subscribe(events.EventTypeAccountProfileUpdated, count(AccountUpdatesTotal.WithLabelValues("profile")))
	bus.Subscribe(events.EventTypeAccountPasswordChanged, count(AccountUpdatesTotal.WithLabelValues("password")))
	bus.Subscribe(events.EventTypeClassificationAdded, count(ClassificationsAddedTotal))
	bus.Subscribe(events.EventTypeVehicleAdded, count(VehiclesAddedTotal))
}

// Middleware records request counts and latency by chi route pattern so
// ids in paths do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
