package middleware

import (
	"net/http"

	"github.com/frahmantamala/motors-dealership/pkg/logger"

	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// RequestID reuses an incoming trace id or mints one, and tags the context logger with it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set(traceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
