package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/motors-dealership/pkg/logger"
)

const maxFormBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// ReadForm parses a urlencoded body and returns the named fields, trimmed.
// Password fields are returned exactly as typed.
// Missing fields come back as empty strings so templates can echo them.
func (h *BaseHandler) ReadForm(w http.ResponseWriter, r *http.Request, fields ...string) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		value := r.PostFormValue(field)
		if !isSecretField(field) {
			value = strings.TrimSpace(value)
		}
		values[field] = value
	}
	return values, nil
}

func isSecretField(field string) bool {
	return strings.Contains(strings.ToLower(field), "password")
}

// SeeOther finishes a POST with a redirect so a refresh does not resubmit it.
func (h *BaseHandler) SeeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
