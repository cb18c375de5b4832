package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
)

const (
	NoticeLoginRequired  = "Please log in."
	NoticeSessionExpired = "Your session has expired. Please log in again."
	NoticeNotAuthorized  = "You are not authorized to access this page."
)

type Status int

const (
	Unauthenticated Status = iota
	Authenticated
	Rejected
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "unauthenticated"
	}
}

// AuthState is what ResolveIdentity learned about the caller.
type AuthState struct {
	Status   Status
	Identity *Identity
	Reason   error
}

func (s AuthState) IsAuthenticated() bool {
	return s.Status == Authenticated && s.Identity != nil
}

// Notice is the message a gate shows when it turns the caller away.
func (s AuthState) Notice() string {
	if s.Status == Rejected && errors.Is(s.Reason, ErrCredentialExpired) {
		return NoticeSessionExpired
	}
	return NoticeLoginRequired
}

type stateKey struct{}

func ContextWithState(ctx context.Context, state AuthState) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// StateFromContext returns Unauthenticated when ResolveIdentity never ran.
func StateFromContext(ctx context.Context) AuthState {
	if ctx == nil {
		return AuthState{}
	}
	if state, ok := ctx.Value(stateKey{}).(AuthState); ok {
		return state
	}
	return AuthState{}
}

func IdentityFromContext(ctx context.Context) *Identity {
	state := StateFromContext(ctx)
	if !state.IsAuthenticated() {
		return nil
	}
	return state.Identity
}

// Notifier queues a one-time message for the next rendered page.
type Notifier interface {
	Add(w http.ResponseWriter, r *http.Request, message string)
}

type Gate struct {
	Issuer        Issuer
	Cookies       *CookieJar
	Notices       Notifier
	Logger        *slog.Logger
	LoginPath     string
	DashboardPath string
	// OnError renders store failures; defaults to a bare 500.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

func NewGate(issuer Issuer, cookies *CookieJar, notices Notifier, lg *slog.Logger) *Gate {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Gate{
		Issuer:        issuer,
		Cookies:       cookies,
		Notices:       notices,
		Logger:        lg,
		LoginPath:     "/account/login",
		DashboardPath: "/account/",
	}
}

// ResolveIdentity runs on every request and stores an AuthState in the context.
// A rejected credential has its cookie cleared and is otherwise treated as anonymous.
func (g *Gate) ResolveIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := g.Cookies.Read(r)
		if value == "" {
			next.ServeHTTP(w, r.WithContext(ContextWithState(r.Context(), AuthState{Status: Unauthenticated})))
			return
		}

		identity, err := g.Issuer.Validate(r.Context(), value)
		switch {
		case err == nil:
			ctx := ContextWithState(r.Context(), AuthState{Status: Authenticated, Identity: identity})
			ctx = internal.ContextWithAccountID(ctx, identity.ID)
			ctx = logger.With(ctx, "account_id", identity.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		case errors.Is(err, ErrCredentialExpired), errors.Is(err, ErrCredentialInvalid), errors.Is(err, ErrCredentialAbsent):
			logger.From(r.Context()).Info("credential rejected", "reason", err)
			g.Cookies.Clear(w)
			next.ServeHTTP(w, r.WithContext(ContextWithState(r.Context(), AuthState{Status: Rejected, Reason: err})))
		default:
			logger.From(r.Context()).Error("credential lookup failed", "error", err)
			g.fail(w, r, err)
		}
	})
}

// RequireAuthenticated redirects anyone without a valid credential to the login page.
func (g *Gate) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())
		if !state.IsAuthenticated() {
			g.redirect(w, r, g.LoginPath, state.Notice())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole sends signed-in callers with another role to the dashboard and everyone else to login.
func (g *Gate) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := StateFromContext(r.Context())
			if !state.IsAuthenticated() {
				g.redirect(w, r, g.LoginPath, state.Notice())
				return
			}
			if _, ok := allowed[state.Identity.Role]; !ok {
				logger.From(r.Context()).Warn("role check failed",
					"role", state.Identity.Role,
					"path", r.URL.Path)
				g.redirect(w, r, g.DashboardPath, NoticeNotAuthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGuest keeps signed-in callers away from the login and registration pages.
func (g *Gate) RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if StateFromContext(r.Context()).IsAuthenticated() {
			http.Redirect(w, r, g.DashboardPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) redirect(w http.ResponseWriter, r *http.Request, path, notice string) {
	if g.Notices != nil && notice != "" {
		g.Notices.Add(w, r, notice)
	}
	http.Redirect(w, r, path, http.StatusFound)
}

func (g *Gate) fail(w http.ResponseWriter, r *http.Request, err error) {
	if g.OnError != nil {
		g.OnError(w, r, err)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
