package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/internal/transport"
	"github.com/frahmantamala/motors-dealership/internal/transport/view"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
)

const noticeFixErrors = "Please fix the errors below."

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*RegisterResult, error)
	Login(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	GetAccount(ctx context.Context, id int64) (*Account, error)
	UpdateProfile(ctx context.Context, accountID int64, credential string, dto UpdateProfileDTO) (*UpdateResult, error)
	ChangePassword(ctx context.Context, accountID int64, credential string, dto ChangePasswordDTO) (*UpdateResult, error)
	Logout(ctx context.Context, credential string, identity *auth.Identity) error
}

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, page view.Page)
	NotFound(w http.ResponseWriter, r *http.Request)
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	View    Renderer
	Cookies *auth.CookieJar
	Notices auth.Notifier
}

func NewHandler(svc ServiceAPI, renderer Renderer, cookies *auth.CookieJar, notices auth.Notifier) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		View:        renderer,
		Cookies:     cookies,
		Notices:     notices,
	}
}

// ShowLogin handles GET /account/login
func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "account/login", view.Page{Title: "Login"})
}

// Login handles POST /account/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := h.ReadForm(w, r, FieldEmail, FieldPassword)
	if err != nil {
		h.View.Render(w, r, http.StatusBadRequest, "account/login", view.Page{Title: "Login", Notices: []string{noticeFixErrors}})
		return
	}

	result, err := h.Service.Login(r.Context(), LoginDTO{Email: form[FieldEmail], Password: form[FieldPassword]})
	if err != nil {
		page := view.Page{Title: "Login", Form: sticky(form)}
		if appErr, ok := internal.IsAppError(err); ok && (appErr.Type == internal.ErrorTypeValidation || appErr.Type == internal.ErrorTypeUnauthorized) {
			page.Errors = appErr.FieldErrors()
			page.Notices = []string{internal.ErrInvalidCredentials.Message}
			h.View.Render(w, r, http.StatusBadRequest, "account/login", page)
			return
		}
		h.View.ServerError(w, r, err)
		return
	}

	h.Cookies.Set(w, result.Credential)
	h.SeeOther(w, r, "/account/")
}

// ShowRegister handles GET /account/register
func (h *Handler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "account/register", view.Page{Title: "Register"})
}

// Register handles POST /account/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := h.ReadForm(w, r, FieldFirstName, FieldLastName, FieldEmail, FieldPassword)
	if err != nil {
		h.View.Render(w, r, http.StatusBadRequest, "account/register", view.Page{Title: "Register", Notices: []string{noticeFixErrors}})
		return
	}

	result, err := h.Service.Register(r.Context(), RegisterDTO{
		FirstName: form[FieldFirstName],
		LastName:  form[FieldLastName],
		Email:     form[FieldEmail],
		Password:  form[FieldPassword],
	})
	if err != nil {
		h.formError(w, r, err, "account/register", view.Page{Title: "Register", Form: sticky(form)})
		return
	}

	h.Notices.Add(w, r, result.Notice)
	h.SeeOther(w, r, "/account/login")
}

// Dashboard handles GET /account/
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "account/dashboard", view.Page{Title: "Account Management"})
}

// ShowUpdate handles GET /account/update and pre-fills the form from the store.
func (h *Handler) ShowUpdate(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	a, err := h.Service.GetAccount(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			h.View.NotFound(w, r)
			return
		}
		h.View.ServerError(w, r, err)
		return
	}

	h.View.Render(w, r, http.StatusOK, "account/update", view.Page{
		Title: "Update Account",
		Form: map[string]string{
			FieldFirstName: a.FirstName,
			FieldLastName:  a.LastName,
			FieldEmail:     a.Email,
		},
	})
}

// Update handles POST /account/update
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	form, err := h.ReadForm(w, r, FieldFirstName, FieldLastName, FieldEmail)
	if err != nil {
		h.View.Render(w, r, http.StatusBadRequest, "account/update", view.Page{Title: "Update Account", Notices: []string{noticeFixErrors}})
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	result, err := h.Service.UpdateProfile(r.Context(), identity.ID, h.Cookies.Read(r), UpdateProfileDTO{
		FirstName: form[FieldFirstName],
		LastName:  form[FieldLastName],
		Email:     form[FieldEmail],
	})
	if err != nil {
		h.formError(w, r, err, "account/update", view.Page{Title: "Update Account", Form: form})
		return
	}

	h.Cookies.Set(w, result.Credential)
	h.Notices.Add(w, r, result.Notice)
	h.SeeOther(w, r, "/account/update")
}

// UpdatePassword handles POST /account/updatePassword
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	profile := map[string]string{
		FieldFirstName: identity.FirstName,
		FieldLastName:  identity.LastName,
		FieldEmail:     identity.Email,
	}

	form, err := h.ReadForm(w, r, FieldCurrentPassword, FieldPassword, FieldConfirmPassword)
	if err != nil {
		h.View.Render(w, r, http.StatusBadRequest, "account/update", view.Page{Title: "Update Account", Form: profile, Notices: []string{noticeFixErrors}})
		return
	}

	result, err := h.Service.ChangePassword(r.Context(), identity.ID, h.Cookies.Read(r), ChangePasswordDTO{
		CurrentPassword: form[FieldCurrentPassword],
		NewPassword:     form[FieldPassword],
		ConfirmPassword: form[FieldConfirmPassword],
	})
	if err != nil {
		h.formError(w, r, err, "account/update", view.Page{Title: "Update Account", Form: profile})
		return
	}

	h.Cookies.Set(w, result.Credential)
	h.Notices.Add(w, r, result.Notice)
	h.SeeOther(w, r, "/account/")
}

// Logout handles GET /account/logout. It succeeds without a credential too.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context(), h.Cookies.Read(r), auth.IdentityFromContext(r.Context())); err != nil {
		h.Logger.Error("logout: revoke failed", "error", err)
	}
	h.Cookies.Clear(w)
	h.Notices.Add(w, r, NoticeLoggedOut)
	http.Redirect(w, r, "/", http.StatusFound)
}

// formError re-renders a form for errors the caller can fix and falls back to the 500 page.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error, name string, page view.Page) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.View.ServerError(w, r, err)
		return
	}

	switch appErr.Type {
	case internal.ErrorTypeValidation:
		page.Errors = appErr.FieldErrors()
		page.Notices = []string{noticeFixErrors}
		h.View.Render(w, r, http.StatusBadRequest, name, page)
	case internal.ErrorTypeConflict:
		page.Notices = []string{appErr.Message}
		h.View.Render(w, r, http.StatusConflict, name, page)
	case internal.ErrorTypeNotFound:
		h.View.NotFound(w, r)
	default:
		h.View.ServerError(w, r, err)
	}
}

// sticky drops password fields before a form is echoed back.
func sticky(form map[string]string) map[string]string {
	out := make(map[string]string, len(form))
	for k, v := range form {
		if k == FieldPassword || k == FieldCurrentPassword || k == FieldConfirmPassword {
			continue
		}
		out[k] = v
	}
	return out
}
