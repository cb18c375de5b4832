package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/internal/transport"
	"github.com/frahmantamala/motors-dealership/internal/transport/view"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
	"github.com/go-chi/chi"
)

const noticeFixErrors = "Please fix the errors below."

type ServiceAPI interface {
	ListClassifications(ctx context.Context) ([]Classification, error)
	ListByClassification(ctx context.Context, name string) ([]Vehicle, error)
	GetDetail(ctx context.Context, id int64) (*Vehicle, error)
	AddClassification(ctx context.Context, addedBy int64, dto AddClassificationDTO) (*Classification, error)
	AddVehicle(ctx context.Context, addedBy int64, dto AddVehicleDTO) (*Vehicle, error)
}

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, page view.Page)
	NotFound(w http.ResponseWriter, r *http.Request)
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}

// ClassificationPage is the data behind the classification grid.
type ClassificationPage struct {
	Name     string
	Vehicles []Vehicle
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	View    Renderer
	Notices auth.Notifier
}

func NewHandler(svc ServiceAPI, renderer Renderer, notices auth.Notifier) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		View:        renderer,
		Notices:     notices,
	}
}

// Navigation feeds the site menu from the current classifications.
func (h *Handler) Navigation(ctx context.Context) ([]view.NavItem, error) {
	list, err := h.Service.ListClassifications(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]view.NavItem, 0, len(list))
	for _, c := range list {
		items = append(items, view.NavItem{Name: c.Name, URL: "/inv/type/" + c.Name})
	}
	return items, nil
}

// ByClassification handles GET /inv/type/{classificationName}
func (h *Handler) ByClassification(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "classificationName")
	vehicles, err := h.Service.ListByClassification(r.Context(), name)
	if err != nil {
		h.View.ServerError(w, r, err)
		return
	}
	h.View.Render(w, r, http.StatusOK, "inventory/classification", view.Page{
		Title: name + " Vehicles",
		Data:  ClassificationPage{Name: name, Vehicles: vehicles},
	})
}

// Detail handles GET /inv/detail/{invId}. Ids that do not parse are a 404.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "invId"), 10, 64)
	if err != nil {
		h.View.NotFound(w, r)
		return
	}

	v, err := h.Service.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, internal.ErrVehicleNotFound) {
			h.View.NotFound(w, r)
			return
		}
		h.View.ServerError(w, r, err)
		return
	}
	h.View.Render(w, r, http.StatusOK, "inventory/detail", view.Page{
		Title: fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model),
		Data:  v,
	})
}

// Management handles GET /inv/
func (h *Handler) Management(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "inventory/management", view.Page{Title: "Vehicle Management"})
}

// ShowAddClassification handles GET /inv/add-classification
func (h *Handler) ShowAddClassification(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "inventory/add-classification", view.Page{Title: "Add New Classification"})
}

// AddClassification handles POST /inv/add-classification
func (h *Handler) AddClassification(w http.ResponseWriter, r *http.Request) {
	page := view.Page{Title: "Add New Classification"}
	form, err := h.ReadForm(w, r, FieldClassificationName)
	if err != nil {
		page.Notices = []string{noticeFixErrors}
		h.View.Render(w, r, http.StatusBadRequest, "inventory/add-classification", page)
		return
	}
	page.Form = form

	c, err := h.Service.AddClassification(r.Context(), internal.AccountIDFromContext(r.Context()), AddClassificationDTO{Name: form[FieldClassificationName]})
	if err != nil {
		h.formError(w, r, err, "inventory/add-classification", page)
		return
	}

	h.Notices.Add(w, r, fmt.Sprintf("Classification %q added successfully.", c.Name))
	h.SeeOther(w, r, "/inv/")
}

// ShowAddVehicle handles GET /inv/add-inventory
func (h *Handler) ShowAddVehicle(w http.ResponseWriter, r *http.Request) {
	h.renderVehicleForm(w, r, http.StatusOK, view.Page{
		Form: map[string]string{
			FieldImage:     DefaultImage,
			FieldThumbnail: DefaultThumbnail,
		},
	})
}

// AddVehicle handles POST /inv/add-inventory
func (h *Handler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	form, err := h.ReadForm(w, r, VehicleFields...)
	if err != nil {
		h.renderVehicleForm(w, r, http.StatusBadRequest, view.Page{Notices: []string{noticeFixErrors}})
		return
	}

	v, err := h.Service.AddVehicle(r.Context(), internal.AccountIDFromContext(r.Context()), VehicleFromForm(form))
	if err != nil {
		appErr, ok := internal.IsAppError(err)
		if !ok || appErr.Type != internal.ErrorTypeValidation {
			h.View.ServerError(w, r, err)
			return
		}
		h.renderVehicleForm(w, r, http.StatusBadRequest, view.Page{
			Form:    form,
			Errors:  appErr.FieldErrors(),
			Notices: []string{noticeFixErrors},
		})
		return
	}

	h.Notices.Add(w, r, fmt.Sprintf("Vehicle \"%s %s\" added successfully.", v.Make, v.Model))
	h.SeeOther(w, r, "/inv/")
}

// renderVehicleForm loads the classification list for the select box.
func (h *Handler) renderVehicleForm(w http.ResponseWriter, r *http.Request, status int, page view.Page) {
	classifications, err := h.Service.ListClassifications(r.Context())
	if err != nil {
		h.View.ServerError(w, r, err)
		return
	}
	page.Title = "Add New Vehicle"
	page.Data = classifications
	h.View.Render(w, r, status, "inventory/add-inventory", page)
}

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
	default:
		h.View.ServerError(w, r, err)
	}
}
