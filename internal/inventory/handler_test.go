package inventory_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/internal/flash"
	"github.com/frahmantamala/motors-dealership/internal/inventory"
	"github.com/frahmantamala/motors-dealership/internal/transport/view"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Inventory Handler", func() {
	var (
		repo   *mockInventoryRepository
		router chi.Router
	)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		admin := &auth.Identity{ID: 1, FirstName: "Ada", Role: auth.RoleAdmin}
		req = req.WithContext(auth.ContextWithState(req.Context(), auth.AuthState{Status: auth.Authenticated, Identity: admin}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	post := func(path string, values url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = newMockInventoryRepository()
		notices := flash.NewStore("fedcba9876543210fedcba9876543210", false)
		svc := inventory.NewService(repo, nil, &recordingPublisher{}, lg)

		var handler *inventory.Handler
		renderer, err := view.New(func(ctx context.Context) ([]view.NavItem, error) {
			return handler.Navigation(ctx)
		}, notices, lg)
		Expect(err).NotTo(HaveOccurred())
		handler = inventory.NewHandler(svc, renderer, notices)

		router = chi.NewRouter()
		router.Use(notices.Middleware)
		router.Get("/inv/type/{classificationName}", handler.ByClassification)
		router.Get("/inv/detail/{invId}", handler.Detail)
		router.Get("/inv/", handler.Management)
		router.Get("/inv/add-classification", handler.ShowAddClassification)
		router.Post("/inv/add-classification", handler.AddClassification)
		router.Get("/inv/add-inventory", handler.ShowAddVehicle)
		router.Post("/inv/add-inventory", handler.AddVehicle)
	})

	It("renders an explicit empty notice for a classification without vehicles", func() {
		repo.addClassification("SUV")
		rec := serve(httptest.NewRequest(http.MethodGet, "/inv/type/SUV", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("No vehicles found for this classification."))
		Expect(rec.Body.String()).To(ContainSubstring(`href="/inv/type/SUV"`))
	})

	It("renders vehicle details with formatted price and mileage", func() {
		suv := repo.addClassification("SUV")
		v := &inventory.Vehicle{Make: "Jeep", Model: "Wrangler", Year: 2021, Price: 28045, Miles: 41205, Color: "Yellow", ClassificationID: suv}
		Expect(repo.CreateVehicle(context.Background(), v)).To(Succeed())

		rec := serve(httptest.NewRequest(http.MethodGet, "/inv/detail/"+itoa(v.ID), nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		body := rec.Body.String()
		Expect(body).To(ContainSubstring("Jeep Wrangler"))
		Expect(body).To(ContainSubstring("$28,045"))
		Expect(body).To(ContainSubstring("41,205"))
	})

	It("answers 404 for unknown and malformed ids", func() {
		Expect(serve(httptest.NewRequest(http.MethodGet, "/inv/detail/999", nil)).Code).To(Equal(http.StatusNotFound))
		Expect(serve(httptest.NewRequest(http.MethodGet, "/inv/detail/abc", nil)).Code).To(Equal(http.StatusNotFound))
	})

	It("adds a classification and redirects to management", func() {
		rec := serve(post("/inv/add-classification", url.Values{inventory.FieldClassificationName: {"Luxury"}}))
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal("/inv/"))
		Expect(repo.ClassificationExists(context.Background(), "Luxury")).To(BeTrue())
	})

	It("re-renders duplicate classifications with a conflict", func() {
		repo.addClassification("SUV")
		rec := serve(post("/inv/add-classification", url.Values{inventory.FieldClassificationName: {"SUV"}}))
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("Classification already exists."))
	})

	It("pre-fills default image paths on the vehicle form", func() {
		repo.addClassification("SUV")
		rec := serve(httptest.NewRequest(http.MethodGet, "/inv/add-inventory", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(inventory.DefaultImage))
		Expect(rec.Body.String()).To(ContainSubstring(">SUV</option>"))
	})

	It("keeps entered values when the vehicle form has errors", func() {
		suv := repo.addClassification("SUV")
		rec := serve(post("/inv/add-inventory", url.Values{
			inventory.FieldClassificationID: {itoa(suv)},
			inventory.FieldMake:             {"Jeep"},
			inventory.FieldModel:            {"Wrangler"},
			inventory.FieldYear:             {"1850"},
			inventory.FieldDescription:      {"Trail rated and ready for anything."},
			inventory.FieldPrice:            {"28045"},
			inventory.FieldMiles:            {"41205"},
			inventory.FieldColor:            {"Yellow"},
		}))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		body := rec.Body.String()
		Expect(body).To(ContainSubstring(`value="Wrangler"`))
		Expect(body).To(ContainSubstring("Year must be between"))
		Expect(body).To(MatchRegexp(`option value="\d+" selected>SUV`))
		Expect(repo.vehicles).To(BeEmpty())
	})

	It("adds a vehicle and redirects to management", func() {
		suv := repo.addClassification("SUV")
		rec := serve(post("/inv/add-inventory", url.Values{
			inventory.FieldClassificationID: {itoa(suv)},
			inventory.FieldMake:             {"Jeep"},
			inventory.FieldModel:            {"Wrangler"},
			inventory.FieldYear:             {"2021"},
			inventory.FieldDescription:      {"Trail rated and ready for anything."},
			inventory.FieldPrice:            {"28045"},
			inventory.FieldMiles:            {"41205"},
			inventory.FieldColor:            {"Yellow"},
		}))
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(repo.vehicles).To(HaveLen(1))
	})
})
