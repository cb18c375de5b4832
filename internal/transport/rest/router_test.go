package rest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/account"
	accountPostgres "github.com/frahmantamala/motors-dealership/internal/account/postgres"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	accountDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/account"
	inventoryDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/inventory"
	"github.com/frahmantamala/motors-dealership/internal/core/events"
	"github.com/frahmantamala/motors-dealership/internal/flash"
	"github.com/frahmantamala/motors-dealership/internal/inventory"
	inventoryPostgres "github.com/frahmantamala/motors-dealership/internal/inventory/postgres"
	"github.com/frahmantamala/motors-dealership/internal/transport/rest"
	"github.com/frahmantamala/motors-dealership/internal/transport/view"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret     = "router-test-secret-0123456789abcdef"
	strongPassword = "Abc123!@#x"
)

type browser struct {
	client *http.Client
	base   string
}

func newBrowser(base string) *browser {
	jar, err := cookiejar.New(nil)
	Expect(err).NotTo(HaveOccurred())
	return &browser{
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// page holds a response with its body already read.
type page struct {
	Status   int
	Location string
	Body     string
}

func (b *browser) do(req *http.Request) page {
	resp, err := b.client.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return page{Status: resp.StatusCode, Location: resp.Header.Get("Location"), Body: string(body)}
}

func (b *browser) get(path string) page {
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	Expect(err).NotTo(HaveOccurred())
	return b.do(req)
}

func (b *browser) post(path string, values url.Values) page {
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(values.Encode()))
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) setCookie(name, value string) {
	u, err := url.Parse(b.base)
	Expect(err).NotTo(HaveOccurred())
	b.client.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

func (b *browser) login(email, password string) page {
	return b.post("/account/login", url.Values{
		account.FieldEmail:    {email},
		account.FieldPassword: {password},
	})
}

var _ = Describe("Router", func() {
	var (
		server     *httptest.Server
		db         *gorm.DB
		accounts   *account.Service
		catalog    *inventory.Service
		issuer     *auth.TokenIssuer
		bus        *events.EventBus
		rateLimits rest.RateLimits
		healthErr  error
	)

	start := func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&accountDatamodel.Account{},
			&inventoryDatamodel.Classification{},
			&inventoryDatamodel.Vehicle{},
		)).To(Succeed())

		bus = events.NewEventBus(lg)
		issuer = auth.NewTokenIssuer(testSecret, time.Hour)
		cookies := auth.NewCookieJar(issuer, false, time.Hour)
		notices := flash.NewStore(testSecret, false)

		accounts = account.NewService(accountPostgres.NewAccountRepository(db), auth.NewBcryptHasher(bcrypt.MinCost), issuer, bus, lg)
		catalog = inventory.NewService(inventoryPostgres.NewInventoryRepository(db), nil, bus, lg)

		var inventoryHandler *inventory.Handler
		renderer, err := view.New(func(ctx context.Context) ([]view.NavItem, error) {
			return inventoryHandler.Navigation(ctx)
		}, notices, lg)
		Expect(err).NotTo(HaveOccurred())
		inventoryHandler = inventory.NewHandler(catalog, renderer, notices)

		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Routes{
			Gate:      auth.NewGate(issuer, cookies, notices, lg),
			Notices:   notices,
			View:      renderer,
			Account:   account.NewHandler(accounts, renderer, cookies, notices),
			Inventory: inventoryHandler,
			Health: rest.NewHealthHandler(map[string]rest.Check{
				"database": func(ctx context.Context) error {
					if healthErr != nil {
						return healthErr
					}
					return sqlDB.PingContext(ctx)
				},
			}),
			RateLimits: rateLimits,
			Logger:     lg,
		})
		server = httptest.NewServer(router)
	}

	BeforeEach(func() {
		rateLimits = rest.RateLimits{}
		healthErr = nil
	})

	JustBeforeEach(start)

	AfterEach(func() {
		server.Close()
		Expect(bus.Wait(context.Background())).To(Succeed())
	})

	seedStaff := func(email string, role auth.Role) {
		_, err := accounts.CreateAccount(context.Background(), account.RegisterDTO{
			FirstName: "Staff",
			LastName:  "Member",
			Email:     email,
			Password:  strongPassword,
		}, role)
		Expect(err).NotTo(HaveOccurred())
	}

	registerForm := func(email string) url.Values {
		return url.Values{
			account.FieldFirstName: {"Jane"},
			account.FieldLastName:  {"Doe"},
			account.FieldEmail:     {email},
			account.FieldPassword:  {strongPassword},
		}
	}

	Describe("public pages", func() {
		It("renders the home page with the classification menu", func() {
			_, err := catalog.AddClassification(context.Background(), 0, inventory.AddClassificationDTO{Name: "Sedan"})
			Expect(err).NotTo(HaveOccurred())

			res := newBrowser(server.URL).get("/")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring(`href="/inv/type/Sedan"`))
		})

		It("shows an empty classification without failing", func() {
			res := newBrowser(server.URL).get("/inv/type/SUV")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring("SUV Vehicles"))
			Expect(res.Body).To(ContainSubstring("No vehicles found"))
		})

		It("renders the 404 page for unknown paths and vehicles", func() {
			b := newBrowser(server.URL)
			for _, path := range []string{"/nowhere", "/inv/detail/999", "/inv/detail/abc"} {
				res := b.get(path)
				Expect(res.Status).To(Equal(http.StatusNotFound), path)
				Expect(res.Body).To(ContainSubstring("find that page."), path)
			}
		})

		It("recovers from a panic with the generic error page", func() {
			res := newBrowser(server.URL).get("/trigger-error")
			Expect(res.Status).To(Equal(http.StatusInternalServerError))
			Expect(res.Body).To(ContainSubstring("There was a crash"))
			Expect(res.Body).NotTo(ContainSubstring("intentional error"))
		})
	})

	Describe("registration", func() {
		It("registers once and rejects the same email again", func() {
			b := newBrowser(server.URL)

			res := b.post("/account/register", registerForm("jane@example.com"))
			Expect(res.Status).To(Equal(http.StatusSeeOther))
			Expect(res.Location).To(Equal("/account/login"))

			res = b.get("/account/login")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring("Congratulations, Jane"))

			res = b.post("/account/register", registerForm("JANE@example.com"))
			Expect(res.Status).To(Equal(http.StatusConflict))
			Expect(res.Body).To(ContainSubstring("already exists"))
			Expect(res.Body).NotTo(ContainSubstring(strongPassword))
		})
	})

	Describe("session lifecycle", func() {
		It("logs in, reaches the dashboard, and logs out idempotently", func() {
			seedStaff("client@example.com", auth.RoleClient)
			b := newBrowser(server.URL)

			res := b.login("client@example.com", strongPassword)
			Expect(res.Status).To(Equal(http.StatusSeeOther))
			Expect(res.Location).To(Equal("/account/"))

			res = b.get("/account/")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring("Account Management"))

			res = b.get("/account/login")
			Expect(res.Status).To(Equal(http.StatusFound))
			Expect(res.Location).To(Equal("/account/"))

			for i := 0; i < 2; i++ {
				res = b.get("/account/logout")
				Expect(res.Status).To(Equal(http.StatusFound))
				Expect(res.Location).To(Equal("/"))
			}

			res = b.get("/account/")
			Expect(res.Status).To(Equal(http.StatusFound))
			Expect(res.Location).To(Equal("/account/login"))
		})

		It("turns away an expired credential with a notice", func() {
			seedStaff("client@example.com", auth.RoleClient)
			past := auth.NewTokenIssuer(testSecret, time.Hour).WithClock(func() time.Time {
				return time.Now().Add(-2 * time.Hour)
			})
			cred, err := past.Issue(context.Background(), auth.Identity{ID: 1, Email: "client@example.com", Role: auth.RoleClient})
			Expect(err).NotTo(HaveOccurred())

			b := newBrowser(server.URL)
			b.setCookie(auth.TokenCookieName, cred.Value)

			res := b.get("/account/")
			Expect(res.Status).To(Equal(http.StatusFound))
			Expect(res.Location).To(Equal("/account/login"))

			res = b.get("/account/login")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring("Your session has expired"))
		})

		It("treats a tampered credential as anonymous on public pages", func() {
			b := newBrowser(server.URL)
			b.setCookie(auth.TokenCookieName, "not-a-token")

			res := b.get("/")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring("My Account"))
		})
	})

	Describe("inventory management", func() {
		It("sends clients back to the dashboard", func() {
			seedStaff("client@example.com", auth.RoleClient)
			b := newBrowser(server.URL)
			Expect(b.login("client@example.com", strongPassword).Status).To(Equal(http.StatusSeeOther))

			res := b.get("/inv/")
			Expect(res.Status).To(Equal(http.StatusFound))
			Expect(res.Location).To(Equal("/account/"))

			res = b.get("/account/")
			Expect(res.Body).To(ContainSubstring("not authorized"))
		})

		It("sends anonymous visitors to login", func() {
			res := newBrowser(server.URL).post("/inv/add-classification", url.Values{
				inventory.FieldClassificationName: {"Hatchback"},
			})
			Expect(res.Status).To(Equal(http.StatusFound))
			Expect(res.Location).To(Equal("/account/login"))
		})

		It("lets an employee add a classification and a vehicle", func() {
			seedStaff("staff@example.com", auth.RoleEmployee)
			b := newBrowser(server.URL)
			Expect(b.login("staff@example.com", strongPassword).Status).To(Equal(http.StatusSeeOther))

			res := b.post("/inv/add-classification", url.Values{inventory.FieldClassificationName: {"Hatchback"}})
			Expect(res.Status).To(Equal(http.StatusSeeOther))
			Expect(res.Location).To(Equal("/inv/"))

			res = b.get("/inv/")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring("Hatchback"))

			list, err := catalog.ListClassifications(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))

			res = b.post("/inv/add-inventory", url.Values{
				inventory.FieldClassificationID: {itoa(list[0].ID)},
				inventory.FieldMake:             {"Honda"},
				inventory.FieldModel:            {"Civic"},
				inventory.FieldYear:             {"2021"},
				inventory.FieldDescription:      {"Reliable compact hatchback."},
				inventory.FieldImage:            {inventory.DefaultImage},
				inventory.FieldThumbnail:        {inventory.DefaultThumbnail},
				inventory.FieldPrice:            {"21500"},
				inventory.FieldMiles:            {"12,000"},
				inventory.FieldColor:            {"Red"},
			})
			Expect(res.Status).To(Equal(http.StatusSeeOther))

			res = b.get("/inv/type/Hatchback")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring("Honda Civic"))
			Expect(res.Body).To(ContainSubstring("$21,500"))
		})
	})

	Describe("rate limiting", func() {
		BeforeEach(func() {
			rateLimits = rest.RateLimits{LoginPerMinute: 2}
		})

		It("redirects back to the form once the limit is spent", func() {
			b := newBrowser(server.URL)
			for i := 0; i < 2; i++ {
				Expect(b.login("nobody@example.com", strongPassword).Status).To(Equal(http.StatusBadRequest))
			}

			res := b.login("nobody@example.com", strongPassword)
			Expect(res.Status).To(Equal(http.StatusSeeOther))
			Expect(res.Location).To(Equal("/account/login"))

			res = b.get("/account/login")
			Expect(res.Body).To(ContainSubstring("Too many attempts"))
		})
	})

	Describe("health", func() {
		It("reports healthy components", func() {
			res := newBrowser(server.URL).get("/health")
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body).To(ContainSubstring(`"status":"healthy"`))
			Expect(res.Body).To(ContainSubstring(`"database"`))
		})

		Context("when a component is down", func() {
			BeforeEach(func() {
				healthErr = errors.New("dial tcp: connection refused")
			})

			It("answers 503 without the underlying error", func() {
				res := newBrowser(server.URL).get("/health")
				Expect(res.Status).To(Equal(http.StatusServiceUnavailable))
				Expect(res.Body).To(ContainSubstring(`"status":"unhealthy"`))
				Expect(res.Body).NotTo(ContainSubstring("connection refused"))
			})
		})

		It("answers ping", func() {
			res := newBrowser(server.URL).get("/ping")
			Expect(res.Status).To(Equal(http.StatusOK))
		})
	})
})

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
