package account_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/account"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/internal/flash"
	"github.com/frahmantamala/motors-dealership/internal/transport/view"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Account Handler", func() {
	var (
		repo    *mockAccountRepository
		issuer  *recordingIssuer
		cookies *auth.CookieJar
		notices *flash.Store
		handler *account.Handler
	)

	nav := func(context.Context) ([]view.NavItem, error) { return nil, nil }

	cookieNamed := func(rec *httptest.ResponseRecorder, name string) *http.Cookie {
		var last *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == name {
				last = c
			}
		}
		return last
	}

	serve := func(h http.HandlerFunc, req *http.Request, identity *auth.Identity) *httptest.ResponseRecorder {
		state := auth.AuthState{}
		if identity != nil {
			state = auth.AuthState{Status: auth.Authenticated, Identity: identity}
		}
		req = req.WithContext(auth.ContextWithState(req.Context(), state))
		rec := httptest.NewRecorder()
		notices.Middleware(h).ServeHTTP(rec, req)
		return rec
	}

	post := func(path string, values url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	registerForm := func() url.Values {
		return url.Values{
			account.FieldFirstName: {"Jane"},
			account.FieldLastName:  {"Doe"},
			account.FieldEmail:     {"jane@example.com"},
			account.FieldPassword:  {strongPassword},
		}
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = newMockAccountRepository()
		issuer = newRecordingIssuer()
		cookies = auth.NewCookieJar(issuer, false, time.Hour)
		notices = flash.NewStore(testSecret, false)
		renderer, err := view.New(nav, notices, lg)
		Expect(err).NotTo(HaveOccurred())

		svc := account.NewService(repo, testHasher, issuer, &recordingPublisher{}, lg)
		handler = account.NewHandler(svc, renderer, cookies, notices)
	})

	Describe("Register", func() {
		It("redirects to login and greets the new account on the next page", func() {
			rec := serve(handler.Register, post("/account/register", registerForm()), nil)
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/account/login"))

			notice := cookieNamed(rec, flash.CookieName)
			Expect(notice).NotTo(BeNil())

			req := httptest.NewRequest(http.MethodGet, "/account/login", nil)
			req.AddCookie(&http.Cookie{Name: notice.Name, Value: notice.Value})
			page := serve(handler.ShowLogin, req, nil)
			Expect(page.Body.String()).To(ContainSubstring("Congratulations, Jane"))
		})

		It("re-renders with a conflict when the email is taken", func() {
			serve(handler.Register, post("/account/register", registerForm()), nil)
			rec := serve(handler.Register, post("/account/register", registerForm()), nil)

			Expect(rec.Code).To(Equal(http.StatusConflict))
			body := rec.Body.String()
			Expect(body).To(ContainSubstring("already exists"))
			Expect(body).To(ContainSubstring(`value="Jane"`))
			Expect(body).NotTo(ContainSubstring(strongPassword))
		})

		It("shows field errors for invalid input", func() {
			form := registerForm()
			form.Set(account.FieldEmail, "not-an-email")
			rec := serve(handler.Register, post("/account/register", form), nil)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("A valid email is required."))
		})

		It("rejects a 73-byte password with a field error instead of a server error", func() {
			form := registerForm()
			form.Set(account.FieldPassword, strongPassword+strings.Repeat("a", 63))
			rec := serve(handler.Register, post("/account/register", form), nil)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("Password is too long (72 bytes maximum)."))
			Expect(repo.accounts).To(BeEmpty())
		})

		It("keeps surrounding spaces in the password instead of trimming them", func() {
			form := registerForm()
			form.Set(account.FieldPassword, " "+strongPassword+" ")
			rec := serve(handler.Register, post("/account/register", form), nil)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("Password must contain at least 1 uppercase, 1 number, and 1 special character."))
			Expect(repo.accounts).To(BeEmpty())
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			repo.seed("Jane", "jane@example.com", strongPassword, auth.RoleClient)
		})

		It("sets the credential cookie and redirects to the dashboard", func() {
			rec := serve(handler.Login, post("/account/login", url.Values{
				account.FieldEmail:    {"jane@example.com"},
				account.FieldPassword: {strongPassword},
			}), nil)

			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/account/"))
			cred := cookieNamed(rec, auth.TokenCookieName)
			Expect(cred).NotTo(BeNil())
			Expect(cred.HttpOnly).To(BeTrue())
		})

		It("re-renders with a notice on bad credentials", func() {
			rec := serve(handler.Login, post("/account/login", url.Values{
				account.FieldEmail:    {"jane@example.com"},
				account.FieldPassword: {"Wrong123!@#"},
			}), nil)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("Please check your credentials and try again."))
			Expect(rec.Body.String()).To(ContainSubstring(`value="jane@example.com"`))
			Expect(cookieNamed(rec, auth.TokenCookieName)).To(BeNil())
		})
	})

	Describe("account maintenance", func() {
		var identity *auth.Identity

		BeforeEach(func() {
			id := repo.seed("Jane", "jane@example.com", strongPassword, auth.RoleClient)
			identity = &auth.Identity{ID: id, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Role: auth.RoleClient}
		})

		It("pre-fills the update form from the store", func() {
			rec := serve(handler.ShowUpdate, httptest.NewRequest(http.MethodGet, "/account/update", nil), identity)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`value="jane@example.com"`))
		})

		It("reissues the cookie after a profile update", func() {
			rec := serve(handler.Update, post("/account/update", url.Values{
				account.FieldFirstName: {"Janet"},
				account.FieldLastName:  {"Doe"},
				account.FieldEmail:     {"jane@example.com"},
			}), identity)

			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			cred := cookieNamed(rec, auth.TokenCookieName)
			Expect(cred).NotTo(BeNil())
			reissued, err := issuer.Validate(context.Background(), cred.Value)
			Expect(err).NotTo(HaveOccurred())
			Expect(reissued.FirstName).To(Equal("Janet"))
		})

		It("returns to the update form with a success notice", func() {
			rec := serve(handler.Update, post("/account/update", url.Values{
				account.FieldFirstName: {"Janet"},
				account.FieldLastName:  {"Doe"},
				account.FieldEmail:     {"jane@example.com"},
			}), identity)

			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/account/update"))

			notice := cookieNamed(rec, flash.CookieName)
			Expect(notice).NotTo(BeNil())
			req := httptest.NewRequest(http.MethodGet, "/account/update", nil)
			req.AddCookie(&http.Cookie{Name: notice.Name, Value: notice.Value})
			page := serve(handler.ShowUpdate, req, identity)
			Expect(page.Code).To(Equal(http.StatusOK))
			Expect(page.Body.String()).To(ContainSubstring(account.NoticeProfileUpdated))
			Expect(page.Body.String()).To(ContainSubstring(`value="Janet"`))
		})

		It("rejects a password change longer than bcrypt accepts without a server error", func() {
			tooLong := strongPassword + strings.Repeat("a", 63)
			rec := serve(handler.UpdatePassword, post("/account/updatePassword", url.Values{
				account.FieldCurrentPassword: {strongPassword},
				account.FieldPassword:        {tooLong},
				account.FieldConfirmPassword: {tooLong},
			}), identity)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("Password is too long (72 bytes maximum)."))
		})

		It("re-renders when the password confirmation does not match", func() {
			rec := serve(handler.UpdatePassword, post("/account/updatePassword", url.Values{
				account.FieldCurrentPassword: {strongPassword},
				account.FieldPassword:        {"Xyz987$%^q"},
				account.FieldConfirmPassword: {"Xyz987$%^r"},
			}), identity)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("Passwords do not match."))
		})

		It("clears the cookie on logout, even twice", func() {
			for i := 0; i < 2; i++ {
				req := httptest.NewRequest(http.MethodGet, "/account/logout", nil)
				req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "whatever"})
				rec := serve(handler.Logout, req, identity)

				Expect(rec.Code).To(Equal(http.StatusFound))
				Expect(rec.Header().Get("Location")).To(Equal("/"))
				cleared := cookieNamed(rec, auth.TokenCookieName)
				Expect(cleared).NotTo(BeNil())
				Expect(cleared.MaxAge).To(BeNumerically("<", 0))
			}
		})
	})
})
