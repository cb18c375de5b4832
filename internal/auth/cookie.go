package auth

import (
	"net/http"
	"time"
)

// CookieJar writes the credential cookie for whichever issuer is active.
type CookieJar struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

func NewCookieJar(issuer Issuer, secure bool, maxAge time.Duration) *CookieJar {
	return &CookieJar{
		Name:   issuer.CookieName(),
		Secure: secure,
		MaxAge: maxAge,
	}
}

func (c *CookieJar) Set(w http.ResponseWriter, cred Credential) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    cred.Value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.MaxAge.Seconds()),
		Expires:  cred.ExpiresAt,
	})
}

func (c *CookieJar) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (c *CookieJar) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
