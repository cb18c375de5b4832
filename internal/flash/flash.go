package flash

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "notice"
	DefaultTTL = 5 * time.Minute
)

type claims struct {
	Notices []string `json:"notices"`
	jwt.RegisteredClaims
}

// bucket holds one request's view of the queue: what arrived in the cookie
// and what handlers added while serving it.
type bucket struct {
	loaded   bool
	incoming []string
	queued   []string
	consumed bool
}

type bucketKey struct{}

// Store carries one-time notices across redirects in a signed cookie.
type Store struct {
	secret []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(secret string, secure bool) *Store {
	return &Store{
		secret: []byte(secret),
		secure: secure,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
}

// Middleware gives each request its own queue so several Add calls accumulate.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), bucketKey{}, &bucket{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Add queues message for the next page that renders.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		return
	}
	b := s.bucket(r)
	b.queued = append(b.queued, message)

	pending := b.queued
	if !b.consumed {
		pending = append(append([]string{}, b.incoming...), b.queued...)
	}
	s.write(w, pending)
}

// Consume returns every pending notice and expires the cookie.
// A second call within the same request returns nothing.
func (s *Store) Consume(w http.ResponseWriter, r *http.Request) []string {
	b := s.bucket(r)
	if b.consumed {
		return nil
	}
	b.consumed = true

	notices := append(append([]string{}, b.incoming...), b.queued...)
	b.queued = nil
	if len(notices) > 0 || hasCookie(r) {
		s.clear(w)
	}
	return notices
}

func (s *Store) bucket(r *http.Request) *bucket {
	b, ok := r.Context().Value(bucketKey{}).(*bucket)
	if !ok {
		b = &bucket{}
	}
	if !b.loaded {
		b.incoming = s.read(r)
		b.loaded = true
	}
	return b
}

func (s *Store) read(r *http.Request) []string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	var c claims
	_, err = jwt.ParseWithClaims(cookie.Value, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil
	}
	return c.Notices
}

func (s *Store) write(w http.ResponseWriter, notices []string) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Notices: notices,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	value, err := token.SignedString(s.secret)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}

func (s *Store) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func hasCookie(r *http.Request) bool {
	_, err := r.Cookie(CookieName)
	return err == nil
}
