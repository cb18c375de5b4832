package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenCookieName = "jwt"

// Claims embeds the identity snapshot next to the registered claims.
type Claims struct {
	AccountID int64  `json:"account_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer hands out self-contained HS256 tokens. Nothing is stored server-side,
// so a captured token stays valid until it expires even after logout.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    clock
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock swaps the time source; used by tests to step past expiry.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

func (t *TokenIssuer) CookieName() string {
	return TokenCookieName
}

func (t *TokenIssuer) Issue(_ context.Context, identity Identity) (Credential, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)

	claims := &Claims{
		AccountID: identity.ID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("sign token: %w", err)
	}
	return Credential{Value: signed, ExpiresAt: expiresAt}, nil
}

func (t *TokenIssuer) Validate(_ context.Context, value string) (*Identity, error) {
	if value == "" {
		return nil, ErrCredentialAbsent
	}

	token, err := jwt.ParseWithClaims(value, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrCredentialInvalid
	}
	if _, ok := ParseRole(string(claims.Role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrCredentialInvalid, claims.Role)
	}

	return &Identity{
		ID:        claims.AccountID,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Email:     claims.Email,
		Role:      claims.Role,
	}, nil
}

// Revoke is a no-op; clearing the cookie is all a signed token allows.
func (t *TokenIssuer) Revoke(context.Context, string) error {
	return nil
}
