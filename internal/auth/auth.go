package auth

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleClient   Role = "Client"
	RoleEmployee Role = "Employee"
	RoleAdmin    Role = "Admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleClient, RoleEmployee, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Identity is the account snapshot bound to a credential. It has no password material.
type Identity struct {
	ID        int64  `json:"account_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Credential is the cookie-borne artifact handed out at login.
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

// Issuer creates and checks credentials. A deployment runs exactly one realization.
type Issuer interface {
	Issue(ctx context.Context, identity Identity) (Credential, error)
	Validate(ctx context.Context, value string) (*Identity, error)
	Revoke(ctx context.Context, value string) error
	CookieName() string
}

// AccountRevoker is implemented by issuers that can end all credentials of one account.
// Signed tokens cannot be recalled, so TokenIssuer does not implement it.
type AccountRevoker interface {
	RevokeAccount(ctx context.Context, accountID int64) error
}

var (
	ErrCredentialAbsent  = errors.New("credential absent")
	ErrCredentialExpired = errors.New("credential expired")
	ErrCredentialInvalid = errors.New("credential invalid")
)

type clock func() time.Time
