package account

import (
	"time"

	"github.com/frahmantamala/motors-dealership/internal/auth"
	accountDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/account"
)

// Account is the stored user record. PasswordHash never leaves the service layer.
type Account struct {
	ID           int64     `json:"account_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) Identity() auth.Identity {
	return auth.Identity{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Role:      a.Role,
	}
}

func ToDataModel(a *Account) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Type:         string(a.Role),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModel(a *accountDatamodel.Account) *Account {
	role, ok := auth.ParseRole(a.Type)
	if !ok {
		role = auth.RoleClient
	}
	return &Account{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Role:         role,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
