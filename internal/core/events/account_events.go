package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAccountRegistered      = "account.registered"
	EventTypeAccountLoggedIn        = "account.logged_in"
	EventTypeAccountLoginFailed     = "account.login_failed"
	EventTypeAccountProfileUpdated  = "account.profile_updated"
	EventTypeAccountPasswordChanged = "account.password_changed"
	EventTypeAccountLoggedOut       = "account.logged_out"
)

// AccountEvent never carries password material.
type AccountEvent struct {
	BaseEvent
	AccountID int64  `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
}

func NewAccountEvent(eventType string, accountID int64, email, role string) *AccountEvent {
	return &AccountEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"account_id": accountID,
				"email":      email,
				"role":       role,
			},
		},
		AccountID: accountID,
		Email:     email,
		Role:      role,
	}
}

// LoginFailedEvent records the submitted address only; it does not say which factor was wrong.
type LoginFailedEvent struct {
	BaseEvent
	Email string `json:"email"`
}

func NewLoginFailedEvent(email string) *LoginFailedEvent {
	return &LoginFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccountLoginFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"email": email,
			},
		},
		Email: email,
	}
}
