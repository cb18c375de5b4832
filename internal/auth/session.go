package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

const SessionCookieName = "session_id"

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists identity snapshots keyed by the sha256 of the cookie value.
// Find returns ErrSessionNotFound for unknown keys; Delete of an unknown key is not an error.
type SessionStore interface {
	Save(ctx context.Context, tokenHash string, identity Identity, expiresAt time.Time) error
	Find(ctx context.Context, tokenHash string) (*Identity, time.Time, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteForAccount(ctx context.Context, accountID int64) error
}

// SessionIssuer hands out opaque random keys; the snapshot lives in the store.
type SessionIssuer struct {
	store SessionStore
	ttl   time.Duration
	now   clock
}

func NewSessionIssuer(store SessionStore, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	s.now = now
	return s
}

func (s *SessionIssuer) CookieName() string {
	return SessionCookieName
}

func (s *SessionIssuer) Issue(ctx context.Context, identity Identity) (Credential, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return Credential{}, fmt.Errorf("generate session key: %w", err)
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	expiresAt := s.now().Add(s.ttl)

	if err := s.store.Save(ctx, HashSessionKey(value), identity, expiresAt); err != nil {
		return Credential{}, fmt.Errorf("save session: %w", err)
	}
	return Credential{Value: value, ExpiresAt: expiresAt}, nil
}

func (s *SessionIssuer) Validate(ctx context.Context, value string) (*Identity, error) {
	if value == "" {
		return nil, ErrCredentialAbsent
	}

	hash := HashSessionKey(value)
	identity, expiresAt, err := s.store.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrCredentialInvalid
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	if !s.now().Before(expiresAt) {
		_ = s.store.Delete(ctx, hash)
		return nil, ErrCredentialExpired
	}
	return identity, nil
}

func (s *SessionIssuer) Revoke(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	return s.store.Delete(ctx, HashSessionKey(value))
}

// RevokeAccount ends every session the account holds, on any device.
func (s *SessionIssuer) RevokeAccount(ctx context.Context, accountID int64) error {
	return s.store.DeleteForAccount(ctx, accountID)
}

func HashSessionKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
