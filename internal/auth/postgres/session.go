package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/auth"
	sessionDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

// Save upserts the row and sweeps sessions that have already expired.
func (s *SessionStore) Save(ctx context.Context, tokenHash string, identity auth.Identity, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at <= ?", s.now()).Delete(&sessionDatamodel.Session{}).Error; err != nil {
			return fmt.Errorf("purge expired sessions: %w", err)
		}

		row := &sessionDatamodel.Session{
			TokenHash: tokenHash,
			AccountID: identity.ID,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			Email:     identity.Email,
			Role:      string(identity.Role),
			ExpiresAt: expiresAt,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"account_id", "first_name", "last_name", "email", "role", "expires_at"}),
		}).Create(row).Error
	})
}

func (s *SessionStore) Find(ctx context.Context, tokenHash string) (*auth.Identity, time.Time, error) {
	var row sessionDatamodel.Session
	err := s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, time.Time{}, auth.ErrSessionNotFound
		}
		return nil, time.Time{}, err
	}

	return &auth.Identity{
		ID:        row.AccountID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Role:      auth.Role(row.Role),
	}, row.ExpiresAt, nil
}

func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	return s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&sessionDatamodel.Session{}).Error
}

// DeleteForAccount drops every session of an account.
func (s *SessionStore) DeleteForAccount(ctx context.Context, accountID int64) error {
	return s.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&sessionDatamodel.Session{}).Error
}
