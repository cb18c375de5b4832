package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/account"
	"github.com/frahmantamala/motors-dealership/internal/core/common/dberrors"
	accountDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/account"
	"gorm.io/gorm"
)

// AccountRepository implements account.Repository using GORM
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) account.Repository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	var row accountDatamodel.Account
	if err := r.db.WithContext(ctx).Where("account_id = ?", id).First(&row).Error; err != nil {
		if dberrors.IsNotFound(err) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, err
	}
	return account.FromDataModel(&row), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var row accountDatamodel.Account
	if err := r.db.WithContext(ctx).Where("LOWER(account_email) = LOWER(?)", email).First(&row).Error; err != nil {
		if dberrors.IsNotFound(err) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, err
	}
	return account.FromDataModel(&row), nil
}

// EmailExists ignores the row with excludeID so an account can keep its own address.
func (r *AccountRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).Where("LOWER(account_email) = LOWER(?)", email)
	if excludeID != 0 {
		q = q.Where("account_id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	row := account.ToDataModel(a)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if dberrors.IsUniqueViolation(err) {
			return internal.ErrEmailExists
		}
		return err
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	a.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) error {
	res := r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).
		Where("account_id = ?", id).
		Updates(map[string]interface{}{
			"account_firstname": firstName,
			"account_lastname":  lastName,
			"account_email":     email,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		if dberrors.IsUniqueViolation(res.Error) {
			return internal.ErrEmailExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).
		Where("account_id = ?", id).
		Updates(map[string]interface{}{
			"account_password": passwordHash,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrAccountNotFound
	}
	return nil
}
