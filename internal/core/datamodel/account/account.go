package account

import "time"

type Account struct {
	ID           int64     `gorm:"column:account_id;primaryKey"`
	FirstName    string    `gorm:"column:account_firstname;not null"`
	LastName     string    `gorm:"column:account_lastname;not null"`
	Email        string    `gorm:"column:account_email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:account_password;not null"`
	Type         string    `gorm:"column:account_type;not null;default:Client"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string {
	return "account"
}
