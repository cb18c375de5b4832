package session

import "time"

// Session keeps the identity snapshot server-side. The raw cookie value is never stored, only its sha256.
type Session struct {
	TokenHash string    `gorm:"column:token_hash;primaryKey"`
	AccountID int64     `gorm:"column:account_id;not null;index"`
	FirstName string    `gorm:"column:first_name;not null"`
	LastName  string    `gorm:"column:last_name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Role      string    `gorm:"column:role;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
