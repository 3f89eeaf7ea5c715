package models

import (
	"time"
)

// User is a wallet that has signed in at least once
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	WalletAddress string     `gorm:"uniqueIndex;size:64;not null" json:"wallet_address"`
	Nickname      string     `gorm:"uniqueIndex;size:64;not null" json:"nickname"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
