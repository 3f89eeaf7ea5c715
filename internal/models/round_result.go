package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoundResult is the permanent record of a settled round. The engine itself
// only keeps the most recent few.
type RoundResult struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoundID          uint32    `gorm:"uniqueIndex;not null" json:"round_id"`
	StartTick        uint32    `gorm:"not null" json:"start_tick"`
	EndTick          uint32    `gorm:"not null" json:"end_tick"`
	LockTick         uint32    `gorm:"not null" json:"lock_tick"`
	SettleTick       uint32    `gorm:"not null" json:"settle_tick"`
	StartPrice       int64     `gorm:"not null" json:"start_price"`
	EndPrice         int64     `gorm:"not null" json:"end_price"`
	PoolUp           uint64    `gorm:"not null" json:"pool_up"`
	PoolDown         uint64    `gorm:"not null" json:"pool_down"`
	TotalPayout      uint64    `gorm:"not null" json:"total_payout"`
	HouseFee         uint64    `gorm:"not null" json:"house_fee"`
	WinningDirection string    `gorm:"size:8;not null;index" json:"winning_direction"`
	BetCount         uint32    `gorm:"not null" json:"bet_count"`
	Winners          uint32    `gorm:"not null" json:"winners"`
	Losers           uint32    `gorm:"not null" json:"losers"`
	Unmatched        uint32    `gorm:"not null;default:0" json:"unmatched"`
	EmptyWinner      bool      `gorm:"not null;default:false" json:"empty_winner"`
	CreatedAt        time.Time `json:"created_at"`
}

func (RoundResult) TableName() string {
	return "round_results"
}

func (r *RoundResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
