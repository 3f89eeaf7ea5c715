package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransferKind string

const (
	TransferKindStake         TransferKind = "STAKE"
	TransferKindRefund        TransferKind = "REFUND"
	TransferKindPayout        TransferKind = "PAYOUT"
	TransferKindFeeWithdrawal TransferKind = "FEE_WITHDRAWAL"
)

// LedgerTransfer journals one movement of value into or out of the market.
// Stakes flow in; refunds, payouts and fee withdrawals flow out.
type LedgerTransfer struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Kind          TransferKind `gorm:"size:32;not null;index" json:"kind"`
	WalletAddress string       `gorm:"size:64;not null;index" json:"wallet_address"`
	Amount        uint64       `gorm:"not null" json:"amount"`
	Tick          uint32       `gorm:"not null" json:"tick"`
	RoundID       uint32       `gorm:"not null;index" json:"round_id"`
	CreatedAt     time.Time    `gorm:"index" json:"created_at"`
}

func (LedgerTransfer) TableName() string {
	return "ledger_transfers"
}

func (t *LedgerTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Inbound reports whether the transfer moved value into the market.
func (t LedgerTransfer) Inbound() bool {
	return t.Kind == TransferKindStake
}
