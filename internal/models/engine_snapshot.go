package models

import (
	"time"

	"gorm.io/datatypes"
)

// EngineSnapshotID is the key of the single snapshot row.
const EngineSnapshotID = 1

// EngineSnapshot holds the serialized market state as of the last committed
// invocation, together with the clock value it was taken at.
type EngineSnapshot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Tick      uint32         `gorm:"not null" json:"tick"`
	RoundID   uint32         `gorm:"not null" json:"round_id"`
	State     datatypes.JSON `gorm:"not null" json:"state"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (EngineSnapshot) TableName() string {
	return "engine_snapshots"
}
