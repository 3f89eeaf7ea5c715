package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"updown-market/internal/engine"
	"updown-market/internal/models"
)

// ErrNoSnapshot is returned when the market has never been initialized.
var ErrNoSnapshot = errors.New("no engine snapshot stored")

// Commit is everything one market invocation changed.
type Commit struct {
	Tick      uint32
	State     *engine.State
	Transfers []models.LedgerTransfer
	Results   []models.RoundResult
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LoadSnapshot returns the last committed state and the tick it was taken at.
func (r *Repository) LoadSnapshot(ctx context.Context) (*engine.State, uint32, error) {
	var snap models.EngineSnapshot
	err := r.db.WithContext(ctx).Where("id = ?", models.EngineSnapshotID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrNoSnapshot
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load snapshot: %w", err)
	}

	var state engine.State
	if err := json.Unmarshal(snap.State, &state); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	return &state, snap.Tick, nil
}

// SaveCommit stores the new snapshot and appends the journal rows in one
// transaction. Either all of it lands or none of it does.
func (r *Repository) SaveCommit(ctx context.Context, c Commit) error {
	raw, err := json.Marshal(c.State)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap := models.EngineSnapshot{
			ID:      models.EngineSnapshotID,
			Tick:    c.Tick,
			RoundID: c.State.CurrentRound.ID,
			State:   datatypes.JSON(raw),
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&snap).Error; err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}

		if len(c.Transfers) > 0 {
			if err := tx.Create(&c.Transfers).Error; err != nil {
				return fmt.Errorf("save transfers: %w", err)
			}
		}
		if len(c.Results) > 0 {
			if err := tx.Create(&c.Results).Error; err != nil {
				return fmt.Errorf("save round results: %w", err)
			}
		}
		return nil
	})
}

// ListTransfers returns the newest transfers of a wallet first
func (r *Repository) ListTransfers(ctx context.Context, wallet string, limit int) ([]models.LedgerTransfer, error) {
	var transfers []models.LedgerTransfer
	err := r.db.WithContext(ctx).
		Where("wallet_address = ?", wallet).
		Order("created_at DESC, tick DESC").
		Limit(limit).
		Find(&transfers).Error
	return transfers, err
}

// ListRoundResults returns settled rounds, newest first
func (r *Repository) ListRoundResults(ctx context.Context, limit, offset int) ([]models.RoundResult, error) {
	var results []models.RoundResult
	err := r.db.WithContext(ctx).
		Order("round_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	return results, err
}

// GetRoundResult retrieves a settled round by its engine round id
func (r *Repository) GetRoundResult(ctx context.Context, roundID uint32) (*models.RoundResult, error) {
	var result models.RoundResult
	if err := r.db.WithContext(ctx).Where("round_id = ?", roundID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// SumTransfers totals every transfer of the given kind.
func (r *Repository) SumTransfers(ctx context.Context, kind models.TransferKind) (uint64, error) {
	var total uint64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerTransfer{}).
		Where("kind = ?", kind).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
