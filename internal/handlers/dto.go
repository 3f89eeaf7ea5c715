package handlers

import (
	"math/big"

	"github.com/shopspring/decimal"

	"updown-market/internal/engine"
)

// priceExp is the decimal exponent matching engine.PriceScale.
const priceExp = -5

var (
	feeRate  = decimal.New(engine.HouseFeeBps, 0).Div(decimal.New(engine.BasisPoints, 0))
	keepRate = decimal.NewFromInt(1).Sub(feeRate)
)

type RoundResponse struct {
	ID                uint32 `json:"id"`
	StartTick         uint32 `json:"start_tick"`
	EndTick           uint32 `json:"end_tick"`
	LockTick          uint32 `json:"lock_tick"`
	StartPrice        int64  `json:"start_price"`
	StartPriceDisplay string `json:"start_price_display"`
	EndPrice          int64  `json:"end_price"`
	EndPriceDisplay   string `json:"end_price_display"`
	PoolUp            uint64 `json:"pool_up"`
	PoolDown          uint64 `json:"pool_down"`
	TotalPool         uint64 `json:"total_pool"`
	TotalPayout       uint64 `json:"total_payout"`
	State             string `json:"state"`
	WinningDirection  string `json:"winning_direction"`
	BetCount          uint32 `json:"bet_count"`
}

type BetResponse struct {
	Seq       uint64 `json:"seq"`
	RoundID   uint32 `json:"round_id"`
	Direction string `json:"direction"`
	Amount    uint64 `json:"amount"`
	Payout    uint64 `json:"payout"`
	Won       bool   `json:"won"`
	Claimed   bool   `json:"claimed"`
	Tick      uint32 `json:"tick"`
}

func formatPrice(p int64) string {
	return decimal.New(p, priceExp).StringFixed(2)
}

func toRoundResponse(r engine.Round) RoundResponse {
	resp := RoundResponse{
		ID:                r.ID,
		StartTick:         r.StartTick,
		EndTick:           r.EndTick,
		LockTick:          r.LockTick,
		StartPrice:        r.StartPrice,
		StartPriceDisplay: formatPrice(r.StartPrice),
		EndPrice:          r.EndPrice,
		PoolUp:            r.PoolUp,
		PoolDown:          r.PoolDown,
		TotalPool:         r.TotalPool(),
		TotalPayout:       r.TotalPayout,
		State:             r.State.String(),
		WinningDirection:  r.WinningDirection.String(),
		BetCount:          r.BetCount,
	}
	if r.State == engine.RoundCompleted {
		resp.EndPriceDisplay = formatPrice(r.EndPrice)
	}
	return resp
}

func toBetResponse(b engine.BetRecord) BetResponse {
	return BetResponse{
		Seq:       b.Seq,
		RoundID:   b.RoundID,
		Direction: b.Direction.String(),
		Amount:    b.Amount,
		Payout:    b.Payout,
		Won:       b.Won,
		Claimed:   b.Claimed,
		Tick:      b.Timestamp,
	}
}

// payoutMultiple is the gross return per unit staked on one side if that
// side wins with the pools as they stand. Zero while the side is empty.
func payoutMultiple(total, side uint64) string {
	if side == 0 {
		return "0"
	}
	pool := decimal.NewFromBigInt(new(big.Int).SetUint64(total), 0)
	stake := decimal.NewFromBigInt(new(big.Int).SetUint64(side), 0)
	return pool.Mul(keepRate).Div(stake).StringFixed(4)
}
