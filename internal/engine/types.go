// Package engine implements the round life-cycle, settlement and bookkeeping
// of a pari-mutuel UP/DOWN market. It performs no I/O: the caller supplies a
// Host for the clock, the invoker and value transfers, and must serialize
// invocations on a State.
package engine

const (
	RoundDuration   = 20
	SettlementDelay = 5

	MinBet = 1_000_000
	MaxBet = 1_000_000_000

	MaxBetsPerRound = 128
	MaxAllBets      = 1024
	HistorySize     = 8

	HouseFeeBps = 200
	BasisPoints = 10_000
)

// Identity is the host's caller identity (a base58 wallet address).
type Identity string

type Direction uint8

const (
	DirectionDown Direction = 0
	DirectionUp   Direction = 1
	// DirectionNone marks an undecided round or a tie.
	DirectionNone Direction = 2
)

func (d Direction) String() string {
	switch d {
	case DirectionDown:
		return "DOWN"
	case DirectionUp:
		return "UP"
	case DirectionNone:
		return "NONE"
	default:
		return "INVALID"
	}
}

// Valid reports whether d is a direction a bet can be placed on.
func (d Direction) Valid() bool {
	return d == DirectionDown || d == DirectionUp
}

type RoundState uint8

const (
	RoundPending   RoundState = 0
	RoundActive    RoundState = 1
	RoundLocked    RoundState = 2
	RoundCompleted RoundState = 3
)

func (s RoundState) String() string {
	switch s {
	case RoundPending:
		return "PENDING"
	case RoundActive:
		return "ACTIVE"
	case RoundLocked:
		return "LOCKED"
	case RoundCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// Round is one betting period. Prices are fixed point scaled by PriceScale.
type Round struct {
	ID               uint32     `json:"id"`
	StartTick        uint32     `json:"start_tick"`
	EndTick          uint32     `json:"end_tick"`
	LockTick         uint32     `json:"lock_tick"`
	StartPrice       int64      `json:"start_price"`
	EndPrice         int64      `json:"end_price"`
	PoolUp           uint64     `json:"pool_up"`
	PoolDown         uint64     `json:"pool_down"`
	TotalPayout      uint64     `json:"total_payout"`
	State            RoundState `json:"state"`
	WinningDirection Direction  `json:"winning_direction"`
	BetCount         uint32     `json:"bet_count"`
}

// TotalPool is the sum of both sides' stakes.
func (r Round) TotalPool() uint64 {
	return r.PoolUp + r.PoolDown
}

// BetRecord is one wager. Seq is unique per placement and is the key that
// links a current-round record to its all-time copy.
type BetRecord struct {
	Seq       uint64    `json:"seq"`
	Bettor    Identity  `json:"bettor"`
	RoundID   uint32    `json:"round_id"`
	Amount    uint64    `json:"amount"`
	Payout    uint64    `json:"payout"`
	Direction Direction `json:"direction"`
	Claimed   bool      `json:"claimed"`
	Won       bool      `json:"won"`
	Timestamp uint32    `json:"timestamp"`
}

// Claimable reports whether the record holds a payout its bettor can still collect.
func (b BetRecord) Claimable() bool {
	return b.Won && !b.Claimed && b.Payout > 0
}

// Host is everything the engine consumes from its environment.
type Host interface {
	// Tick returns the current value of the monotonic host clock.
	Tick() uint32
	// Invoker returns the identity on whose behalf the operation runs.
	Invoker() Identity
	// InvocationReward returns the value attached to the current call.
	InvocationReward() uint64
	// Transfer moves amount from the market to the identity. It cannot fail
	// for balances the market holds.
	Transfer(to Identity, amount uint64)
}
