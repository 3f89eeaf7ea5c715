package engine

import "math/bits"

// Settlement summarizes one settled round.
type Settlement struct {
	Round       Round  `json:"round"`
	HouseFee    uint64 `json:"house_fee"`
	Winners     uint32 `json:"winners"`
	Losers      uint32 `json:"losers"`
	Unmatched   uint32 `json:"unmatched"`
	EmptyWinner bool   `json:"empty_winner"`
}

// ResolveRoundOutput is the result of an explicit ResolveRound call.
type ResolveRoundOutput struct {
	Resolved         bool      `json:"resolved"`
	WinningDirection Direction `json:"winning_direction"`
	TotalPayout      uint64    `json:"total_payout"`
	StartPrice       int64     `json:"start_price"`
	EndPrice         int64     `json:"end_price"`
}

// ResolveRound settles the current round on request. It only acts on a
// LOCKED round whose end tick has passed.
func (s *State) ResolveRound(h Host) (ResolveRoundOutput, *Settlement) {
	out := ResolveRoundOutput{
		WinningDirection: DirectionNone,
		StartPrice:       s.CurrentRound.StartPrice,
	}

	if s.CurrentRound.State != RoundLocked {
		return out, nil
	}
	if h.Tick() <= s.CurrentRound.EndTick {
		return out, nil
	}

	settled := s.settle(h)
	out.Resolved = true
	out.WinningDirection = settled.Round.WinningDirection
	out.TotalPayout = settled.Round.TotalPayout
	out.EndPrice = settled.Round.EndPrice
	return out, &settled
}

// settle is the only place a round is settled, whichever path triggered it.
// The caller has already checked that the round is LOCKED and due.
func (s *State) settle(h Host) Settlement {
	tick := h.Tick()
	r := &s.CurrentRound

	r.EndPrice = GeneratePrice(tick)
	switch {
	case r.EndPrice > r.StartPrice:
		r.WinningDirection = DirectionUp
	case r.EndPrice < r.StartPrice:
		r.WinningDirection = DirectionDown
	default:
		r.WinningDirection = DirectionNone
	}

	var res Settlement
	var totalPayout uint64

	if r.WinningDirection == DirectionNone {
		for i := range s.Bets.Current {
			bet := &s.Bets.Current[i]
			bet.Payout = bet.Amount
			bet.Won = true
			bet.Claimed = false
			totalPayout += bet.Payout
			res.Winners++
			if !s.Bets.propagate(*bet) {
				res.Unmatched++
			}
		}
	} else {
		totalPool := r.TotalPool()
		houseFee := totalPool * HouseFeeBps / BasisPoints
		poolAfterFee := totalPool - houseFee
		s.CollectedFees += houseFee
		res.HouseFee = houseFee

		winningPool := r.PoolDown
		if r.WinningDirection == DirectionUp {
			winningPool = r.PoolUp
		}
		res.EmptyWinner = winningPool == 0

		for i := range s.Bets.Current {
			bet := &s.Bets.Current[i]
			if bet.Direction == r.WinningDirection {
				if winningPool > 0 {
					bet.Payout = proportionalShare(poolAfterFee, bet.Amount, winningPool)
					bet.Won = true
					bet.Claimed = false
					totalPayout += bet.Payout
					res.Winners++
				}
			} else {
				bet.Won = false
				bet.Payout = 0
				bet.Claimed = true
				res.Losers++
			}
			if !s.Bets.propagate(*bet) {
				res.Unmatched++
			}
		}
	}

	r.State = RoundCompleted
	r.TotalPayout = totalPayout
	s.TotalPayoutsAllTime += totalPayout
	res.Round = *r

	s.archive()
	s.openRound(tick)
	return res
}

// proportionalShare returns floor(pool*amount/total) without overflowing
// 64 bits. amount never exceeds total, so the quotient fits in 64 bits.
func proportionalShare(pool, amount, total uint64) uint64 {
	hi, lo := bits.Mul64(pool, amount)
	q, _ := bits.Div64(hi, lo, total)
	return q
}
