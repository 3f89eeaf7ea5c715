package engine

// Rejection explains why PlaceBet refunded the attached value.
type Rejection uint8

const (
	Accepted Rejection = iota
	RejectRoundNotActive
	RejectInvalidDirection
	RejectStakeOutOfRange
	RejectRoundFull
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectRoundNotActive:
		return "round_not_active"
	case RejectInvalidDirection:
		return "invalid_direction"
	case RejectStakeOutOfRange:
		return "stake_out_of_range"
	case RejectRoundFull:
		return "round_full"
	default:
		return "unknown"
	}
}

// PlaceBetOutput reports what happened to a wager. Callers of the market
// surface only see the side effects; the fields exist for the host.
type PlaceBetOutput struct {
	Rejection     Rejection `json:"rejection"`
	Bet           BetRecord `json:"bet"`
	StoredAllTime bool      `json:"stored_all_time"`
}

func (o PlaceBetOutput) Accepted() bool {
	return o.Rejection == Accepted
}

// PlaceBet wagers the attached value on dir for the invoker. A rejected bet
// refunds the whole attached value and leaves the state untouched.
func (s *State) PlaceBet(h Host, dir Direction) PlaceBetOutput {
	stake := h.InvocationReward()

	if reason := s.checkBet(dir, stake); reason != Accepted {
		if stake > 0 {
			h.Transfer(h.Invoker(), stake)
		}
		return PlaceBetOutput{Rejection: reason}
	}

	s.NextSeq++
	bet := BetRecord{
		Seq:       s.NextSeq,
		Bettor:    h.Invoker(),
		RoundID:   s.CurrentRound.ID,
		Amount:    stake,
		Direction: dir,
		Timestamp: h.Tick(),
	}

	stored := s.Bets.record(bet)
	s.CurrentRound.BetCount++
	if dir == DirectionUp {
		s.CurrentRound.PoolUp += stake
	} else {
		s.CurrentRound.PoolDown += stake
	}
	s.TotalVolumeAllTime += stake

	return PlaceBetOutput{Bet: bet, StoredAllTime: stored}
}

func (s *State) checkBet(dir Direction, stake uint64) Rejection {
	switch {
	case s.CurrentRound.State != RoundActive:
		return RejectRoundNotActive
	case !dir.Valid():
		return RejectInvalidDirection
	case stake < MinBet || stake > MaxBet:
		return RejectStakeOutOfRange
	case s.Bets.CurrentFull():
		return RejectRoundFull
	}
	return Accepted
}
