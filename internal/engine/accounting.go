package engine

type CurrentRoundOutput struct {
	Round       Round  `json:"round"`
	CurrentTick uint32 `json:"current_tick"`
	BetCount    uint32 `json:"bet_count"`
}

type RoundHistoryOutput struct {
	History          []Round `json:"history"`
	TotalRoundsCount uint32  `json:"total_rounds_count"`
	HistorySize      uint32  `json:"history_size"`
}

type UserBetsOutput struct {
	Bets     []BetRecord `json:"bets"`
	BetCount uint32      `json:"bet_count"`
}

type ContractStatsOutput struct {
	TotalRounds    uint32 `json:"total_rounds"`
	TotalVolume    uint64 `json:"total_volume"`
	TotalPayouts   uint64 `json:"total_payouts"`
	CollectedFees  uint64 `json:"collected_fees"`
	CurrentRoundID uint32 `json:"current_round_id"`
	CurrentTick    uint32 `json:"current_tick"`
}

type UserClaimableOutput struct {
	TotalClaimable uint64 `json:"total_claimable"`
	UnclaimedBets  uint32 `json:"unclaimed_bets"`
}

type ClaimWinningsOutput struct {
	TotalClaimed uint64 `json:"total_claimed"`
	BetsClaimed  uint32 `json:"bets_claimed"`
	Success      bool   `json:"success"`
}

type WithdrawFeesOutput struct {
	Amount  uint64 `json:"amount"`
	Success bool   `json:"success"`
}

func (s *State) GetCurrentRound(h Host) CurrentRoundOutput {
	return CurrentRoundOutput{
		Round:       s.CurrentRound,
		CurrentTick: h.Tick(),
		BetCount:    uint32(len(s.Bets.Current)),
	}
}

// GetRoundHistory returns the completed rounds still held by the ring,
// oldest first.
func (s *State) GetRoundHistory() RoundHistoryOutput {
	n := s.HistorySize()
	out := RoundHistoryOutput{
		History:          make([]Round, 0, n),
		TotalRoundsCount: s.TotalRoundsCount,
		HistorySize:      n,
	}
	start := s.HistoryWriteIndex - n
	for i := uint32(0); i < n; i++ {
		out.History = append(out.History, s.History[(start+i)%HistorySize])
	}
	return out
}

func (s *State) GetUserBets(user Identity) UserBetsOutput {
	bets := s.Bets.ByBettor(user, MaxBetsPerRound)
	return UserBetsOutput{Bets: bets, BetCount: uint32(len(bets))}
}

func (s *State) GetContractStats(h Host) ContractStatsOutput {
	return ContractStatsOutput{
		TotalRounds:    s.TotalRoundsCount,
		TotalVolume:    s.TotalVolumeAllTime,
		TotalPayouts:   s.TotalPayoutsAllTime,
		CollectedFees:  s.CollectedFees,
		CurrentRoundID: s.CurrentRound.ID,
		CurrentTick:    h.Tick(),
	}
}

func (s *State) GetUserClaimable(user Identity) UserClaimableOutput {
	total, count := s.Bets.Claimable(user)
	return UserClaimableOutput{TotalClaimable: total, UnclaimedBets: count}
}

// ClaimWinnings pays the invoker every settled, unclaimed winning bet held in
// the all-time store. A second call finds nothing left to pay.
func (s *State) ClaimWinnings(h Host) ClaimWinningsOutput {
	var out ClaimWinningsOutput
	claimer := h.Invoker()

	for i := range s.Bets.All {
		bet := &s.Bets.All[i]
		if bet.Bettor != claimer || !bet.Claimable() {
			continue
		}
		h.Transfer(claimer, bet.Payout)
		out.TotalClaimed += bet.Payout
		out.BetsClaimed++
		bet.Claimed = true
	}

	out.Success = out.TotalClaimed > 0
	return out
}

// WithdrawFees sends every collected fee to the owner. Anyone else, or an
// empty accumulator, gets a zero result.
func (s *State) WithdrawFees(h Host) WithdrawFeesOutput {
	if h.Invoker() != s.Owner || s.CollectedFees == 0 {
		return WithdrawFeesOutput{}
	}
	amount := s.CollectedFees
	h.Transfer(s.Owner, amount)
	s.CollectedFees = 0
	return WithdrawFeesOutput{Amount: amount, Success: true}
}
