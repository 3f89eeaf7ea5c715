package engine

// State is the whole market. It is owned by one caller that serializes every
// invocation; methods never leave it partially updated.
type State struct {
	CurrentRound      Round              `json:"current_round"`
	History           [HistorySize]Round `json:"history"`
	HistoryWriteIndex uint32             `json:"history_write_index"`

	TotalRoundsCount    uint32 `json:"total_rounds_count"`
	TotalVolumeAllTime  uint64 `json:"total_volume_all_time"`
	TotalPayoutsAllTime uint64 `json:"total_payouts_all_time"`
	CollectedFees       uint64 `json:"collected_fees"`

	Bets    BetLedger `json:"bets"`
	NextSeq uint64    `json:"next_seq"`

	Owner Identity `json:"owner"`
}

// Initialize creates a market owned by the invoker with its first round open
// at the current tick.
func Initialize(h Host) *State {
	s := &State{
		Owner: h.Invoker(),
		Bets: BetLedger{
			Current: make([]BetRecord, 0, MaxBetsPerRound),
			All:     make([]BetRecord, 0, MaxAllBets),
		},
	}
	for i := range s.History {
		s.History[i] = Round{State: RoundCompleted, WinningDirection: DirectionNone}
	}
	s.openRound(h.Tick())
	return s
}

// Clone returns a deep copy. The copy shares no slices with s.
func (s *State) Clone() *State {
	c := *s
	c.Bets.Current = append(make([]BetRecord, 0, MaxBetsPerRound), s.Bets.Current...)
	c.Bets.All = append(make([]BetRecord, 0, MaxAllBets), s.Bets.All...)
	return &c
}

// HistorySize reports how many ring slots hold completed rounds.
func (s *State) HistorySize() uint32 {
	if s.TotalRoundsCount < HistorySize {
		return s.TotalRoundsCount
	}
	return HistorySize
}
