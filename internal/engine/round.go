package engine

// Transition describes what a BeginTick call changed.
type Transition struct {
	Locked     bool
	Settlement *Settlement
}

// BeginTick is the periodic host callback, run once per clock advance. It
// locks an expired ACTIVE round and settles a LOCKED round once the
// settlement delay has passed, opening the next round in the same step.
func (s *State) BeginTick(h Host) Transition {
	var t Transition
	tick := h.Tick()

	if s.CurrentRound.State == RoundActive && tick >= s.CurrentRound.EndTick {
		s.CurrentRound.State = RoundLocked
		s.CurrentRound.LockTick = tick
		t.Locked = true
	}

	if s.CurrentRound.State == RoundLocked && tick >= s.CurrentRound.EndTick+SettlementDelay {
		settled := s.settle(h)
		t.Settlement = &settled
	}

	return t
}

// openRound replaces the current round with a fresh ACTIVE one starting at tick.
func (s *State) openRound(tick uint32) {
	s.CurrentRound = Round{
		ID:               s.TotalRoundsCount + 1,
		StartTick:        tick,
		EndTick:          tick + RoundDuration,
		StartPrice:       GeneratePrice(tick),
		State:            RoundActive,
		WinningDirection: DirectionNone,
	}
	s.Bets.resetCurrent()
}

// archive writes the completed current round into the history ring.
func (s *State) archive() {
	s.History[s.HistoryWriteIndex%HistorySize] = s.CurrentRound
	s.HistoryWriteIndex++
	s.TotalRoundsCount++
}
