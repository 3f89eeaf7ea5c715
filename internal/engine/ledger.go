package engine

// BetLedger holds the bets of the current round and the bounded all-time
// record of every bet. Both stores drop instead of growing past capacity.
type BetLedger struct {
	Current []BetRecord `json:"current"`
	All     []BetRecord `json:"all"`
}

// CurrentFull reports whether the current round has no free bet slots.
func (l *BetLedger) CurrentFull() bool {
	return len(l.Current) >= MaxBetsPerRound
}

// record appends bet to the current round and, while there is room, to the
// all-time store. The caller checks CurrentFull first.
func (l *BetLedger) record(bet BetRecord) (storedAllTime bool) {
	l.Current = append(l.Current, bet)
	if len(l.All) >= MaxAllBets {
		return false
	}
	l.All = append(l.All, bet)
	return true
}

// propagate overwrites the all-time copy of bet. A bet that never made it
// into the all-time store is skipped.
func (l *BetLedger) propagate(bet BetRecord) bool {
	for i := range l.All {
		if l.All[i].Seq == bet.Seq {
			l.All[i] = bet
			return true
		}
	}
	return false
}

func (l *BetLedger) resetCurrent() {
	l.Current = l.Current[:0]
}

// ByBettor returns up to limit all-time records of the bettor, oldest first.
func (l *BetLedger) ByBettor(bettor Identity, limit int) []BetRecord {
	out := make([]BetRecord, 0)
	for _, bet := range l.All {
		if len(out) >= limit {
			break
		}
		if bet.Bettor == bettor {
			out = append(out, bet)
		}
	}
	return out
}

// Claimable sums the payouts the bettor can still collect.
func (l *BetLedger) Claimable(bettor Identity) (total uint64, count uint32) {
	for _, bet := range l.All {
		if bet.Bettor == bettor && bet.Claimable() {
			total += bet.Payout
			count++
		}
	}
	return total, count
}
