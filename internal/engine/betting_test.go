package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceBet_Accepted(t *testing.T) {
	s, h := newMarket(0)

	out := bet(s, h, alice, DirectionUp, 2_000_000)
	require.True(t, out.Accepted())
	assert.True(t, out.StoredAllTime)
	assert.Empty(t, h.transfers)

	assert.Equal(t, uint64(2_000_000), s.CurrentRound.PoolUp)
	assert.Equal(t, uint64(0), s.CurrentRound.PoolDown)
	assert.Equal(t, uint32(1), s.CurrentRound.BetCount)
	assert.Equal(t, uint64(2_000_000), s.TotalVolumeAllTime)

	require.Len(t, s.Bets.Current, 1)
	require.Len(t, s.Bets.All, 1)
	rec := s.Bets.All[0]
	assert.Equal(t, alice, rec.Bettor)
	assert.Equal(t, uint32(1), rec.RoundID)
	assert.Equal(t, uint64(1), rec.Seq)
	assert.Equal(t, uint32(0), rec.Timestamp)
	assert.False(t, rec.Won)
	assert.False(t, rec.Claimed)
	assert.Zero(t, rec.Payout)
}

func TestPlaceBet_StakeBelowMinimumIsRefunded(t *testing.T) {
	s, h := newMarket(0)
	before := *s.Clone()

	out := bet(s, h, alice, DirectionUp, 500_000)
	assert.Equal(t, RejectStakeOutOfRange, out.Rejection)
	assert.Equal(t, []transfer{{to: alice, amount: 500_000}}, h.transfers)
	assert.Equal(t, before.CurrentRound, s.CurrentRound)
	assert.Empty(t, s.Bets.Current)
	assert.Empty(t, s.Bets.All)
	assert.Zero(t, s.TotalVolumeAllTime)
}

func TestPlaceBet_Bounds(t *testing.T) {
	s, h := newMarket(0)

	assert.True(t, bet(s, h, alice, DirectionUp, MinBet).Accepted())
	assert.True(t, bet(s, h, alice, DirectionDown, MaxBet).Accepted())

	out := bet(s, h, alice, DirectionDown, MaxBet+1)
	assert.Equal(t, RejectStakeOutOfRange, out.Rejection)
	assert.Equal(t, uint64(MaxBet+1), h.paidTo(alice))

	out = bet(s, h, alice, DirectionDown, MinBet-1)
	assert.Equal(t, RejectStakeOutOfRange, out.Rejection)

	assert.Equal(t, uint64(MinBet), s.CurrentRound.PoolUp)
	assert.Equal(t, uint64(MaxBet), s.CurrentRound.PoolDown)
}

func TestPlaceBet_InvalidDirection(t *testing.T) {
	s, h := newMarket(0)

	for _, dir := range []Direction{DirectionNone, Direction(7)} {
		out := bet(s, h, alice, dir, MinBet)
		assert.Equal(t, RejectInvalidDirection, out.Rejection)
		assert.Equal(t, uint64(MinBet), h.paidTo(alice))
	}
	assert.Zero(t, s.CurrentRound.TotalPool())
}

func TestPlaceBet_RejectedWhileLocked(t *testing.T) {
	s, h := newMarket(0)
	advanceTo(s, h, RoundDuration)
	require.Equal(t, RoundLocked, s.CurrentRound.State)
	assert.Equal(t, uint32(RoundDuration), s.CurrentRound.LockTick)

	out := bet(s, h, alice, DirectionUp, MinBet)
	assert.Equal(t, RejectRoundNotActive, out.Rejection)
	assert.Equal(t, uint64(MinBet), h.paidTo(alice))
	assert.Zero(t, s.CurrentRound.BetCount)
}

func TestPlaceBet_RoundCapacity(t *testing.T) {
	s, h := newMarket(0)

	for i := 0; i < MaxBetsPerRound; i++ {
		require.True(t, bet(s, h, alice, DirectionUp, MinBet).Accepted(), "bet %d", i)
	}
	require.True(t, s.Bets.CurrentFull())

	out := bet(s, h, bob, DirectionDown, MinBet)
	assert.Equal(t, RejectRoundFull, out.Rejection)
	assert.Equal(t, uint64(MinBet), h.paidTo(bob))
	assert.Len(t, s.Bets.Current, MaxBetsPerRound)
	assert.Equal(t, uint32(MaxBetsPerRound), s.CurrentRound.BetCount)
	assert.Equal(t, uint64(MaxBetsPerRound*MinBet), s.CurrentRound.PoolUp)
	assert.Zero(t, s.CurrentRound.PoolDown)
}

func TestPlaceBet_AllTimeStoreStopsAtCapacity(t *testing.T) {
	s, h := newMarket(0)

	for round := 0; round < MaxAllBets/MaxBetsPerRound; round++ {
		for i := 0; i < MaxBetsPerRound; i++ {
			require.True(t, bet(s, h, alice, DirectionUp, MinBet).StoredAllTime)
		}
		advanceTo(s, h, h.tick+RoundDuration+SettlementDelay)
	}
	require.Len(t, s.Bets.All, MaxAllBets)

	out := bet(s, h, bob, DirectionDown, MinBet)
	require.True(t, out.Accepted())
	assert.False(t, out.StoredAllTime)
	assert.Len(t, s.Bets.All, MaxAllBets)
	assert.Len(t, s.Bets.Current, 1)
	assert.Equal(t, uint64(MinBet), s.CurrentRound.PoolDown)
	assert.Empty(t, s.GetUserBets(bob).Bets)
}

func TestPlaceBet_PoolInvariant(t *testing.T) {
	s, h := newMarket(0)
	stakes := []struct {
		who Identity
		dir Direction
		amt uint64
	}{
		{alice, DirectionUp, 3_000_000},
		{bob, DirectionDown, 1_500_000},
		{carol, DirectionUp, 999_999},
		{carol, DirectionUp, 7_250_000},
		{alice, DirectionDown, MaxBet},
	}

	var sum uint64
	var lastUp, lastDown uint64
	for _, st := range stakes {
		if bet(s, h, st.who, st.dir, st.amt).Accepted() {
			sum += st.amt
		}
		assert.GreaterOrEqual(t, s.CurrentRound.PoolUp, lastUp)
		assert.GreaterOrEqual(t, s.CurrentRound.PoolDown, lastDown)
		lastUp, lastDown = s.CurrentRound.PoolUp, s.CurrentRound.PoolDown
	}
	assert.Equal(t, sum, s.CurrentRound.TotalPool())
	assert.Equal(t, sum, s.TotalVolumeAllTime)
	assert.Equal(t, uint32(4), s.CurrentRound.BetCount)
}
