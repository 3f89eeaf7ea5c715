package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"updown-market/internal/engine"
	"updown-market/internal/models"
	"updown-market/internal/observability"
	"updown-market/internal/repository"
)

// MarketStore persists committed market state and serves the journals.
type MarketStore interface {
	LoadSnapshot(ctx context.Context) (*engine.State, uint32, error)
	SaveCommit(ctx context.Context, c repository.Commit) error
	ListTransfers(ctx context.Context, wallet string, limit int) ([]models.LedgerTransfer, error)
	ListRoundResults(ctx context.Context, limit, offset int) ([]models.RoundResult, error)
}

// MarketService owns the single market state and its clock. Every call runs
// under one lock, and a call whose changes cannot be persisted is undone.
type MarketService struct {
	mu    sync.Mutex
	state *engine.State
	tick  uint32

	store   MarketStore
	log     *zap.Logger
	metrics *observability.Metrics
}

// NewMarketService restores the stored market, or initializes a new one
// owned by owner when nothing has been stored yet.
func NewMarketService(
	ctx context.Context,
	store MarketStore,
	owner engine.Identity,
	log *zap.Logger,
	metrics *observability.Metrics,
) (*MarketService, error) {
	s := &MarketService{
		store:   store,
		log:     log,
		metrics: metrics,
	}

	state, tick, err := store.LoadSnapshot(ctx)
	switch {
	case err == nil:
		s.state, s.tick = state, tick
		if state.Owner != owner {
			log.Warn("configured owner differs from stored owner, keeping stored",
				zap.String("stored", string(state.Owner)),
				zap.String("configured", string(owner)))
		}
		log.Info("market restored",
			zap.Uint32("tick", tick),
			zap.Uint32("round_id", state.CurrentRound.ID),
			zap.Uint32("rounds_settled", state.TotalRoundsCount))

	case errors.Is(err, repository.ErrNoSnapshot):
		s.state = engine.Initialize(newInvocationHost(0, owner, 0, 0, ""))
		if err := store.SaveCommit(ctx, repository.Commit{Tick: 0, State: s.state}); err != nil {
			return nil, fmt.Errorf("persist initial market: %w", err)
		}
		log.Info("market initialized", zap.String("owner", string(owner)))

	default:
		return nil, fmt.Errorf("restore market: %w", err)
	}

	s.metrics.UpdateEngine(s.tick, s.state.CurrentRound.ID, s.state.CollectedFees)
	return s, nil
}

// Advance moves the clock forward by one tick and runs the periodic round
// check. The tick is only kept if the resulting state could be stored.
func (s *MarketService) Advance(ctx context.Context) (engine.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.tick + 1
	backup := s.state.Clone()
	h := newInvocationHost(next, "", 0, s.state.CurrentRound.ID, models.TransferKindPayout)

	t := s.state.BeginTick(h)
	if t.Locked {
		s.log.Info("round locked",
			zap.Uint32("round_id", backup.CurrentRound.ID),
			zap.Uint32("tick", next),
			zap.Uint64("pool_up", backup.CurrentRound.PoolUp),
			zap.Uint64("pool_down", backup.CurrentRound.PoolDown))
	}

	if t.Locked || t.Settlement != nil {
		if err := s.commit(ctx, backup, next, h, t.Settlement); err != nil {
			return engine.Transition{}, err
		}
	}
	s.tick = next
	s.metrics.UpdateEngine(s.tick, s.state.CurrentRound.ID, s.state.CollectedFees)
	return t, nil
}

// PlaceBet wagers stake on dir for wallet. The stake is journaled as received
// even when the bet is rejected and refunded.
func (s *MarketService) PlaceBet(ctx context.Context, wallet engine.Identity, dir engine.Direction, stake uint64) (engine.PlaceBetOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.Clone()
	h := newInvocationHost(s.tick, wallet, stake, s.state.CurrentRound.ID, models.TransferKindRefund)
	h.journalStake()

	out := s.state.PlaceBet(h, dir)
	if err := s.commit(ctx, backup, s.tick, h, nil); err != nil {
		return engine.PlaceBetOutput{}, err
	}
	s.metrics.RecordBet(out.Rejection.String(), stake, out.Accepted())

	fields := []zap.Field{
		zap.String("wallet", string(wallet)),
		zap.Stringer("direction", dir),
		zap.Uint64("stake", stake),
		zap.Uint32("round_id", h.roundID),
	}
	switch {
	case !out.Accepted():
		s.log.Info("bet rejected", append(fields, zap.Stringer("reason", out.Rejection))...)
	case !out.StoredAllTime:
		s.log.Warn("bet accepted but all-time store is full, it will not be claimable",
			append(fields, zap.Uint64("seq", out.Bet.Seq))...)
	default:
		s.log.Info("bet accepted", append(fields, zap.Uint64("seq", out.Bet.Seq))...)
	}
	return out, nil
}

// ResolveRound settles a locked round whose end tick has passed.
func (s *MarketService) ResolveRound(ctx context.Context, wallet engine.Identity) (engine.ResolveRoundOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.Clone()
	h := newInvocationHost(s.tick, wallet, 0, s.state.CurrentRound.ID, models.TransferKindPayout)

	out, settled := s.state.ResolveRound(h)
	if !out.Resolved {
		return out, nil
	}
	if err := s.commit(ctx, backup, s.tick, h, settled); err != nil {
		return engine.ResolveRoundOutput{}, err
	}
	s.log.Info("round resolved on request", zap.String("wallet", string(wallet)), zap.Uint32("tick", s.tick))
	return out, nil
}

func (s *MarketService) ClaimWinnings(ctx context.Context, wallet engine.Identity) (engine.ClaimWinningsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.Clone()
	h := newInvocationHost(s.tick, wallet, 0, s.state.CurrentRound.ID, models.TransferKindPayout)

	out := s.state.ClaimWinnings(h)
	if out.BetsClaimed == 0 {
		return out, nil
	}
	if err := s.commit(ctx, backup, s.tick, h, nil); err != nil {
		return engine.ClaimWinningsOutput{}, err
	}
	s.log.Info("winnings claimed",
		zap.String("wallet", string(wallet)),
		zap.Uint64("amount", out.TotalClaimed),
		zap.Uint32("bets", out.BetsClaimed))
	return out, nil
}

func (s *MarketService) WithdrawFees(ctx context.Context, wallet engine.Identity) (engine.WithdrawFeesOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.Clone()
	h := newInvocationHost(s.tick, wallet, 0, s.state.CurrentRound.ID, models.TransferKindFeeWithdrawal)

	out := s.state.WithdrawFees(h)
	if !out.Success {
		if wallet != s.state.Owner {
			s.log.Warn("fee withdrawal by non-owner ignored", zap.String("wallet", string(wallet)))
		}
		return out, nil
	}
	if err := s.commit(ctx, backup, s.tick, h, nil); err != nil {
		return engine.WithdrawFeesOutput{}, err
	}
	s.log.Info("fees withdrawn", zap.Uint64("amount", out.Amount))
	return out, nil
}

func (s *MarketService) CurrentRound() engine.CurrentRoundOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetCurrentRound(s.queryHost())
}

func (s *MarketService) RoundHistory() engine.RoundHistoryOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetRoundHistory()
}

func (s *MarketService) UserBets(wallet engine.Identity) engine.UserBetsOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetUserBets(wallet)
}

func (s *MarketService) Stats() engine.ContractStatsOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetContractStats(s.queryHost())
}

func (s *MarketService) UserClaimable(wallet engine.Identity) engine.UserClaimableOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetUserClaimable(wallet)
}

// Tick returns the current value of the market clock.
func (s *MarketService) Tick() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *MarketService) Owner() engine.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Owner
}

// Transfers lists the journaled transfers of a wallet, newest first.
func (s *MarketService) Transfers(ctx context.Context, wallet engine.Identity, limit int) ([]models.LedgerTransfer, error) {
	return s.store.ListTransfers(ctx, string(wallet), limit)
}

// RoundResults lists every settled round on record, newest first.
func (s *MarketService) RoundResults(ctx context.Context, limit, offset int) ([]models.RoundResult, error) {
	return s.store.ListRoundResults(ctx, limit, offset)
}

func (s *MarketService) queryHost() engine.Host {
	return newInvocationHost(s.tick, "", 0, s.state.CurrentRound.ID, "")
}

// commit persists the state after an invocation at tick. On failure the
// in-memory state is put back to backup.
func (s *MarketService) commit(ctx context.Context, backup *engine.State, tick uint32, h *invocationHost, settled *engine.Settlement) error {
	c := repository.Commit{
		Tick:      tick,
		State:     s.state,
		Transfers: h.transfers,
	}
	if settled != nil {
		c.Results = []models.RoundResult{roundResult(settled, tick)}
	}

	start := time.Now()
	err := s.store.SaveCommit(ctx, c)
	s.metrics.RecordCommit(time.Since(start).Seconds(), err)
	if err != nil {
		s.state = backup
		s.log.Error("commit failed, invocation rolled back", zap.Uint32("tick", tick), zap.Error(err))
		return fmt.Errorf("commit invocation: %w", err)
	}

	for _, t := range h.transfers {
		if !t.Inbound() {
			s.metrics.RecordPaidOut(string(t.Kind), t.Amount)
		}
	}
	if settled != nil {
		s.logSettlement(settled, tick)
	}
	s.metrics.UpdateEngine(tick, s.state.CurrentRound.ID, s.state.CollectedFees)
	return nil
}

func (s *MarketService) logSettlement(st *engine.Settlement, tick uint32) {
	r := st.Round
	s.metrics.RecordSettlement(r.WinningDirection.String())
	s.log.Info("round settled",
		zap.Uint32("round_id", r.ID),
		zap.Uint32("tick", tick),
		zap.Stringer("winner", r.WinningDirection),
		zap.Int64("start_price", r.StartPrice),
		zap.Int64("end_price", r.EndPrice),
		zap.Uint64("total_payout", r.TotalPayout),
		zap.Uint64("house_fee", st.HouseFee),
		zap.Uint32("winners", st.Winners),
		zap.Uint32("losers", st.Losers))

	if st.EmptyWinner {
		s.log.Warn("winning side had no stakes, losing pool retained by market",
			zap.Uint32("round_id", r.ID),
			zap.Uint64("pool", r.TotalPool()))
	}
	if st.Unmatched > 0 {
		s.log.Warn("settled bets missing from all-time store",
			zap.Uint32("round_id", r.ID),
			zap.Uint32("count", st.Unmatched))
	}
}

func roundResult(st *engine.Settlement, tick uint32) models.RoundResult {
	r := st.Round
	return models.RoundResult{
		RoundID:          r.ID,
		StartTick:        r.StartTick,
		EndTick:          r.EndTick,
		LockTick:         r.LockTick,
		SettleTick:       tick,
		StartPrice:       r.StartPrice,
		EndPrice:         r.EndPrice,
		PoolUp:           r.PoolUp,
		PoolDown:         r.PoolDown,
		TotalPayout:      r.TotalPayout,
		HouseFee:         st.HouseFee,
		WinningDirection: r.WinningDirection.String(),
		BetCount:         r.BetCount,
		Winners:          st.Winners,
		Losers:           st.Losers,
		Unmatched:        st.Unmatched,
		EmptyWinner:      st.EmptyWinner,
	}
}
