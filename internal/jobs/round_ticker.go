package jobs

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"updown-market/internal/engine"
)

// Advancer moves the market clock forward by one tick.
type Advancer interface {
	Advance(ctx context.Context) (engine.Transition, error)
}

// RoundTicker drives the market clock from a cron schedule. Each firing is
// one tick, so the schedule sets how long a round lasts in wall time.
type RoundTicker struct {
	cron    *cron.Cron
	market  Advancer
	logger  *zap.Logger
	baseCtx context.Context
	running atomic.Bool
}

// NewRoundTicker creates a ticker. spec uses the six-field cron syntax
// (seconds first) or a descriptor such as "@every 1s".
func NewRoundTicker(baseCtx context.Context, market Advancer, spec string, logger *zap.Logger) (*RoundTicker, error) {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	rt := &RoundTicker{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		market:  market,
		logger:  logger,
		baseCtx: baseCtx,
	}
	if _, err := rt.cron.AddFunc(spec, rt.tick); err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *RoundTicker) tick() {
	if rt.baseCtx.Err() != nil {
		return
	}
	t, err := rt.market.Advance(rt.baseCtx)
	if err != nil {
		rt.logger.Error("tick failed", zap.Error(err))
		return
	}
	if s := t.Settlement; s != nil {
		rt.logger.Debug("tick settled round",
			zap.Uint32("round_id", s.Round.ID),
			zap.Stringer("winner", s.Round.WinningDirection))
	}
}

// Start begins firing ticks in the background
func (rt *RoundTicker) Start() {
	if !rt.running.CompareAndSwap(false, true) {
		return
	}
	rt.logger.Info("round ticker started")
	rt.cron.Start()
}

// Stop stops scheduling and waits for a running tick to finish
func (rt *RoundTicker) Stop() {
	if !rt.running.CompareAndSwap(true, false) {
		return
	}
	ctx := rt.cron.Stop()
	<-ctx.Done()
	rt.logger.Info("round ticker stopped")
}
