package services

import (
	"updown-market/internal/engine"
	"updown-market/internal/models"
)

// invocationHost is the engine.Host for one market call. Every outbound
// transfer is journaled with the kind the calling operation stands for.
type invocationHost struct {
	tick    uint32
	invoker engine.Identity
	value   uint64
	roundID uint32
	kind    models.TransferKind

	transfers []models.LedgerTransfer
}

func newInvocationHost(tick uint32, invoker engine.Identity, value uint64, roundID uint32, kind models.TransferKind) *invocationHost {
	return &invocationHost{
		tick:    tick,
		invoker: invoker,
		value:   value,
		roundID: roundID,
		kind:    kind,
	}
}

func (h *invocationHost) Tick() uint32             { return h.tick }
func (h *invocationHost) Invoker() engine.Identity { return h.invoker }
func (h *invocationHost) InvocationReward() uint64 { return h.value }

func (h *invocationHost) Transfer(to engine.Identity, amount uint64) {
	h.transfers = append(h.transfers, models.LedgerTransfer{
		Kind:          h.kind,
		WalletAddress: string(to),
		Amount:        amount,
		Tick:          h.tick,
		RoundID:       h.roundID,
	})
}

// journalStake records value attached to the call as flowing into the market.
func (h *invocationHost) journalStake() {
	if h.value == 0 {
		return
	}
	h.transfers = append(h.transfers, models.LedgerTransfer{
		Kind:          models.TransferKindStake,
		WalletAddress: string(h.invoker),
		Amount:        h.value,
		Tick:          h.tick,
		RoundID:       h.roundID,
	})
}
