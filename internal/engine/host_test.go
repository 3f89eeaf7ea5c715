package engine

type transfer struct {
	to     Identity
	amount uint64
}

// fakeHost is a scripted host: tests set the tick, invoker and attached value
// before each call and inspect the recorded transfers afterwards.
type fakeHost struct {
	tick      uint32
	invoker   Identity
	value     uint64
	transfers []transfer
}

func (h *fakeHost) Tick() uint32             { return h.tick }
func (h *fakeHost) Invoker() Identity        { return h.invoker }
func (h *fakeHost) InvocationReward() uint64 { return h.value }

func (h *fakeHost) Transfer(to Identity, amount uint64) {
	h.transfers = append(h.transfers, transfer{to: to, amount: amount})
}

func (h *fakeHost) call(who Identity, value uint64) *fakeHost {
	h.invoker = who
	h.value = value
	h.transfers = nil
	return h
}

func (h *fakeHost) paidTo(who Identity) uint64 {
	var total uint64
	for _, t := range h.transfers {
		if t.to == who {
			total += t.amount
		}
	}
	return total
}

const (
	owner Identity = "owner"
	alice Identity = "alice"
	bob   Identity = "bob"
	carol Identity = "carol"
)

func newMarket(tick uint32) (*State, *fakeHost) {
	h := &fakeHost{tick: tick, invoker: owner}
	return Initialize(h), h
}

// advanceTo runs the periodic check once for every tick up to and including to.
func advanceTo(s *State, h *fakeHost, to uint32) []Transition {
	var out []Transition
	h.invoker, h.value = "", 0
	for h.tick < to {
		h.tick++
		out = append(out, s.BeginTick(h))
	}
	return out
}

func bet(s *State, h *fakeHost, who Identity, dir Direction, amount uint64) PlaceBetOutput {
	return s.PlaceBet(h.call(who, amount), dir)
}
