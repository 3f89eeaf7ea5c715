package engine

const (
	PriceScale = 100_000

	priceBase       = 2500
	priceMultiplier = 1103515245
	priceIncrement  = 12345
)

// GeneratePrice returns the reference price for a tick, scaled by PriceScale.
//
// This is a placeholder linear-congruential generator and the sequence must
// stay bit-for-bit stable so stored rounds replay identically. The tick is
// public, so the outcome is predictable and the generator must never be used
// as a real oracle.
func GeneratePrice(tick uint32) int64 {
	seed := uint64(tick)*priceMultiplier + priceIncrement
	seed = (seed / 65536) % 32768
	variance := int64(seed%1000) - 500
	return (priceBase + variance) * PriceScale
}
