package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var moods = []string{
	"Bullish", "Bearish", "Steady", "Lucky", "Patient",
	"Greedy", "Fearless", "Quiet", "Rapid", "Stubborn",
	"Calm", "Restless", "Sharp", "Hedged", "Leveraged",
}

var traders = []string{
	"Bull", "Bear", "Whale", "Shrimp", "Trader",
	"Scalper", "Oracle", "Hodler", "Candle", "Wick",
	"Ticker", "Punter", "Degen", "Maker", "Taker",
}

// GenerateNickname creates a random nickname in the format "Mood_Trader_XXXX"
// where XXXX is a random 4-digit number
func GenerateNickname() (string, error) {
	moodIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(moods))))
	if err != nil {
		return "", fmt.Errorf("failed to pick nickname mood: %w", err)
	}

	traderIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(traders))))
	if err != nil {
		return "", fmt.Errorf("failed to pick nickname noun: %w", err)
	}

	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}

	return fmt.Sprintf("%s_%s_%04d",
		moods[moodIdx.Int64()],
		traders[traderIdx.Int64()],
		suffix.Int64(),
	), nil
}
