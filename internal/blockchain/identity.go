package blockchain

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"updown-market/internal/engine"
)

// LoginMessage is the text a wallet signs to prove ownership.
const LoginMessage = "Sign this message to authenticate with UPDOWN"

var (
	ErrInvalidWallet    = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
)

// ParseWallet validates a base58 Solana public key and returns it as a market
// identity in canonical form.
func ParseWallet(address string) (engine.Identity, error) {
	if len(address) < 32 || len(address) > 44 {
		return "", ErrInvalidWallet
	}
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	return engine.Identity(pk.String()), nil
}

// VerifySignature checks that signature (base58, or hex as a fallback) is the
// wallet's ed25519 signature over message.
func VerifySignature(wallet engine.Identity, message []byte, signature string) error {
	pk, err := solana.PublicKeyFromBase58(string(wallet))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}

	sig, err := base58.Decode(signature)
	if err != nil {
		sig, err = hex.DecodeString(signature)
		if err != nil {
			return fmt.Errorf("%w: undecodable", ErrInvalidSignature)
		}
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: bad length %d", ErrInvalidSignature, len(sig))
	}

	if !ed25519.Verify(ed25519.PublicKey(pk.Bytes()), message, sig) {
		return ErrInvalidSignature
	}
	return nil
}
