// Package solana talks to Solana JSON-RPC and WebSocket endpoints and
// understands just enough of the SPL token layout to feed analysis.
package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program and account addresses.
const (
	TokenProgramID  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	SystemProgramID = "11111111111111111111111111111111"
)

// ErrInvalidAddress is returned for strings that are not 32-byte base58
// public keys.
var ErrInvalidAddress = errors.New("invalid solana address")

// ValidateAddress checks that s decodes to a 32-byte public key.
func ValidateAddress(s string) error {
	if len(s) < 32 || len(s) > 44 {
		return fmt.Errorf("%w: bad length %d", ErrInvalidAddress, len(s))
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: decodes to %d bytes", ErrInvalidAddress, len(raw))
	}
	return nil
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// Program-derived addresses are intentionally off-curve, so this
// distinguishes wallet keys from protocol-owned accounts.
func IsOnCurve(s string) (bool, error) {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return false, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil, nil
}
