package solana

import (
	"errors"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	valid := []string{
		TokenProgramID,
		SystemProgramID,
		"So11111111111111111111111111111111111111112",
	}
	for _, addr := range valid {
		if err := ValidateAddress(addr); err != nil {
			t.Errorf("ValidateAddress(%q) = %v, want nil", addr, err)
		}
	}

	invalid := []string{
		"",
		"abc",
		"not-base58-0OIl!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!",
		"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DAextra",
	}
	for _, addr := range invalid {
		err := ValidateAddress(addr)
		if err == nil {
			t.Errorf("ValidateAddress(%q) = nil, want error", addr)
			continue
		}
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ValidateAddress(%q) error not wrapped: %v", addr, err)
		}
	}
}

func TestIsOnCurve(t *testing.T) {
	// The system program address is the zero key, which is a valid
	// curve point.
	on, err := IsOnCurve(SystemProgramID)
	if err != nil {
		t.Fatalf("IsOnCurve: %v", err)
	}
	if !on {
		t.Error("system program id should be on curve")
	}

	if _, err := IsOnCurve("garbage"); err == nil {
		t.Error("expected error for undecodable input")
	}
}
