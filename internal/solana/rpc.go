package solana

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when the queried account does not
// exist on chain.
var ErrAccountNotFound = errors.New("account not found")

// MintInfo is the decoded SPL token mint account.
type MintInfo struct {
	Mint            string
	Decimals        uint8
	Supply          uint64  // raw units
	UISupply        float64 // supply adjusted for decimals
	MintAuthority   *string // nil when revoked
	FreezeAuthority *string // nil when revoked
	Initialized     bool
}

// TokenAccountBalance is one entry of getTokenLargestAccounts.
type TokenAccountBalance struct {
	Address  string
	Amount   float64 // ui amount, decimals applied
	Decimals uint8
}

// SignatureInfo is one entry of getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64 // Unix seconds, nil when unknown
	Failed    bool
}

// SignaturesOpts controls getSignaturesForAddress pagination.
type SignaturesOpts struct {
	Before string
	Until  string
	Limit  int
}

// RPCClient is the JSON-RPC surface the analyzer needs.
type RPCClient interface {
	// GetMintInfo fetches and decodes a token mint account.
	// Returns ErrAccountNotFound when the mint does not exist.
	GetMintInfo(ctx context.Context, mint string) (*MintInfo, error)

	// GetTokenLargestAccounts returns the 20 largest token accounts of a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error)

	// GetAccountOwner returns the owning program of an account.
	// Returns ErrAccountNotFound when the account does not exist.
	GetAccountOwner(ctx context.Context, pubkey string) (string, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}
