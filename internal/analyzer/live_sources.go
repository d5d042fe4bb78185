package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rugradar/internal/domain"
	"rugradar/internal/market"
	"rugradar/internal/normalize"
	"rugradar/internal/solana"
	"rugradar/internal/storage"
)

// ChainTokenSource reads mint state over Solana RPC.
type ChainTokenSource struct {
	RPC solana.RPCClient
}

var _ TokenSource = (*ChainTokenSource)(nil)

func (s *ChainTokenSource) GetToken(ctx context.Context, mint string) (*domain.Token, error) {
	info, err := s.RPC.GetMintInfo(ctx, mint)
	if err != nil {
		if errors.Is(err, solana.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: mint %s", storage.ErrNotFound, mint)
		}
		return nil, fmt.Errorf("fetch mint: %w", err)
	}
	return &domain.Token{
		Mint:            mint,
		Decimals:        int(info.Decimals),
		Supply:          info.UISupply,
		MintAuthority:   info.MintAuthority != nil,
		FreezeAuthority: info.FreezeAuthority != nil,
	}, nil
}

// ChainHolderSource reads the largest token accounts over Solana RPC.
type ChainHolderSource struct {
	RPC solana.RPCClient
}

var _ HolderSource = (*ChainHolderSource)(nil)

func (s *ChainHolderSource) GetHolders(ctx context.Context, mint string) ([]normalize.RawHolder, error) {
	balances, err := s.RPC.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("fetch largest accounts: %w", err)
	}
	raw := make([]normalize.RawHolder, 0, len(balances))
	for _, b := range balances {
		raw = append(raw, normalize.RawHolder{Address: b.Address, Balance: b.Amount})
	}
	return raw, nil
}

// AggregatorMarketSource reads price windows and socials from the DEX
// aggregator.
type AggregatorMarketSource struct {
	Client *market.Client
}

var _ MarketSource = (*AggregatorMarketSource)(nil)

func (s *AggregatorMarketSource) GetMarket(ctx context.Context, mint string) (*MarketData, error) {
	m, err := s.Client.GetTokenMarket(ctx, mint)
	if err != nil {
		if errors.Is(err, market.ErrNoMarketData) {
			return nil, fmt.Errorf("%w: market %s", storage.ErrNotFound, mint)
		}
		return nil, fmt.Errorf("fetch market: %w", err)
	}
	return &MarketData{Series: m.Series, Social: m.Social}, nil
}

// ChainAddressClassifier backs AddressBook program-ownership checks
// with the chain: an address counts as program-owned when it is off the
// ed25519 curve (a PDA) or when its owning program is not the system
// program. Lookup failures leave the address unclassified.
type ChainAddressClassifier struct {
	RPC solana.RPCClient

	// Timeout bounds each owner lookup; zero selects 5s.
	Timeout time.Duration
}

func (c *ChainAddressClassifier) IsProgramOwned(address string) bool {
	if onCurve, err := solana.IsOnCurve(address); err == nil && !onCurve {
		return true
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	owner, err := c.RPC.GetAccountOwner(ctx, address)
	if err != nil {
		return false
	}
	return owner != solana.SystemProgramID
}

// ChainWalletSource derives wallet profiles from transaction history
// over Solana RPC. Bundle timing and deployer outflow traces need an
// indexer this source does not have, so those lookups report no data
// and the corresponding detectors stay in their unknown state.
type ChainWalletSource struct {
	RPC solana.RPCClient

	// SignatureLimit bounds the history fetched per wallet; zero
	// selects 1000 (the RPC maximum).
	SignatureLimit int
}

var _ WalletSource = (*ChainWalletSource)(nil)

func (s *ChainWalletSource) GetProfiles(ctx context.Context, addrs []string) ([]domain.WalletProfile, error) {
	limit := s.SignatureLimit
	if limit <= 0 {
		limit = 1000
	}

	profiles := make([]domain.WalletProfile, 0, len(addrs))
	for _, addr := range addrs {
		sigs, err := s.RPC.GetSignaturesForAddress(ctx, addr, &solana.SignaturesOpts{Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("fetch signatures for %s: %w", addr, err)
		}

		profile := domain.WalletProfile{
			Address:         addr,
			FundingCategory: domain.FundingUnknown,
		}
		// Signatures come newest-first; the oldest one approximates the
		// wallet creation time unless history was truncated at the limit.
		if n := len(sigs); n > 0 && n < limit {
			if bt := sigs[n-1].BlockTime; bt != nil {
				created := *bt * 1000
				profile.CreatedAt = &created
			}
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (s *ChainWalletSource) GetBundleHints(ctx context.Context, mint string) (map[string]bool, error) {
	return nil, nil
}

func (s *ChainWalletSource) GetDevOutflows(ctx context.Context, mint string) ([]domain.Transaction, error) {
	return nil, fmt.Errorf("%w: dev outflows for %s", storage.ErrNotFound, mint)
}
