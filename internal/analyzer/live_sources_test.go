package analyzer

import (
	"context"
	"errors"
	"testing"

	"rugradar/internal/solana"
)

// stubRPC implements solana.RPCClient with canned owner responses.
type stubRPC struct {
	owners   map[string]string
	ownerErr error
}

func (s *stubRPC) GetMintInfo(ctx context.Context, mint string) (*solana.MintInfo, error) {
	return nil, solana.ErrAccountNotFound
}

func (s *stubRPC) GetTokenLargestAccounts(ctx context.Context, mint string) ([]solana.TokenAccountBalance, error) {
	return nil, nil
}

func (s *stubRPC) GetAccountOwner(ctx context.Context, pubkey string) (string, error) {
	if s.ownerErr != nil {
		return "", s.ownerErr
	}
	owner, ok := s.owners[pubkey]
	if !ok {
		return "", solana.ErrAccountNotFound
	}
	return owner, nil
}

func (s *stubRPC) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	return nil, nil
}

func TestChainAddressClassifier_OwnerProgram(t *testing.T) {
	// The system program id is on curve, so classification falls
	// through to the owner lookup.
	wallet := solana.SystemProgramID

	c := &ChainAddressClassifier{RPC: &stubRPC{owners: map[string]string{
		wallet: solana.SystemProgramID,
	}}}
	if c.IsProgramOwned(wallet) {
		t.Error("system-program-owned account is an ordinary wallet")
	}

	c = &ChainAddressClassifier{RPC: &stubRPC{owners: map[string]string{
		wallet: solana.TokenProgramID,
	}}}
	if !c.IsProgramOwned(wallet) {
		t.Error("account owned by another program must classify as program-owned")
	}
}

func TestChainAddressClassifier_LookupFailureUnclassified(t *testing.T) {
	c := &ChainAddressClassifier{RPC: &stubRPC{ownerErr: errors.New("rpc down")}}
	if c.IsProgramOwned(solana.SystemProgramID) {
		t.Error("a failed owner lookup must not classify the address")
	}
}
