package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mintAccountData builds an 82-byte SPL mint layout for tests.
func mintAccountData(supply uint64, decimals uint8, hasMintAuth, hasFreezeAuth bool) []byte {
	raw := make([]byte, mintAccountSize)
	if hasMintAuth {
		binary.LittleEndian.PutUint32(raw[mintAuthorityOptionOff:], 1)
		raw[mintAuthorityOff] = 0xAA
	}
	binary.LittleEndian.PutUint64(raw[mintSupplyOff:], supply)
	raw[mintDecimalsOff] = decimals
	raw[mintInitializedOff] = 1
	if hasFreezeAuth {
		binary.LittleEndian.PutUint32(raw[freezeAuthorityOptionOff:], 1)
		raw[freezeAuthorityOff] = 0xBB
	}
	return raw
}

func rpcResult(t *testing.T, result string) string {
	t.Helper()
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":%s}`, result)
}

func TestGetMintInfo_Decodes(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(mintAccountData(1_000_000_000, 6, true, false))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "getAccountInfo" {
			t.Errorf("unexpected method %s", req.Method)
		}
		fmt.Fprint(w, rpcResult(t, fmt.Sprintf(
			`{"value":{"lamports":1,"owner":%q,"data":[%q,"base64"],"executable":false}}`,
			TokenProgramID, data)))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	info, err := client.GetMintInfo(context.Background(), "SomeMint11111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("GetMintInfo: %v", err)
	}

	if info.Supply != 1_000_000_000 {
		t.Errorf("supply = %d", info.Supply)
	}
	if info.Decimals != 6 {
		t.Errorf("decimals = %d", info.Decimals)
	}
	if info.UISupply != 1000 {
		t.Errorf("ui supply = %f", info.UISupply)
	}
	if info.MintAuthority == nil {
		t.Error("expected mint authority present")
	}
	if info.FreezeAuthority != nil {
		t.Error("expected freeze authority revoked")
	}
	if !info.Initialized {
		t.Error("expected initialized")
	}
}

func TestGetMintInfo_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rpcResult(t, `{"value":null}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.GetMintInfo(context.Background(), "Missing1111111111111111111111111111111111111")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestGetTokenLargestAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rpcResult(t,
			`{"value":[{"address":"A","amount":"500000","decimals":3},{"address":"B","amount":"250000","decimals":3}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	balances, err := client.GetTokenLargestAccounts(context.Background(), "Mint")
	if err != nil {
		t.Fatalf("GetTokenLargestAccounts: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	if balances[0].Amount != 500 {
		t.Errorf("amount = %f, want 500", balances[0].Amount)
	}
}

func TestCall_RetriesOn429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, rpcResult(t, `{"value":null}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithMaxRetries(2))
	client.retryDelay = time.Millisecond

	_, err := client.GetAccountOwner(context.Background(), "X")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not-found after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestCall_RPCErrorNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithMaxRetries(3))
	client.retryDelay = time.Millisecond

	_, err := client.GetSignaturesForAddress(context.Background(), "X", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("RPC errors must not retry, got %d attempts", attempts)
	}
}
