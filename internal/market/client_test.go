package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const pairsBody = `{
  "pairs": [
    {
      "pairAddress": "shallow",
      "dexId": "raydium",
      "priceUsd": "0.001",
      "liquidity": {"usd": 100},
      "priceChange": {"m5": 1, "h1": 2, "h6": 3, "h24": 4}
    },
    {
      "pairAddress": "deep",
      "dexId": "raydium",
      "priceUsd": "0.0011",
      "liquidity": {"usd": 50000},
      "priceChange": {"m5": -95, "h1": -90, "h6": 600, "h24": 500},
      "txns": {"h1": {"buys": 10, "sells": 90}},
      "volume": {"h1": 20000, "h24": 45000},
      "info": {
        "websites": [{"url": "https://example.com"}],
        "socials": [
          {"type": "twitter", "url": "https://x.com/tok"},
          {"type": "telegram", "url": ""}
        ]
      }
    }
  ]
}`

func TestGetTokenMarket_PicksDeepestPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pairsBody)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	m, err := client.GetTokenMarket(context.Background(), "Mint")
	if err != nil {
		t.Fatalf("GetTokenMarket: %v", err)
	}

	if m.PairAddress != "deep" {
		t.Errorf("expected deepest pair, got %s", m.PairAddress)
	}
	if m.Series.M5.PriceChangePct != -95 {
		t.Errorf("m5 change = %f", m.Series.M5.PriceChangePct)
	}
	if m.Series.H1.SellCount != 90 {
		t.Errorf("h1 sells = %d", m.Series.H1.SellCount)
	}
	if m.Series.H24.Volume != 45000 {
		t.Errorf("h24 volume = %f", m.Series.H24.Volume)
	}
	if m.Social.Website == nil || *m.Social.Website != "https://example.com" {
		t.Errorf("website = %v", m.Social.Website)
	}
	if m.Social.Twitter == nil {
		t.Error("twitter should be set")
	}
	if m.Social.Telegram != nil {
		t.Error("empty social url must stay nil")
	}
}

func TestGetTokenMarket_NoPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pairs": []}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetTokenMarket(context.Background(), "Mint")
	if !errors.Is(err, ErrNoMarketData) {
		t.Errorf("expected ErrNoMarketData, got %v", err)
	}
}

func TestGetTokenMarket_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	if _, err := client.GetTokenMarket(context.Background(), "Mint"); err == nil {
		t.Error("expected error on 502")
	}
}
