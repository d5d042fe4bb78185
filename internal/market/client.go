// Package market fetches DEX market data (price windows, volumes,
// social links) for a token from an aggregator API.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rugradar/internal/domain"
)

// DefaultBaseURL is the public aggregator endpoint.
const DefaultBaseURL = "https://api.dexscreener.com"

// ErrNoMarketData is returned when the aggregator has no pairs for the mint.
var ErrNoMarketData = errors.New("no market data for token")

// TokenMarket is the aggregated market view of one token.
type TokenMarket struct {
	Series       domain.PriceSeries
	Social       domain.SocialLinks
	PriceUSD     float64
	LiquidityUSD float64
	PairAddress  string
	DexID        string
}

// Client fetches token market data over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the aggregator endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a market data client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pairsResponse struct {
	Pairs []pairEntry `json:"pairs"`
}

type pairEntry struct {
	PairAddress string `json:"pairAddress"`
	DexID       string `json:"dexId"`
	PriceUSD    string `json:"priceUsd"`
	PriceChange struct {
		M5  float64 `json:"m5"`
		H1  float64 `json:"h1"`
		H6  float64 `json:"h6"`
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Txns struct {
		M5  txnCounts `json:"m5"`
		H1  txnCounts `json:"h1"`
		H6  txnCounts `json:"h6"`
		H24 txnCounts `json:"h24"`
	} `json:"txns"`
	Volume struct {
		M5  float64 `json:"m5"`
		H1  float64 `json:"h1"`
		H6  float64 `json:"h6"`
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Info *struct {
		Websites []struct {
			URL string `json:"url"`
		} `json:"websites"`
		Socials []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"socials"`
	} `json:"info"`
}

type txnCounts struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// GetTokenMarket fetches pairs for a mint and flattens the deepest pair.
func (c *Client) GetTokenMarket(ctx context.Context, mint string) (*TokenMarket, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed pairsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Pairs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMarketData, mint)
	}

	best := parsed.Pairs[0]
	for _, p := range parsed.Pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	return flattenPair(best), nil
}

func flattenPair(p pairEntry) *TokenMarket {
	m := &TokenMarket{
		PairAddress:  p.PairAddress,
		DexID:        p.DexID,
		LiquidityUSD: p.Liquidity.USD,
		Series: domain.PriceSeries{
			M5: domain.WindowStats{
				PriceChangePct: p.PriceChange.M5,
				BuyCount:       p.Txns.M5.Buys,
				SellCount:      p.Txns.M5.Sells,
				Volume:         p.Volume.M5,
			},
			H1: domain.WindowStats{
				PriceChangePct: p.PriceChange.H1,
				BuyCount:       p.Txns.H1.Buys,
				SellCount:      p.Txns.H1.Sells,
				Volume:         p.Volume.H1,
			},
			H6: domain.WindowStats{
				PriceChangePct: p.PriceChange.H6,
				BuyCount:       p.Txns.H6.Buys,
				SellCount:      p.Txns.H6.Sells,
				Volume:         p.Volume.H6,
			},
			H24: domain.WindowStats{
				PriceChangePct: p.PriceChange.H24,
				BuyCount:       p.Txns.H24.Buys,
				SellCount:      p.Txns.H24.Sells,
				Volume:         p.Volume.H24,
			},
		},
	}
	fmt.Sscanf(p.PriceUSD, "%f", &m.PriceUSD)

	if p.Info != nil {
		if len(p.Info.Websites) > 0 && p.Info.Websites[0].URL != "" {
			url := p.Info.Websites[0].URL
			m.Social.Website = &url
		}
		for _, s := range p.Info.Socials {
			url := s.URL
			if url == "" {
				continue
			}
			switch strings.ToLower(s.Type) {
			case "twitter":
				m.Social.Twitter = &url
			case "telegram":
				m.Social.Telegram = &url
			case "discord":
				m.Social.Discord = &url
			}
		}
	}
	return m
}
