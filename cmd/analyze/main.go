// Package main provides one-shot token analysis: fetch, score, render,
// optionally persist.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rugradar/internal/analyzer"
	"rugradar/internal/market"
	"rugradar/internal/normalize"
	"rugradar/internal/report"
	"rugradar/internal/scoring"
	"rugradar/internal/solana"
	"rugradar/internal/storage/migrations"
	pgstore "rugradar/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	marketURL := flag.String("market-url", envOr("MARKET_BASE_URL", market.DefaultBaseURL), "DEX aggregator base URL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN; empty skips persistence")
	format := flag.String("format", "text", "Output format: text or markdown")
	table := flag.String("table", "current", "Weight table: current or legacy")
	casinoAddrs := flag.String("casino-addrs", os.Getenv("CASINO_ADDRS"), "Comma-separated known gambling addresses")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall analysis timeout")
	flag.Parse()

	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags|log.Lshortfile)

	if flag.NArg() != 1 {
		logger.Fatal("usage: analyze [flags] <mint>")
	}
	mint := flag.Arg(0)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}

	weights := scoring.CurrentTable
	if *table == "legacy" {
		weights = scoring.LegacyTable
	}

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	classifier := &analyzer.ChainAddressClassifier{RPC: rpc}
	a := analyzer.New(
		&analyzer.ChainTokenSource{RPC: rpc},
		&analyzer.ChainHolderSource{RPC: rpc},
		&analyzer.AggregatorMarketSource{Client: market.NewClient(market.WithBaseURL(*marketURL))},
		&analyzer.ChainWalletSource{RPC: rpc},
		analyzer.Config{
			Table:       weights,
			Book:        normalize.AddressBook{IsProgramOwned: classifier.IsProgramOwned},
			CasinoAddrs: parseAddrSet(*casinoAddrs),
		},
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result := a.Analyze(ctx, mint)

	switch *format {
	case "markdown":
		fmt.Print(report.RenderTokenMarkdown(result))
	default:
		fmt.Print(report.RenderTokenText(result))
	}

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("run migrations: %v", err)
		}
		if err := pgstore.NewTokenReportStore(pool).Insert(ctx, result); err != nil {
			logger.Fatalf("persist report: %v", err)
		}
		logger.Printf("Stored analysis %s", result.AnalysisID)
	}

	if result.Error != "" {
		os.Exit(1)
	}
}

func parseAddrSet(csv string) map[string]bool {
	set := make(map[string]bool)
	for _, addr := range strings.Split(csv, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			set[addr] = true
		}
	}
	return set
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
