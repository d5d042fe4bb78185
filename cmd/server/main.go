// Package main provides the long-running scanner service:
// - Analyze API: on-demand token analysis over HTTP
// - Watch loop (optional): WS log subscriptions re-analyzing watched
//   mints when fresh activity appears
// - Observability: /health, /metrics, /status
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rugradar/internal/analyzer"
	"rugradar/internal/domain"
	"rugradar/internal/market"
	"rugradar/internal/normalize"
	"rugradar/internal/observability"
	"rugradar/internal/report"
	"rugradar/internal/scoring"
	"rugradar/internal/solana"
	"rugradar/internal/storage"
	"rugradar/internal/storage/memory"
	"rugradar/internal/storage/migrations"
	pgstore "rugradar/internal/storage/postgres"
)

const analyzeQueueSize = 256

// Server holds all components of the scanner service.
type Server struct {
	// Configuration
	wsEndpoint      string
	watchMints      []string
	watchCooldown   time.Duration
	analysisTimeout time.Duration

	// Components
	analyzer *analyzer.Analyzer
	store    storage.TokenReportStore
	metrics  *observability.Metrics
	logger   *log.Logger

	// Watch state
	queue chan string

	// State
	mu           sync.Mutex
	started      time.Time
	lastAnalysis time.Time
	analysesRun  int
	lastSeen     map[string]time.Time
}

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (required with --watch)")
	marketURL := flag.String("market-url", envOr("MARKET_BASE_URL", market.DefaultBaseURL), "DEX aggregator base URL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	watch := flag.String("watch", os.Getenv("WATCH_MINTS"), "Comma-separated mints to watch for fresh activity")
	watchCooldown := flag.Duration("watch-cooldown", 5*time.Minute, "Minimum interval between re-analyses of one mint")
	casinoAddrs := flag.String("casino-addrs", os.Getenv("CASINO_ADDRS"), "Comma-separated known gambling addresses")
	table := flag.String("table", "current", "Weight table: current or legacy")
	analysisTimeout := flag.Duration("analysis-timeout", 60*time.Second, "Per-analysis time limit")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	watchMints := splitCSV(*watch)
	if len(watchMints) > 0 && *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required with --watch")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	weights := scoring.CurrentTable
	if *table == "legacy" {
		weights = scoring.LegacyTable
	}

	ctx, cancel := context.WithCancel(context.Background())

	store, cleanup, err := createStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("")
	rpc := solana.NewHTTPClient(*rpcEndpoint)
	classifier := &analyzer.ChainAddressClassifier{RPC: rpc}
	a := analyzer.New(
		&analyzer.ChainTokenSource{RPC: rpc},
		&analyzer.ChainHolderSource{RPC: rpc},
		&analyzer.AggregatorMarketSource{Client: market.NewClient(market.WithBaseURL(*marketURL))},
		&analyzer.ChainWalletSource{RPC: rpc},
		analyzer.Config{
			Table:        weights,
			Book:         normalize.AddressBook{IsProgramOwned: classifier.IsProgramOwned},
			CasinoAddrs:  parseAddrSet(*casinoAddrs),
			FetchTimeout: *analysisTimeout,
		},
		metrics,
	)

	server := &Server{
		wsEndpoint:      *wsEndpoint,
		watchMints:      watchMints,
		watchCooldown:   *watchCooldown,
		analysisTimeout: *analysisTimeout,
		analyzer:        a,
		store:           store,
		metrics:         metrics,
		logger:          logger,
		queue:           make(chan string, analyzeQueueSize),
		started:         time.Now(),
		lastSeen:        make(map[string]time.Time),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	go server.startHTTPServer(*addr)

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStore creates the report store, in-memory or Postgres-backed.
func createStore(ctx context.Context, postgresDSN string, useMemory bool) (storage.TokenReportStore, func(), error) {
	if useMemory {
		return memory.NewTokenReportStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewTokenReportStore(pool), pool.Close, nil
}

// Run starts the watch loop and the analysis worker, then blocks until
// the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting scanner service...")

	errCh := make(chan error, 1)

	if len(s.watchMints) > 0 {
		go func() {
			if err := s.runWatch(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("watch loop: %w", err)
			}
		}()
	}

	go s.runWorker(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runWatch opens one WS subscription per watched mint. Separate
// connections keep per-mint attribution unambiguous: a logsSubscribe
// notification carries no filter echo, so a shared connection could not
// tell watched mints apart.
func (s *Server) runWatch(ctx context.Context) error {
	s.logger.Printf("Watching %d mints (cooldown %v)", len(s.watchMints), s.watchCooldown)

	clients := make([]*solana.WatchClient, 0, len(s.watchMints))
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	var wg sync.WaitGroup
	for _, mint := range s.watchMints {
		client, err := solana.DialWatch(ctx, s.wsEndpoint, []string{mint}, nil)
		if err != nil {
			return fmt.Errorf("dial watch for %s: %w", mint, err)
		}
		clients = append(clients, client)

		wg.Add(1)
		go func(mint string, client *solana.WatchClient) {
			defer wg.Done()
			s.consumeEvents(ctx, mint, client)
		}(mint, client)
	}
	s.metrics.WatchedMints.Set(float64(len(clients)))
	defer s.metrics.WatchedMints.Set(0)

	<-ctx.Done()
	for _, c := range clients {
		c.Close()
	}
	wg.Wait()
	return ctx.Err()
}

// consumeEvents drains one mint's log events into the analysis queue.
func (s *Server) consumeEvents(ctx context.Context, mint string, client *solana.WatchClient) {
	var reconnectsSeen int64
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-client.Events():
			if !ok {
				return
			}
			if event.Failed {
				continue
			}
			s.metrics.WatchEventsHandled.Inc()

			if n := client.Reconnects.Load(); n > reconnectsSeen {
				s.metrics.WatchReconnects.Add(float64(n - reconnectsSeen))
				reconnectsSeen = n
			}

			if !s.shouldAnalyze(mint) {
				continue
			}
			select {
			case s.queue <- mint:
			default:
				s.logger.Printf("Analysis queue full, dropping trigger for %s", mint)
			}
		}
	}
}

// shouldAnalyze enforces the per-mint cooldown.
func (s *Server) shouldAnalyze(mint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last, ok := s.lastSeen[mint]; ok && now.Sub(last) < s.watchCooldown {
		return false
	}
	s.lastSeen[mint] = now
	return true
}

// runWorker executes queued re-analyses one at a time.
func (s *Server) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case mint := <-s.queue:
			result := s.analyzeMint(ctx, mint)
			s.logger.Printf("Watch analysis %s: %s (%d/100)", mint, result.Verdict, result.RiskScore)
		}
	}
}

// analyzeMint runs one analysis and persists the report. Duplicate
// analysis IDs (same mint, same ms) are harmless and skipped.
func (s *Server) analyzeMint(ctx context.Context, mint string) *domain.TokenReport {
	ctx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	result := s.analyzer.Analyze(ctx, mint)

	if err := s.store.Insert(ctx, result); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("Persist analysis %s: %v", result.AnalysisID, err)
	}

	s.mu.Lock()
	s.analysesRun++
	s.lastAnalysis = time.Now()
	s.mu.Unlock()

	return result
}

// startHTTPServer starts the HTTP server for the analyze API plus
// health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/analyze", s.handleAnalyze)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// handleAnalyze runs an on-demand analysis. ?format=text|markdown|json
// selects the rendering; json is the default.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	mint := r.URL.Query().Get("mint")
	if mint == "" {
		http.Error(w, "missing mint parameter", http.StatusBadRequest)
		return
	}

	result := s.analyzeMint(r.Context(), mint)

	switch r.URL.Query().Get("format") {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, report.RenderTokenText(result))
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, report.RenderTokenMarkdown(result))
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	WatchedMints int       `json:"watched_mints"`
	AnalysesRun  int       `json:"analyses_run"`
	LastAnalysis time.Time `json:"last_analysis,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.started).String(),
		WatchedMints: len(s.watchMints),
		AnalysesRun:  s.analysesRun,
		LastAnalysis: s.lastAnalysis,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func splitCSV(csv string) []string {
	var out []string
	for _, v := range strings.Split(csv, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseAddrSet(csv string) map[string]bool {
	set := make(map[string]bool)
	for _, addr := range splitCSV(csv) {
		set[addr] = true
	}
	return set
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
