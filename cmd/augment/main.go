// Package main generates a synthetic rug-timeline corpus, optionally
// persisting it to ClickHouse for later calibration runs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rugradar/internal/augment"
	"rugradar/internal/storage/clickhouse"
	"rugradar/internal/storage/migrations"
)

func main() {
	_ = godotenv.Load()

	patternsCSV := flag.String("patterns", "", "Comma-separated pattern names; empty means all")
	perPattern := flag.Int("per-pattern", 10, "Samples to generate per pattern")
	seed := flag.Int64("seed", 1, "Base RNG seed; sample seeds derive from it")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse DSN; empty skips persistence")
	flag.Parse()

	logger := log.New(os.Stderr, "[augment] ", log.LstdFlags|log.Lshortfile)

	var patterns []string
	if *patternsCSV != "" {
		for _, p := range strings.Split(*patternsCSV, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
	}

	samples, err := augment.NewGenerator(nil, nil).GenerateCorpus(patterns, *perPattern, *seed)
	if err != nil {
		logger.Fatalf("generate corpus: %v", err)
	}

	txTotal := 0
	for _, sample := range samples {
		txTotal += len(sample.Transactions)
	}
	logger.Printf("Generated %d samples (%d transactions) across %d patterns",
		len(samples), txTotal, len(samples)/max(*perPattern, 1))

	if *clickhouseDSN == "" {
		logger.Println("No --clickhouse-dsn, corpus discarded after summary")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("run migrations: %v", err)
	}
	defer conn.Close()

	if err := clickhouse.NewSampleStore(conn).InsertBulk(ctx, samples); err != nil {
		logger.Fatalf("store corpus: %v", err)
	}
	logger.Printf("Stored %d samples", len(samples))
}
