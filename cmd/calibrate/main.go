// Package main replays a synthetic corpus through the timeline
// detectors and prints a per-pattern sensitivity table. With a
// ClickHouse DSN it reads the stored corpus and persists run records;
// without one it generates an ephemeral corpus in memory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"rugradar/internal/augment"
	"rugradar/internal/calibrate"
	"rugradar/internal/domain"
	"rugradar/internal/storage/clickhouse"
	"rugradar/internal/storage/migrations"
)

func main() {
	_ = godotenv.Load()

	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse DSN; empty runs over an ephemeral corpus")
	pattern := flag.String("pattern", "", "Restrict the sweep to one pattern")
	perPattern := flag.Int("per-pattern", 10, "Ephemeral corpus size per pattern (no-DSN mode)")
	seed := flag.Int64("seed", 1, "Ephemeral corpus base seed (no-DSN mode)")
	flag.Parse()

	logger := log.New(os.Stderr, "[calibrate] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	runner := calibrate.NewRunner(nil, nil)

	var summary calibrate.Summary
	if *clickhouseDSN == "" {
		var patterns []string
		if *pattern != "" {
			patterns = []string{*pattern}
		}
		samples, err := augment.NewGenerator(nil, nil).GenerateCorpus(patterns, *perPattern, *seed)
		if err != nil {
			logger.Fatalf("generate corpus: %v", err)
		}
		logger.Printf("No --clickhouse-dsn, sweeping an ephemeral corpus of %d samples", len(samples))
		summary, _ = runner.Run(samples)
	} else {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("run migrations: %v", err)
		}
		defer conn.Close()

		store := clickhouse.NewSampleStore(conn)
		var samples []*domain.SyntheticSample
		if *pattern != "" {
			samples, err = store.GetByPattern(ctx, *pattern)
		} else {
			samples, err = store.GetAll(ctx)
		}
		if err != nil {
			logger.Fatalf("load corpus: %v", err)
		}
		if len(samples) == 0 {
			logger.Fatal("corpus is empty; run augment with --clickhouse-dsn first")
		}
		logger.Printf("Sweeping %d stored samples", len(samples))

		summary, err = runner.RunAndStore(ctx, samples, clickhouse.NewDetectorRunStore(conn))
		if err != nil {
			logger.Fatalf("calibration sweep: %v", err)
		}
	}

	printSummary(summary)
}

func printSummary(summary calibrate.Summary) {
	detectors := make([]string, 0, len(summary.Detectors))
	for det := range summary.Detectors {
		detectors = append(detectors, det)
	}
	sort.Strings(detectors)

	for _, det := range detectors {
		ds := summary.Detectors[det]
		fmt.Printf("\n%s\n", det)
		fmt.Printf("  %-20s %8s %9s %6s %6s %6s %6s\n",
			"pattern", "samples", "detected", "rate", "mean", "p50", "p90")

		patterns := make([]string, 0, len(ds.Patterns))
		for p := range ds.Patterns {
			patterns = append(patterns, p)
		}
		sort.Strings(patterns)

		for _, p := range patterns {
			printStats(p, ds.Patterns[p])
		}
		printStats("OVERALL", ds.Overall)
	}
}

func printStats(label string, stats calibrate.PatternStats) {
	fmt.Printf("  %-20s %8d %9d %5.0f%% %6.1f %6.1f %6.1f\n",
		label, stats.Samples, stats.Detected, stats.DetectionRate*100,
		stats.ConfidenceMean, stats.ConfidenceP50, stats.ConfidenceP90)
}
