// Package augment generates synthetic rug-pull timelines for detector
// calibration. Generation is deterministic: one seed always yields one
// timeline, so sample IDs are stable across runs.
package augment

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"rugradar/internal/domain"
	"rugradar/internal/idhash"
	"rugradar/internal/observability"
)

// ErrUnknownPattern is returned for a pattern name outside the catalog.
var ErrUnknownPattern = errors.New("unknown augmentation pattern")

// Patterns is the generation catalog in canonical order.
var Patterns = []string{
	domain.PatternTimeStretch,
	domain.PatternSniperInject,
	domain.PatternPerfectCrime,
	domain.PatternWashLoop,
}

// Synthetic timelines are anchored at a fixed epoch so the content of a
// sample depends on its seed alone.
const timelineStart = int64(1_700_000_000_000)

const (
	poolAddress = "pool"
	devAddress  = "dev"

	hourMs   = int64(60 * 60 * 1000)
	minuteMs = int64(60 * 1000)
)

// Generator builds synthetic samples. metrics may be nil.
type Generator struct {
	metrics *observability.Metrics
	now     func() int64
}

// NewGenerator creates a Generator. A nil now selects the wall clock.
func NewGenerator(metrics *observability.Metrics, now func() int64) *Generator {
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Generator{metrics: metrics, now: now}
}

// Generate builds one sample for a pattern and seed.
func (g *Generator) Generate(pattern string, seed int64) (*domain.SyntheticSample, error) {
	rng := rand.New(rand.NewSource(seed))

	var txs []domain.Transaction
	switch pattern {
	case domain.PatternTimeStretch:
		txs = baseRug(rng)
		txs = TimeStretch(txs, 0.3+rng.Float64()*2.7)
	case domain.PatternSniperInject:
		txs = baseRug(rng)
		txs = InjectSnipers(txs, rng, 3+rng.Intn(6))
	case domain.PatternWashLoop:
		txs = baseRug(rng)
		txs = WashLoop(txs, rng, 10+rng.Intn(20))
	case domain.PatternPerfectCrime:
		txs = PerfectCrime(rng)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, pattern)
	}
	domain.SortTransactions(txs)

	sample := &domain.SyntheticSample{
		SampleID:     idhash.ComputeSampleID(pattern, seed, len(txs)),
		Pattern:      pattern,
		Seed:         seed,
		CreatedAt:    g.now(),
		Transactions: txs,
	}
	g.metrics.RecordSampleGenerated(pattern)
	return sample, nil
}

// GenerateCorpus builds perPattern samples for each pattern, seeding
// sequentially from baseSeed.
func (g *Generator) GenerateCorpus(patterns []string, perPattern int, baseSeed int64) ([]*domain.SyntheticSample, error) {
	if len(patterns) == 0 {
		patterns = Patterns
	}

	samples := make([]*domain.SyntheticSample, 0, len(patterns)*perPattern)
	seed := baseSeed
	for _, pattern := range patterns {
		for i := 0; i < perPattern; i++ {
			sample, err := g.Generate(pattern, seed)
			if err != nil {
				return nil, err
			}
			samples = append(samples, sample)
			seed++
		}
	}
	return samples, nil
}

// baseRug builds the canonical rug timeline: a day of organic buys, a
// pump an hour out, panic sells once the pump stalls and a liquidity
// drain in the last minutes.
func baseRug(rng *rand.Rand) []domain.Transaction {
	var txs []domain.Transaction
	end := timelineStart + 24*hourMs

	total := 0.0
	buy := func(t int64, amount float64, source string) {
		txs = append(txs, domain.Transaction{
			Timestamp:   t,
			Source:      source,
			Destination: poolAddress,
			Amount:      amount,
		})
		total += amount
	}

	n := 60 + rng.Intn(60)
	span := 22 * hourMs
	for i := 0; i < n; i++ {
		t := timelineStart + int64(float64(span)*float64(i)/float64(n)) + int64(rng.Intn(int(minuteMs)))
		buy(t, 20+rng.Float64()*180, wallet(rng))
	}

	pumpN := 20 + rng.Intn(20)
	for i := 0; i < pumpN; i++ {
		t := timelineStart + 22*hourMs + int64(rng.Intn(int(50*minuteMs)))
		buy(t, 100+rng.Float64()*400, wallet(rng))
	}

	// Panic sells in the final half hour, ahead of the drain.
	panicN := 15 + rng.Intn(15)
	for i := 0; i < panicN; i++ {
		txs = append(txs, domain.Transaction{
			Timestamp:   end - 30*minuteMs + int64(rng.Intn(int(27*minuteMs))),
			Source:      poolAddress,
			Destination: wallet(rng),
			Amount:      -(5 + rng.Float64()*15),
		})
	}

	// Drain 90-95% of the pool in the final minutes.
	txs = append(txs, domain.Transaction{
		Timestamp:   end - int64(rng.Intn(int(3*minuteMs))),
		Source:      poolAddress,
		Destination: devAddress,
		Amount:      -total * (0.90 + rng.Float64()*0.05),
		IsRugEdge:   true,
	})

	domain.SortTransactions(txs)
	return txs
}

// TimeStretch rescales every inter-arrival gap by factor, anchored at
// the first timestamp. Stretching moves events across fixed lookback
// window edges, which is exactly what the pattern probes.
func TimeStretch(txs []domain.Transaction, factor float64) []domain.Transaction {
	if len(txs) == 0 || factor <= 0 {
		return txs
	}
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	domain.SortTransactions(out)

	anchor := out[0].Timestamp
	for i := range out {
		out[i].Timestamp = anchor + int64(float64(out[i].Timestamp-anchor)*factor)
	}
	domain.SortTransactions(out)
	return out
}

// InjectSnipers adds near-identical buys within two seconds of launch.
func InjectSnipers(txs []domain.Transaction, rng *rand.Rand, count int) []domain.Transaction {
	if len(txs) == 0 {
		return txs
	}
	out := make([]domain.Transaction, len(txs), len(txs)+count)
	copy(out, txs)
	domain.SortTransactions(out)

	launch := out[0].Timestamp
	base := 80 + rng.Float64()*40
	for i := 0; i < count; i++ {
		out = append(out, domain.Transaction{
			Timestamp:   launch + int64(rng.Intn(2000)),
			Source:      fmt.Sprintf("sniper%02d", i),
			Destination: poolAddress,
			Amount:      base * (1 + (rng.Float64()-0.5)*0.01),
			IsSniperBuy: true,
		})
	}
	domain.SortTransactions(out)
	return out
}

// WashLoop appends volume-neutral buy/sell pairs between two colluding
// wallets across the final six hours of the timeline.
func WashLoop(txs []domain.Transaction, rng *rand.Rand, loops int) []domain.Transaction {
	if len(txs) == 0 {
		return txs
	}
	out := make([]domain.Transaction, len(txs), len(txs)+2*loops)
	copy(out, txs)
	domain.SortTransactions(out)

	end := out[len(out)-1].Timestamp
	for i := 0; i < loops; i++ {
		t := end - 6*hourMs + int64(rng.Int63n(6*hourMs-10*minuteMs))
		amount := 50 + rng.Float64()*100
		out = append(out,
			domain.Transaction{
				Timestamp:   t,
				Source:      "washA",
				Destination: poolAddress,
				Amount:      amount,
				IsWashTrade: true,
			},
			domain.Transaction{
				Timestamp:   t + int64(500+rng.Intn(4500)),
				Source:      poolAddress,
				Destination: "washB",
				Amount:      -amount,
				IsWashTrade: true,
			},
		)
	}
	domain.SortTransactions(out)
	return out
}

// PerfectCrime builds the evasion pattern: insider accumulation, fake
// hype, then a slow staged exit that keeps every lookback window below
// the obvious collapse thresholds. Detectors are expected to miss a
// share of these; the corpus measures how large that share is.
func PerfectCrime(rng *rand.Rand) []domain.Transaction {
	var txs []domain.Transaction
	total := 0.0

	// Accumulation: insiders build a position with similar-sized buys.
	for i := 0; i < 30; i++ {
		amount := 95 + rng.Float64()*10
		txs = append(txs, domain.Transaction{
			Timestamp:   timelineStart + int64(float64(12*hourMs)*float64(i)/30) + int64(rng.Intn(int(minuteMs))),
			Source:      fmt.Sprintf("insider%02d", i%6),
			Destination: poolAddress,
			Amount:      amount,
		})
		total += amount
	}

	// Hype: manufactured interest over the next six hours.
	for i := 0; i < 40; i++ {
		amount := 50 + rng.Float64()*250
		txs = append(txs, domain.Transaction{
			Timestamp:   timelineStart + 12*hourMs + int64(float64(6*hourMs)*float64(i)/40) + int64(rng.Intn(int(minuteMs))),
			Source:      wallet(rng),
			Destination: poolAddress,
			Amount:      amount,
			IsFakeHype:  true,
		})
		total += amount
	}

	// Staged exit: ten disguised dev sells spread over five hours, each
	// small enough to stay under single-window collapse rules.
	exitStart := timelineStart + 18*hourMs
	remaining := total
	for i := 0; i < 10; i++ {
		amount := total * (0.085 + rng.Float64()*0.01)
		if amount > remaining {
			amount = remaining
		}
		remaining -= amount
		txs = append(txs, domain.Transaction{
			Timestamp:   exitStart + int64(float64(5*hourMs)*float64(i)/10) + int64(rng.Intn(int(2*minuteMs))),
			Source:      poolAddress,
			Destination: fmt.Sprintf("exit%02d", i),
			Amount:      -amount,
			IsDevSell:   true,
		})
	}

	// Final sweep of whatever is left.
	txs = append(txs, domain.Transaction{
		Timestamp:   timelineStart + 24*hourMs - int64(rng.Intn(int(10*minuteMs))),
		Source:      poolAddress,
		Destination: devAddress,
		Amount:      -remaining * 0.9,
		IsRugEdge:   true,
	})

	domain.SortTransactions(txs)
	return txs
}

func wallet(rng *rand.Rand) string {
	return fmt.Sprintf("wallet%03d", rng.Intn(400))
}
