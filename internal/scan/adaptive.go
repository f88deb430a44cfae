package scan

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/dsp"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr"
)

const (
	// refinementsPerStep caps how many sub-frequencies are inserted after an
	// interesting base frequency: the three interior step/4 points.
	refinementsPerStep = 3

	// dwellPerInterest scales extra dwell time by interest score.
	dwellPerInterest = 200 * time.Millisecond

	// interestSpanDB is the dB range over which peak power above the
	// threshold maps onto the full [0,1] interest scale.
	interestSpanDB = 30.0
)

// Adaptive sweeps like Linear but learns. It keeps a per-frequency interest
// score across scans on the same instance: frequencies that previously
// carried signal get refinement sub-steps at step/4 spacing and a longer
// dwell time on subsequent passes. Reset returns the instance to base-only
// behavior.
type Adaptive struct {
	base

	mu       sync.Mutex
	interest map[float64]float64 // freq -> score in [0,1]
}

// NewAdaptive creates an adaptive strategy backed by the given worker pool.
func NewAdaptive(pool *dsp.Pool, logger *slog.Logger) *Adaptive {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adaptive{
		base:     base{pool: pool, logger: logger.With(slog.String("strategy", string(StrategyAdaptive)))},
		interest: make(map[float64]float64),
	}
}

// Reset clears the learned interest map.
func (s *Adaptive) Reset() {
	s.mu.Lock()
	s.interest = make(map[float64]float64)
	s.mu.Unlock()
}

func (s *Adaptive) Scan(ctx context.Context, tuner sdr.Tuner, config *Config, onResult ProgressFunc) ([]Result, error) {
	cfg := config.withDefaults()
	freqs := s.plan(&cfg)
	results := make([]Result, 0, len(freqs))

	for _, freq := range freqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		priority := sweepPriority
		dwell := cfg.SettlingTime
		if score := s.score(freq); score > 0 {
			priority = refinedPriority
			dwell = min(cfg.SettlingTime+time.Duration(score*float64(dwellPerInterest)), MaxSettlingTime)
		}

		result, err := s.scanFrequency(ctx, tuner, &cfg, freq, dwell, priority)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			s.logSkip(freq, err)
			continue
		}

		s.learn(freq, result.PeakPower, cfg.DetectionThreshold)

		results = append(results, result)
		if onResult != nil {
			onResult(result)
		}
	}

	return results, nil
}

// plan expands the base sequence with step/4 refinement points after every
// base frequency the interest map already knows about. Refinement is bounded:
// at most refinementsPerStep insertions per base frequency, and never past
// the configured end.
func (s *Adaptive) plan(cfg *Config) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	fine := cfg.StepFreq / 4
	var freqs []float64
	for _, freq := range Frequencies(cfg) {
		freqs = append(freqs, freq)

		if s.interest[freq] <= 0 {
			continue
		}
		for i := 1; i <= refinementsPerStep; i++ {
			sub := freq + float64(i)*fine
			if sub > cfg.EndFreq {
				break
			}
			freqs = append(freqs, sub)
		}
	}

	return freqs
}

func (s *Adaptive) score(freq float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interest[freq]
}

// learn updates the interest score after a measurement. Scores only move
// when the peak exceeds the threshold; quiet passes leave the previous score
// untouched (no decay is modeled).
func (s *Adaptive) learn(freq, peak, threshold float64) {
	if peak <= threshold {
		return
	}

	s.mu.Lock()
	s.interest[freq] = min((peak-threshold)/interestSpanDB, 1)
	s.mu.Unlock()
}
