package scan

import (
	"context"
	"io"
	"log/slog"

	"github.com/roman-kulish/spectrum-scanner/internal/dsp"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr"
)

// PriorityFirst scans the configured priority frequencies first, in their
// given order, then delegates the remainder of the range to a linear sweep.
// Priority frequencies outside [start, end] are silently skipped and never
// tuned. Frequencies covered by the priority pass are suppressed from the
// linear pass's progress callbacks and result aggregation, so each frequency
// is reported at most once.
type PriorityFirst struct {
	base
	linear *Linear
}

// NewPriorityFirst creates a priority-first strategy backed by the given
// worker pool.
func NewPriorityFirst(pool *dsp.Pool, logger *slog.Logger) *PriorityFirst {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PriorityFirst{
		base:   base{pool: pool, logger: logger.With(slog.String("strategy", string(StrategyPriority)))},
		linear: NewLinear(pool, logger),
	}
}

func (s *PriorityFirst) Scan(ctx context.Context, tuner sdr.Tuner, config *Config, onResult ProgressFunc) ([]Result, error) {
	cfg := config.withDefaults()

	visited := make(map[float64]struct{}, len(cfg.PriorityFrequencies))
	var results []Result

	for _, freq := range cfg.PriorityFrequencies {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if freq < cfg.StartFreq || freq > cfg.EndFreq {
			continue
		}
		if _, ok := visited[freq]; ok {
			continue
		}

		result, err := s.scanFrequency(ctx, tuner, &cfg, freq, cfg.SettlingTime, priorityPriority)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			s.logSkip(freq, err)
			continue
		}

		visited[freq] = struct{}{}
		results = append(results, result)
		if onResult != nil {
			onResult(result)
		}
	}

	// Fall back to a plain sweep for the rest of the range, dropping anything
	// the priority pass already reported.
	swept, err := s.linear.Scan(ctx, tuner, &cfg, func(r Result) {
		if _, ok := visited[r.Frequency]; ok {
			return
		}
		if onResult != nil {
			onResult(r)
		}
	})
	for _, r := range swept {
		if _, ok := visited[r.Frequency]; ok {
			continue
		}
		results = append(results, r)
	}

	return results, err
}
