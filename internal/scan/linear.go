package scan

import (
	"context"
	"io"
	"log/slog"

	"github.com/roman-kulish/spectrum-scanner/internal/dsp"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr"
)

// Linear sweeps the arithmetic sequence start, start+step, ..., end in
// order. Errors at individual frequencies are logged and skipped; the sweep
// carries on.
type Linear struct {
	base
}

// NewLinear creates a linear strategy backed by the given worker pool.
func NewLinear(pool *dsp.Pool, logger *slog.Logger) *Linear {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Linear{base{pool: pool, logger: logger.With(slog.String("strategy", string(StrategyLinear)))}}
}

func (s *Linear) Scan(ctx context.Context, tuner sdr.Tuner, config *Config, onResult ProgressFunc) ([]Result, error) {
	cfg := config.withDefaults()
	freqs := Frequencies(&cfg)
	results := make([]Result, 0, len(freqs))

	for _, freq := range freqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := s.scanFrequency(ctx, tuner, &cfg, freq, cfg.SettlingTime, sweepPriority)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			s.logSkip(freq, err)
			continue
		}

		results = append(results, result)
		if onResult != nil {
			onResult(result)
		}
	}

	return results, nil
}
