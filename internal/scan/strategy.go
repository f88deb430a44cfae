package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/dsp"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr"
)

// FFT dispatch priorities. The pool serves higher values first, so an
// explicit priority pass jumps ahead of sweep traffic from concurrent scans.
const (
	sweepPriority    = 1
	refinedPriority  = 2
	priorityPriority = 10
)

// ProgressFunc receives each Result as soon as its frequency completes,
// in scan order. Callbacks run on the scanning goroutine.
type ProgressFunc func(Result)

// Strategy walks a frequency range, drives the tuner and offloads spectral
// analysis to the shared worker pool. Implementations are sequential over
// frequencies; cancellation is cooperative, checked once per frequency before
// tuning, and aborted scans return the partial results accumulated so far
// together with the context error.
type Strategy interface {
	Scan(ctx context.Context, tuner sdr.Tuner, cfg *Config, onResult ProgressFunc) ([]Result, error)
}

// NewStrategy returns the strategy instance for kind. The second return
// value is false for unknown kinds, in which case a linear strategy is
// returned as the fallback.
func NewStrategy(kind StrategyKind, pool *dsp.Pool, logger *slog.Logger) (Strategy, bool) {
	switch kind {
	case StrategyLinear:
		return NewLinear(pool, logger), true
	case StrategyAdaptive:
		return NewAdaptive(pool, logger), true
	case StrategyPriority:
		return NewPriorityFirst(pool, logger), true
	default:
		return NewLinear(pool, logger), false
	}
}

// base carries the per-frequency pipeline shared by all strategies.
type base struct {
	pool   *dsp.Pool
	logger *slog.Logger
}

// scanFrequency runs one frequency end to end: tune, dwell, capture, submit
// to the pool and wait for the spectrum. The capture buffer's ownership moves
// to the pool on submission.
func (b *base) scanFrequency(ctx context.Context, tuner sdr.Tuner, cfg *Config, freq float64, dwell time.Duration, priority int) (Result, error) {
	if err := tuner.SetFrequency(ctx, freq); err != nil {
		return Result{}, err
	}

	sleep(ctx, dwell)

	samples, err := tuner.CaptureSamples(ctx, cfg.SampleCount)
	if err != nil {
		return Result{}, err
	}

	task, err := b.pool.Submit(dsp.Request{
		Samples:    samples,
		SampleRate: sdr.SampleRateOf(tuner),
		Priority:   priority,
	})
	if err != nil {
		return Result{}, err
	}

	spectrum, err := task.Wait(ctx)
	if err != nil {
		return Result{}, err
	}

	return newResult(freq, spectrum.Magnitude), nil
}

func (b *base) logSkip(freq float64, err error) {
	b.logger.Warn("skipping frequency after error",
		slog.Float64("frequency", freq),
		slog.String("error", err.Error()))
}

// sleep waits for d or until ctx is done, whichever comes first. An early
// return is safe: the per-frequency cancellation check stops the scan before
// the next frequency starts.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
