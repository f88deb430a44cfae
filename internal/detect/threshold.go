package detect

import (
	"context"
	"io"
	"log/slog"
)

// minSignalBins is the narrowest above-threshold run reported as a signal.
// Single-bin spikes are usually FFT leakage or impulse noise.
const minSignalBins = 2

// WithLogger sets the logger for the detector.
func WithLogger(logger *slog.Logger) func(*ThresholdDetector) {
	return func(d *ThresholdDetector) {
		d.logger = logger.With(slog.String("component", "detector"))
	}
}

// WithMinSignalBins overrides the minimum signal width in bins.
func WithMinSignalBins(n int) func(*ThresholdDetector) {
	return func(d *ThresholdDetector) {
		d.minBins = n
	}
}

// ThresholdDetector groups contiguous above-threshold bins into signals.
// It is stateless between calls and safe for concurrent use.
type ThresholdDetector struct {
	logger  *slog.Logger
	minBins int
}

// NewThresholdDetector creates a detector with default settings.
func NewThresholdDetector(options ...func(*ThresholdDetector)) *ThresholdDetector {
	d := &ThresholdDetector{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		minBins: minSignalBins,
	}

	for _, option := range options {
		option(d)
	}

	return d
}

func (d *ThresholdDetector) Initialize(ctx context.Context) error { return ctx.Err() }

func (d *ThresholdDetector) Close() error { return nil }

// DetectSignals walks the spectrum and emits one Signal per contiguous run of
// bins exceeding thresholdDB, at least minBins wide. Bin frequencies assume
// the spectrum covers [centerFreq-sampleRate/2, centerFreq+sampleRate/2).
func (d *ThresholdDetector) DetectSignals(spectrum []float64, sampleRate, centerFreq, thresholdDB float64) []Signal {
	if len(spectrum) == 0 || sampleRate <= 0 {
		return nil
	}

	binWidth := sampleRate / float64(len(spectrum))
	baseFreq := centerFreq - sampleRate/2

	var signals []Signal
	start := -1
	for i := 0; i <= len(spectrum); i++ {
		if i < len(spectrum) && spectrum[i] > thresholdDB {
			if start < 0 {
				start = i
			}
			continue
		}

		if start >= 0 {
			if i-start >= d.minBins {
				signals = append(signals, d.classify(spectrum, start, i-1, baseFreq, binWidth))
			}
			start = -1
		}
	}

	if len(signals) > 0 {
		d.logger.Debug("classified signals",
			slog.Int("count", len(signals)),
			slog.Float64("centerFreq", centerFreq))
	}

	return signals
}

func (d *ThresholdDetector) classify(spectrum []float64, startBin, endBin int, baseFreq, binWidth float64) Signal {
	peak := spectrum[startBin]
	var sum float64
	for i := startBin; i <= endBin; i++ {
		if spectrum[i] > peak {
			peak = spectrum[i]
		}
		sum += spectrum[i]
	}

	bins := endBin - startBin + 1
	return Signal{
		CenterFrequency: baseFreq + (float64(startBin)+float64(bins)/2)*binWidth,
		Bandwidth:       float64(bins) * binWidth,
		PeakPower:       peak,
		AveragePower:    sum / float64(bins),
		StartBin:        startBin,
		EndBin:          endBin,
	}
}
