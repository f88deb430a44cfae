package scan

import (
	"fmt"
	"math"
	"time"
)

// StrategyKind selects the frequency-walking strategy for a scan.
type StrategyKind string

const (
	StrategyLinear   StrategyKind = "linear"
	StrategyAdaptive StrategyKind = "adaptive"
	StrategyPriority StrategyKind = "priority"
)

const (
	// DefaultSettlingTime is the post-retune delay before capturing samples.
	DefaultSettlingTime = 50 * time.Millisecond

	// MaxSettlingTime caps the adaptive strategy's dwell time.
	MaxSettlingTime = 500 * time.Millisecond

	// DefaultSampleCount is the number of IQ samples captured per frequency.
	DefaultSampleCount = 2048

	// DefaultDetectionThreshold separates signal from noise in dB.
	DefaultDetectionThreshold = -60.0
)

// Config is an immutable scan request. Zero-valued optional fields take the
// package defaults.
type Config struct {
	StartFreq float64      // Hz, required
	EndFreq   float64      // Hz, required
	StepFreq  float64      // Hz, required
	Strategy  StrategyKind // unknown kinds fall back to linear

	SettlingTime        time.Duration // default 50ms
	SampleCount         int           // default 2048
	PriorityFrequencies []float64     // priority strategy only
	DetectionThreshold  float64       // dB, default -60
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if c.StartFreq <= 0 || c.EndFreq <= 0 {
		return fmt.Errorf("invalid frequency range: start=%f, end=%f", c.StartFreq, c.EndFreq)
	}
	if c.StartFreq > c.EndFreq {
		return fmt.Errorf("start frequency %f exceeds end frequency %f", c.StartFreq, c.EndFreq)
	}
	if c.StepFreq <= 0 {
		return fmt.Errorf("invalid step size: %f", c.StepFreq)
	}
	return nil
}

// withDefaults returns a copy with defaults applied to optional fields.
func (c *Config) withDefaults() Config {
	out := *c
	if out.SettlingTime == 0 {
		out.SettlingTime = DefaultSettlingTime
	}
	if out.SampleCount == 0 {
		out.SampleCount = DefaultSampleCount
	}
	if out.DetectionThreshold == 0 {
		out.DetectionThreshold = DefaultDetectionThreshold
	}
	return out
}

// EstimatedSteps is the step-count estimate used for progress reporting.
// It intentionally mirrors the published total, not the exact inclusive
// sequence length.
func (c *Config) EstimatedSteps() int {
	return int(math.Ceil((c.EndFreq - c.StartFreq) / c.StepFreq))
}
