package scan

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/dsp"
)

// fakeTuner is a scripted tuner. It records every retune and synthesizes a
// flat capture whose level depends on whether the current frequency is marked
// loud: loud frequencies produce a spectrum peaking well above the default
// detection threshold, quiet ones stay far below it.
type fakeTuner struct {
	mu          sync.Mutex
	current     float64
	tuned       []float64
	loud        map[float64]bool
	failCapture map[float64]bool
	panicTune   bool
}

func (f *fakeTuner) SetFrequency(ctx context.Context, freq float64) error {
	if f.panicTune {
		panic("tuner hardware fault")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = freq
	f.tuned = append(f.tuned, freq)
	return nil
}

func (f *fakeTuner) CaptureSamples(ctx context.Context, numSamples int) ([]complex128, error) {
	f.mu.Lock()
	freq := f.current
	f.mu.Unlock()

	if f.failCapture[freq] {
		return nil, fmt.Errorf("capture failed at %.0f", freq)
	}

	level := 1e-5 // noise floor, about -106dB at DC after windowing
	if f.loud[freq] {
		level = 0.5 // about -12dB at DC
	}

	samples := make([]complex128, numSamples)
	for i := range samples {
		samples[i] = complex(level, 0)
	}
	return samples, nil
}

func (f *fakeTuner) SampleRate() float64 { return 2e6 }

func (f *fakeTuner) tunedFrequencies() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]float64, len(f.tuned))
	copy(out, f.tuned)
	return out
}

func newTestPool(t *testing.T) *dsp.Pool {
	t.Helper()
	pool := dsp.NewPool(dsp.WithWorkerCount(2))
	t.Cleanup(pool.Terminate)
	return pool
}

// testConfig covers the 2m amateur band segment 146.000-146.100 MHz in
// 25 kHz steps, five frequencies in total.
func testConfig() *Config {
	return &Config{
		StartFreq:    146_000_000,
		EndFreq:      146_100_000,
		StepFreq:     25_000,
		SettlingTime: time.Millisecond,
		SampleCount:  64,
	}
}

func testFrequencies() []float64 {
	return []float64{146_000_000, 146_025_000, 146_050_000, 146_075_000, 146_100_000}
}
