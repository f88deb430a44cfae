// Package sim implements a deterministic software tuner used for exercising
// the scanning pipeline without hardware. It synthesizes a flat noise floor
// plus a configurable set of carriers, so scans produce stable, repeatable
// spectra.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/sdr"
)

// Carrier describes a synthesized signal present in the simulated air.
type Carrier struct {
	Frequency float64 `yaml:"frequency"` // Center frequency in Hz
	PowerDB   float64 `yaml:"powerDB"`   // Carrier power in dBFS
}

// Config holds the simulated tuner parameters.
type Config struct {
	SampleRate   float64       // Capture sample rate in Hz, default 2 MHz
	NoiseFloorDB float64       // Noise floor in dBFS, default -90
	TuneDelay    time.Duration // Simulated retune latency, default 0
	Seed         int64         // Noise generator seed, default 1
	Carriers     []Carrier
}

// Device is a simulated sdr.Tuner.
type Device struct {
	cfg Config

	mu   sync.Mutex
	freq float64
	rng  *rand.Rand
}

// New creates a simulated tuner, applying defaults for zero-valued fields.
func New(cfg *Config) (*Device, error) {
	c := *cfg
	if c.SampleRate == 0 {
		c.SampleRate = sdr.DefaultSampleRate
	}
	if c.SampleRate < 0 {
		return nil, fmt.Errorf("invalid sample rate: %f", c.SampleRate)
	}
	if c.NoiseFloorDB == 0 {
		c.NoiseFloorDB = -90
	}
	if c.Seed == 0 {
		c.Seed = 1
	}

	return &Device{
		cfg: c,
		rng: rand.New(rand.NewSource(c.Seed)),
	}, nil
}

// SetFrequency retunes the simulated front end.
func (d *Device) SetFrequency(ctx context.Context, hz float64) error {
	if hz <= 0 {
		return fmt.Errorf("invalid frequency: %f", hz)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.cfg.TuneDelay > 0 {
		select {
		case <-time.After(d.cfg.TuneDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.mu.Lock()
	d.freq = hz
	d.mu.Unlock()
	return nil
}

// CaptureSamples synthesizes count IQ samples at the current frequency:
// white noise at the configured floor plus every carrier that falls inside
// the capture bandwidth, mixed down to its baseband offset.
func (d *Device) CaptureSamples(ctx context.Context, count int) ([]complex128, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid sample count: %d", count)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.freq == 0 {
		return nil, fmt.Errorf("tuner has not been tuned")
	}

	noiseAmp := dbToAmplitude(d.cfg.NoiseFloorDB)
	samples := make([]complex128, count)
	for i := range samples {
		samples[i] = complex(d.rng.NormFloat64()*noiseAmp, d.rng.NormFloat64()*noiseAmp)
	}

	halfBand := d.cfg.SampleRate / 2
	for _, c := range d.cfg.Carriers {
		offset := c.Frequency - d.freq
		if math.Abs(offset) >= halfBand {
			continue
		}

		amp := dbToAmplitude(c.PowerDB)
		omega := 2 * math.Pi * offset / d.cfg.SampleRate
		for i := range samples {
			phase := omega * float64(i)
			samples[i] += complex(amp*math.Cos(phase), amp*math.Sin(phase))
		}
	}

	return samples, nil
}

// SampleRate reports the configured capture sample rate.
func (d *Device) SampleRate() float64 { return d.cfg.SampleRate }

// Frequency reports the current tuned frequency, 0 if never tuned.
func (d *Device) Frequency() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.freq
}

func dbToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}
