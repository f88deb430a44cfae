package dsp

import (
	"errors"
	"math"
	"math/bits"
	"time"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// ErrNoSamples is returned when an FFT is requested over an empty buffer.
var ErrNoSamples = errors.New("no samples to transform")

// Result holds the output of a single spectral transform.
type Result struct {
	Magnitude []float64     // Power per frequency bin in dB
	Phase     []float64     // Phase per frequency bin in radians
	Elapsed   time.Duration // Processing time of the transform
}

// computeSpectrum runs a Hann-windowed FFT over the samples and converts the
// complex output into dB magnitudes and phases. When size is zero, the
// largest power of two that fits the buffer is used; otherwise the buffer is
// truncated to size, which must be a power of two no larger than the buffer.
func computeSpectrum(samples []complex128, size int) (*Result, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	if size == 0 {
		size = 1 << (bits.Len(uint(len(samples))) - 1)
	}
	if size > len(samples) {
		return nil, errors.New("transform size exceeds sample buffer")
	}
	if size&(size-1) != 0 {
		return nil, errors.New("transform size must be a power of two")
	}

	start := time.Now()

	input := make([]complex128, size)
	for i, w := range window.Hann(size) {
		input[i] = samples[i] * complex(w, 0)
	}

	bins := fft.FFT(input)

	magnitude := make([]float64, size)
	phase := make([]float64, size)
	scale := 1 / float64(size)
	for i, bin := range bins {
		mag := max(cmplxAbs(bin)*scale, 1e-12) // clamp to keep log finite
		magnitude[i] = 20 * math.Log10(mag)
		phase[i] = math.Atan2(imag(bin), real(bin))
	}

	return &Result{
		Magnitude: magnitude,
		Phase:     phase,
		Elapsed:   time.Since(start),
	}, nil
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
