package scan

import (
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/detect"
)

// Result is the outcome of scanning one frequency: its power spectrum and
// the derived statistics. Results are immutable after creation.
type Result struct {
	Frequency    float64         // Center frequency in Hz
	Timestamp    time.Time       // When the capture completed
	Spectrum     []float64       // Power per FFT bin in dB
	PeakPower    float64         // Max of Spectrum in dB
	AveragePower float64         // Arithmetic mean of Spectrum in dB
	Signals      []detect.Signal // Optional classified signals
}

// newResult computes the spectrum statistics for one scanned frequency.
func newResult(freq float64, spectrum []float64) Result {
	r := Result{
		Frequency: freq,
		Timestamp: time.Now(),
		Spectrum:  spectrum,
	}
	if len(spectrum) == 0 {
		return r
	}

	peak := spectrum[0]
	var sum float64
	for _, p := range spectrum {
		if p > peak {
			peak = p
		}
		sum += p
	}

	r.PeakPower = peak
	r.AveragePower = sum / float64(len(spectrum))
	return r
}
