// Package detect defines the optional signal-detection collaborator consumed
// by the scan manager and a threshold-based reference implementation.
package detect

import "context"

// Signal is a classified emission found in a power spectrum.
type Signal struct {
	CenterFrequency float64 // Hz
	Bandwidth       float64 // Hz
	PeakPower       float64 // dB
	AveragePower    float64 // dB
	StartBin        int
	EndBin          int
}

// Detector consumes power spectra produced by scans. The scan manager
// forwards spectra fire-and-forget; detection output is for the detector's
// own consumers and is never read back by the scanning core.
type Detector interface {
	// Initialize prepares the detector for use.
	Initialize(ctx context.Context) error

	// DetectSignals classifies emissions in one spectrum. The spectrum covers
	// sampleRate Hz centered on centerFreq; bins below thresholdDB are noise.
	DetectSignals(spectrum []float64, sampleRate, centerFreq, thresholdDB float64) []Signal

	// Close releases detector resources.
	Close() error
}
