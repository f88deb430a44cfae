package sdr

import "context"

// DefaultSampleRate is assumed when a tuner does not report its sample rate.
const DefaultSampleRate = 2_000_000 // Hz

// Tuner is the narrow capability interface the scanning strategies drive.
// It exposes exactly what a scan needs from a receiver: retuning, IQ capture
// and the capture sample rate. Per-hardware adapters implement this interface.
//
// A Tuner models a single physical front end. Strategies never tune it
// concurrently within one scan; mutual exclusion across scans sharing one
// tuner is the caller's responsibility.
type Tuner interface {
	// SetFrequency retunes the receiver to the given center frequency in Hz.
	SetFrequency(ctx context.Context, hz float64) error

	// CaptureSamples reads count IQ samples at the current frequency.
	// The returned buffer is owned by the caller.
	CaptureSamples(ctx context.Context, count int) ([]complex128, error)

	// SampleRate reports the capture sample rate in Hz, or 0 if unknown.
	SampleRate() float64
}

// SampleRateOf returns the tuner's sample rate, falling back to
// DefaultSampleRate when the tuner does not report one.
func SampleRateOf(t Tuner) float64 {
	if sr := t.SampleRate(); sr > 0 {
		return sr
	}
	return DefaultSampleRate
}
