package app

import (
	"math"
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/storage"
)

// SpectrumData is the renderable grid built from one session's results:
// one row per scanned frequency, one column per FFT bin.
type SpectrumData struct {
	Width, Height                int
	FrequencyMin, FrequencyMax   float64
	TimestampStart, TimestampEnd time.Time
	Bounds                       PowerBounds
	Rows                         []SpectrumRow
}

// SpectrumRow is one scanned frequency's spectrum.
type SpectrumRow struct {
	Frequency float64
	Bins      []float64
}

// NewSpectrumData folds result rows into a grid and tracks the frequency,
// time and power extents for annotation and color mapping.
func NewSpectrumData(results []*storage.ResultRow) *SpectrumData {
	s := &SpectrumData{
		FrequencyMin: math.MaxFloat64,
		Bounds:       PowerBounds{Min: math.MaxFloat64, Max: -math.MaxFloat64},
	}

	for _, r := range results {
		s.Width = max(s.Width, len(r.Spectrum))
		s.Height++

		s.FrequencyMin = min(s.FrequencyMin, r.Frequency)
		s.FrequencyMax = max(s.FrequencyMax, r.Frequency)

		if s.TimestampStart.IsZero() || s.TimestampStart.After(r.Timestamp) {
			s.TimestampStart = r.Timestamp
		}
		if s.TimestampEnd.IsZero() || s.TimestampEnd.Before(r.Timestamp) {
			s.TimestampEnd = r.Timestamp
		}

		for _, p := range r.Spectrum {
			s.Bounds.Min = min(s.Bounds.Min, p)
			s.Bounds.Max = max(s.Bounds.Max, p)
		}

		s.Rows = append(s.Rows, SpectrumRow{Frequency: r.Frequency, Bins: r.Spectrum})
	}

	return s
}
