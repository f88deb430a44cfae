package scan

// Frequencies builds the base arithmetic scan sequence
// start, start+step, ..., up to and including end. A small tolerance absorbs
// floating point drift so end itself is never dropped.
func Frequencies(c *Config) []float64 {
	n := int((c.EndFreq-c.StartFreq)/c.StepFreq + 1e-9)
	freqs := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		freqs = append(freqs, c.StartFreq+float64(i)*c.StepFreq)
	}
	return freqs
}

// Band is one contiguous batch of plan frequencies that fits inside a single
// capture bandwidth.
type Band struct {
	Low         float64 // Hz, inclusive
	High        float64 // Hz, exclusive
	Frequencies []float64
}

// Center returns the band's center frequency.
func (b *Band) Center() float64 {
	return b.Low + (b.High-b.Low)/2
}

// Bands batches the scan plan into capture bands of one sample-rate width.
// Strategies tune per frequency regardless; the batches size progress
// estimates and storage flush chunks for the range.
func Bands(c *Config, sampleRate float64) []Band {
	freqs := Frequencies(c)
	if len(freqs) == 0 || sampleRate <= 0 {
		return nil
	}

	var bands []Band
	current := Band{Low: freqs[0], High: freqs[0] + sampleRate}
	for _, f := range freqs {
		if f >= current.High {
			bands = append(bands, current)
			current = Band{Low: f, High: f + sampleRate}
		}
		current.Frequencies = append(current.Frequencies, f)
	}

	return append(bands, current)
}
