package storage

import "time"

// Session represents one persisted scan run.
type Session struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"startTime"`
	ScanID    string    `json:"scanID"`    // Manager-allocated id, e.g. "scan-3"
	Device    string    `json:"device"`    // Tuner description
	Strategy  string    `json:"strategy"`  // Strategy kind used
	StartFreq float64   `json:"startFreq"` // Hz
	EndFreq   float64   `json:"endFreq"`   // Hz
	StepFreq  float64   `json:"stepFreq"`  // Hz
	Config    *string   `json:"config,omitempty"` // Full scan config as JSON
}

// ResultRow is one persisted frequency measurement.
type ResultRow struct {
	ID           int64     `json:"id"`
	SessionID    int64     `json:"sessionID"`
	Timestamp    time.Time `json:"timestamp"`
	Frequency    float64   `json:"frequency"`    // Hz
	PeakPower    float64   `json:"peakPower"`    // dB
	AveragePower float64   `json:"averagePower"` // dB
	NumBins      int       `json:"numBins"`
	Spectrum     []float64 `json:"spectrum"` // dB per bin
}
