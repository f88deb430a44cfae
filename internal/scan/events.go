package scan

import (
	"sync"
	"time"
)

// ProgressEvent is published after every successfully scanned frequency.
type ProgressEvent struct {
	ScanID       string
	CurrentFreq  float64
	TotalFreqs   int // estimated, see Config.EstimatedSteps
	ScannedFreqs int
	ProgressPct  float64
	Result       Result
}

// CompleteEvent is published when a scan finishes without cancellation.
type CompleteEvent struct {
	ScanID            string
	Results           []Result
	TotalTime         time.Duration
	ActiveFrequencies []float64 // frequencies whose peak exceeded the threshold
}

// ErrorEvent is published when a strategy fails for a reason other than
// cancellation.
type ErrorEvent struct {
	ScanID string
	Err    error
}

// Notifier is a typed observer registry for scan notifications. Callbacks
// are invoked synchronously on the publishing goroutine, in registration
// order; slow observers delay the scan that published the event.
type Notifier struct {
	mu         sync.RWMutex
	onProgress []func(ProgressEvent)
	onComplete []func(CompleteEvent)
	onError    []func(ErrorEvent)
}

// OnProgress registers an observer for progress notifications.
func (n *Notifier) OnProgress(fn func(ProgressEvent)) {
	n.mu.Lock()
	n.onProgress = append(n.onProgress, fn)
	n.mu.Unlock()
}

// OnComplete registers an observer for completion notifications.
func (n *Notifier) OnComplete(fn func(CompleteEvent)) {
	n.mu.Lock()
	n.onComplete = append(n.onComplete, fn)
	n.mu.Unlock()
}

// OnError registers an observer for error notifications.
func (n *Notifier) OnError(fn func(ErrorEvent)) {
	n.mu.Lock()
	n.onError = append(n.onError, fn)
	n.mu.Unlock()
}

func (n *Notifier) publishProgress(e ProgressEvent) {
	n.mu.RLock()
	observers := n.onProgress
	n.mu.RUnlock()

	for _, fn := range observers {
		fn(e)
	}
}

func (n *Notifier) publishComplete(e CompleteEvent) {
	n.mu.RLock()
	observers := n.onComplete
	n.mu.RUnlock()

	for _, fn := range observers {
		fn(e)
	}
}

func (n *Notifier) publishError(e ErrorEvent) {
	n.mu.RLock()
	observers := n.onError
	n.mu.RUnlock()

	for _, fn := range observers {
		fn(e)
	}
}
