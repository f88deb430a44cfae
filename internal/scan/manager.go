package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/detect"
	"github.com/roman-kulish/spectrum-scanner/internal/dsp"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr"
)

// WithLogger sets the logger for the manager and its strategies.
func WithLogger(logger *slog.Logger) func(*Manager) {
	return func(m *Manager) {
		m.logger = logger.With(slog.String("component", "scan-manager"))
	}
}

// WithDetector attaches a detection collaborator. Spectra are forwarded to
// it after every scanned frequency; its output is not consumed by the
// manager. The manager takes ownership and closes it on Destroy.
func WithDetector(d detect.Detector) func(*Manager) {
	return func(m *Manager) {
		m.detector = d
	}
}

// activeScan is the mutable runtime record of one running scan, owned
// exclusively by the manager.
type activeScan struct {
	id     string
	cfg    Config
	cancel context.CancelFunc

	mu        sync.Mutex
	results   []Result
	startTime time.Time
	total     int
	scanned   int
}

// Manager owns scan lifecycle: id allocation, strategy selection, progress
// tracking and notifications. Scans run asynchronously against the shared
// worker pool; multiple scans may run concurrently and contend for its
// workers.
type Manager struct {
	pool     *dsp.Pool
	detector detect.Detector
	logger   *slog.Logger
	notifier Notifier

	mu         sync.Mutex
	scans      map[string]*activeScan
	strategies map[StrategyKind]Strategy

	seq atomic.Int64
	wg  sync.WaitGroup
}

// NewManager creates a scan manager on top of the given worker pool.
func NewManager(pool *dsp.Pool, options ...func(*Manager)) *Manager {
	m := &Manager{
		pool:       pool,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
		scans:      make(map[string]*activeScan),
		strategies: make(map[StrategyKind]Strategy),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// Events exposes the notification registry for observers.
func (m *Manager) Events() *Notifier { return &m.notifier }

// StartScan validates the config, registers a new scan and launches its
// strategy asynchronously. It returns the allocated scan id immediately.
// Unknown strategy kinds fall back to linear with a warning.
func (m *Manager) StartScan(config *Config, tuner sdr.Tuner) (string, error) {
	if err := config.Validate(); err != nil {
		return "", fmt.Errorf("invalid scan config: %w", err)
	}

	cfg := config.withDefaults()
	id := fmt.Sprintf("scan-%d", m.seq.Add(1))

	ctx, cancel := context.WithCancel(context.Background())
	as := &activeScan{
		id:        id,
		cfg:       cfg,
		cancel:    cancel,
		startTime: time.Now(),
		total:     cfg.EstimatedSteps(),
	}

	m.mu.Lock()
	strategy, known := m.strategies[cfg.Strategy]
	if !known {
		var recognized bool
		strategy, recognized = NewStrategy(cfg.Strategy, m.pool, m.logger)
		if !recognized {
			m.logger.Warn("unknown strategy, falling back to linear",
				slog.String("strategy", string(cfg.Strategy)))
		}
		// Cache per kind so stateful strategies keep learned state across scans.
		m.strategies[cfg.Strategy] = strategy
	}
	m.scans[id] = as
	m.mu.Unlock()

	m.logger.Info("starting scan",
		slog.String("scanID", id),
		slog.String("strategy", string(cfg.Strategy)),
		slog.Float64("startFreq", cfg.StartFreq),
		slog.Float64("endFreq", cfg.EndFreq),
		slog.Float64("step", cfg.StepFreq))

	m.wg.Add(1)
	go m.run(ctx, as, strategy, tuner)

	return id, nil
}

// StopScan signals cancellation and removes the scan from the registry.
// Stopping an unknown id is a no-op. Aborting is best-effort: the frequency
// in flight completes, no new one starts.
func (m *Manager) StopScan(id string) {
	m.mu.Lock()
	as, ok := m.scans[id]
	if ok {
		delete(m.scans, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	as.cancel()
	m.logger.Info("scan stopped", slog.String("scanID", id))
}

// Results returns a snapshot of the results accumulated by a running scan,
// or nil for an unknown id.
func (m *Manager) Results(id string) []Result {
	m.mu.Lock()
	as, ok := m.scans[id]
	m.mu.Unlock()

	if !ok {
		return nil
	}

	as.mu.Lock()
	defer as.mu.Unlock()
	out := make([]Result, len(as.results))
	copy(out, as.results)
	return out
}

// ActiveScans returns the ids of all scans currently registered.
func (m *Manager) ActiveScans() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.scans))
	for id := range m.scans {
		ids = append(ids, id)
	}
	return ids
}

// IsScanning reports whether the given scan id is registered and running.
func (m *Manager) IsScanning(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.scans[id]
	return ok
}

// Destroy stops every active scan, waits for their goroutines to exit and
// tears down the owned detection collaborator.
func (m *Manager) Destroy() {
	m.mu.Lock()
	for id, as := range m.scans {
		as.cancel()
		delete(m.scans, id)
	}
	m.mu.Unlock()

	m.wg.Wait()

	if m.detector != nil {
		if err := m.detector.Close(); err != nil {
			m.logger.Warn("closing detector", slog.String("error", err.Error()))
		}
	}
}

func (m *Manager) run(ctx context.Context, as *activeScan, strategy Strategy, tuner sdr.Tuner) {
	defer m.wg.Done()

	results, err := func() (res []Result, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("strategy panicked: %v", r)
			}
		}()
		return strategy.Scan(ctx, tuner, &as.cfg, func(r Result) {
			m.handleResult(as, tuner, r)
		})
	}()

	switch {
	case err == nil:
		m.completeScan(as, results)

	case errors.Is(err, context.Canceled):
		// Stopped by the caller; the registry entry is already gone and
		// cancellation is not an error, so no notification is published.

	default:
		m.logger.Error("scan failed",
			slog.String("scanID", as.id),
			slog.String("error", err.Error()))
		m.notifier.publishError(ErrorEvent{ScanID: as.id, Err: err})
		m.remove(as.id)
	}
}

// handleResult runs on the strategy goroutine for every scanned frequency:
// it updates progress counters, forwards the spectrum to the detection
// collaborator and publishes a progress notification.
func (m *Manager) handleResult(as *activeScan, tuner sdr.Tuner, r Result) {
	as.mu.Lock()
	as.results = append(as.results, r)
	as.scanned++
	scanned := as.scanned
	as.mu.Unlock()

	if m.detector != nil {
		// Fire and forget; detection output has its own consumers.
		m.detector.DetectSignals(r.Spectrum, sdr.SampleRateOf(tuner), r.Frequency, as.cfg.DetectionThreshold)
	}

	var pct float64
	if as.total > 0 {
		pct = float64(scanned) / float64(as.total) * 100
	}

	m.notifier.publishProgress(ProgressEvent{
		ScanID:       as.id,
		CurrentFreq:  r.Frequency,
		TotalFreqs:   as.total,
		ScannedFreqs: scanned,
		ProgressPct:  pct,
		Result:       r,
	})
}

func (m *Manager) completeScan(as *activeScan, results []Result) {
	var active []float64
	for _, r := range results {
		if r.PeakPower > as.cfg.DetectionThreshold {
			active = append(active, r.Frequency)
		}
	}

	elapsed := time.Since(as.startTime)
	m.logger.Info("scan complete",
		slog.String("scanID", as.id),
		slog.Int("results", len(results)),
		slog.Int("activeFrequencies", len(active)),
		slog.Duration("elapsed", elapsed))

	m.notifier.publishComplete(CompleteEvent{
		ScanID:            as.id,
		Results:           results,
		TotalTime:         elapsed,
		ActiveFrequencies: active,
	})
	m.remove(as.id)
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.scans, id)
	m.mu.Unlock()
}
