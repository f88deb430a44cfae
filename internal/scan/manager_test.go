package scan

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roman-kulish/spectrum-scanner/internal/detect"
)

// fakeDetector counts detection calls and records teardown.
type fakeDetector struct {
	calls  atomic.Int64
	closed atomic.Bool
}

func (d *fakeDetector) Initialize(ctx context.Context) error { return nil }

func (d *fakeDetector) DetectSignals(spectrum []float64, sampleRate, centerFreq, thresholdDB float64) []detect.Signal {
	d.calls.Add(1)
	return nil
}

func (d *fakeDetector) Close() error {
	d.closed.Store(true)
	return nil
}

func newTestManager(t *testing.T, options ...func(*Manager)) *Manager {
	t.Helper()
	m := NewManager(newTestPool(t), options...)
	t.Cleanup(m.Destroy)
	return m
}

func waitEvent[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestManager_StartScanAllocatesDistinctIDs(t *testing.T) {
	m := newTestManager(t)

	complete := make(chan CompleteEvent, 2)
	m.Events().OnComplete(func(e CompleteEvent) { complete <- e })

	id1, err := m.StartScan(testConfig(), &fakeTuner{})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	id2, err := m.StartScan(testConfig(), &fakeTuner{})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	if id1 == "" || id2 == "" || id1 == id2 {
		t.Errorf("scan ids must be unique and non-empty, got %q and %q", id1, id2)
	}

	done := map[string]bool{}
	for i := 0; i < 2; i++ {
		e := waitEvent(t, complete, "completion")
		done[e.ScanID] = true
	}
	if !done[id1] || !done[id2] {
		t.Errorf("completions published for %v, want both %q and %q", done, id1, id2)
	}
}

func TestManager_InvalidConfigRejected(t *testing.T) {
	m := newTestManager(t)

	id, err := m.StartScan(&Config{StartFreq: 146e6, EndFreq: 144e6, StepFreq: 25e3}, &fakeTuner{})
	if err == nil {
		t.Fatal("expected error for inverted frequency range")
	}
	if id != "" {
		t.Errorf("id = %q for rejected scan, want empty", id)
	}
	if scans := m.ActiveScans(); len(scans) != 0 {
		t.Errorf("ActiveScans = %v after rejected start, want none", scans)
	}
}

func TestManager_CompleteEvent(t *testing.T) {
	loud := 146_050_000.0
	m := newTestManager(t)

	complete := make(chan CompleteEvent, 1)
	m.Events().OnComplete(func(e CompleteEvent) { complete <- e })

	id, err := m.StartScan(testConfig(), &fakeTuner{loud: map[float64]bool{loud: true}})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	e := waitEvent(t, complete, "completion")
	if e.ScanID != id {
		t.Errorf("ScanID = %q, want %q", e.ScanID, id)
	}
	if len(e.Results) != len(testFrequencies()) {
		t.Errorf("got %d results, want %d", len(e.Results), len(testFrequencies()))
	}
	if len(e.ActiveFrequencies) != 1 || e.ActiveFrequencies[0] != loud {
		t.Errorf("ActiveFrequencies = %v, want [%v]", e.ActiveFrequencies, loud)
	}
	if e.TotalTime <= 0 {
		t.Errorf("TotalTime = %v, want positive", e.TotalTime)
	}
	if m.IsScanning(id) {
		t.Error("scan must be deregistered after completion")
	}
}

func TestManager_ProgressEvents(t *testing.T) {
	m := newTestManager(t)

	var mu sync.Mutex
	var events []ProgressEvent
	complete := make(chan CompleteEvent, 1)
	m.Events().OnProgress(func(e ProgressEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	m.Events().OnComplete(func(e CompleteEvent) { complete <- e })

	id, err := m.StartScan(testConfig(), &fakeTuner{})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	waitEvent(t, complete, "completion")

	mu.Lock()
	defer mu.Unlock()

	if len(events) != len(testFrequencies()) {
		t.Fatalf("got %d progress events, want %d", len(events), len(testFrequencies()))
	}
	for i, e := range events {
		if e.ScanID != id {
			t.Errorf("events[%d].ScanID = %q, want %q", i, e.ScanID, id)
		}
		if e.ScannedFreqs != i+1 {
			t.Errorf("events[%d].ScannedFreqs = %d, want %d", i, e.ScannedFreqs, i+1)
		}
		if e.ProgressPct <= 0 {
			t.Errorf("events[%d].ProgressPct = %f, want positive", i, e.ProgressPct)
		}
		if e.CurrentFreq != testFrequencies()[i] {
			t.Errorf("events[%d].CurrentFreq = %.0f, want %.0f", i, e.CurrentFreq, testFrequencies()[i])
		}
	}
}

func TestManager_StopScan(t *testing.T) {
	m := newTestManager(t)

	progress := make(chan ProgressEvent, 256)
	complete := make(chan CompleteEvent, 1)
	m.Events().OnProgress(func(e ProgressEvent) { progress <- e })
	m.Events().OnComplete(func(e CompleteEvent) { complete <- e })

	// A long scan so it is still running when stopped.
	cfg := &Config{
		StartFreq:    100e6,
		EndFreq:      110e6,
		StepFreq:     100e3,
		SettlingTime: 10 * time.Millisecond,
		SampleCount:  64,
	}
	id, err := m.StartScan(cfg, &fakeTuner{})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	if !m.IsScanning(id) {
		t.Fatal("scan must be registered right after start")
	}

	waitEvent(t, progress, "first progress event")
	m.StopScan(id)

	if m.IsScanning(id) {
		t.Error("scan must be deregistered after StopScan")
	}
	if scans := m.ActiveScans(); len(scans) != 0 {
		t.Errorf("ActiveScans = %v after stop, want none", scans)
	}

	// Cancellation is not completion; no event may arrive.
	select {
	case e := <-complete:
		t.Errorf("unexpected completion event for stopped scan: %+v", e)
	case <-time.After(200 * time.Millisecond):
	}

	// Stopping again is a no-op.
	m.StopScan(id)
}

func TestManager_ResultsSnapshot(t *testing.T) {
	m := newTestManager(t)

	if m.Results("scan-404") != nil {
		t.Error("Results for unknown id must be nil")
	}

	progress := make(chan ProgressEvent, 256)
	m.Events().OnProgress(func(e ProgressEvent) { progress <- e })

	cfg := &Config{
		StartFreq:    100e6,
		EndFreq:      110e6,
		StepFreq:     100e3,
		SettlingTime: 10 * time.Millisecond,
		SampleCount:  64,
	}
	id, err := m.StartScan(cfg, &fakeTuner{})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	defer m.StopScan(id)

	waitEvent(t, progress, "first progress event")

	if results := m.Results(id); len(results) == 0 {
		t.Error("Results must expose accumulated results while scanning")
	}
}

func TestManager_UnknownStrategyFallsBackToLinear(t *testing.T) {
	m := newTestManager(t)

	complete := make(chan CompleteEvent, 1)
	m.Events().OnComplete(func(e CompleteEvent) { complete <- e })

	cfg := testConfig()
	cfg.Strategy = "zigzag"
	if _, err := m.StartScan(cfg, &fakeTuner{}); err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	e := waitEvent(t, complete, "completion")
	if len(e.Results) != len(testFrequencies()) {
		t.Errorf("got %d results, want a full linear sweep of %d", len(e.Results), len(testFrequencies()))
	}
}

func TestManager_ErrorEventDeregistersScan(t *testing.T) {
	m := newTestManager(t)

	errs := make(chan ErrorEvent, 1)
	m.Events().OnError(func(e ErrorEvent) { errs <- e })

	id, err := m.StartScan(testConfig(), &fakeTuner{panicTune: true})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}

	e := waitEvent(t, errs, "error event")
	if e.ScanID != id {
		t.Errorf("ScanID = %q, want %q", e.ScanID, id)
	}
	if e.Err == nil {
		t.Error("error event must carry the failure")
	}
	if m.IsScanning(id) {
		t.Error("failed scan must be removed from the registry")
	}
}

func TestManager_DetectorReceivesEverySpectrum(t *testing.T) {
	detector := &fakeDetector{}
	m := NewManager(newTestPool(t), WithDetector(detector))

	complete := make(chan CompleteEvent, 1)
	m.Events().OnComplete(func(e CompleteEvent) { complete <- e })

	if _, err := m.StartScan(testConfig(), &fakeTuner{}); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	waitEvent(t, complete, "completion")

	if got := detector.calls.Load(); got != int64(len(testFrequencies())) {
		t.Errorf("detector saw %d spectra, want %d", got, len(testFrequencies()))
	}

	m.Destroy()
	if !detector.closed.Load() {
		t.Error("Destroy must close the detector")
	}
}

func TestManager_DestroyStopsActiveScans(t *testing.T) {
	m := NewManager(newTestPool(t))

	cfg := &Config{
		StartFreq:    100e6,
		EndFreq:      110e6,
		StepFreq:     100e3,
		SettlingTime: 10 * time.Millisecond,
		SampleCount:  64,
	}
	for i := 0; i < 3; i++ {
		if _, err := m.StartScan(cfg, &fakeTuner{}); err != nil {
			t.Fatalf("StartScan %d: %v", i, err)
		}
	}

	m.Destroy()

	if scans := m.ActiveScans(); len(scans) != 0 {
		t.Errorf("ActiveScans = %v after Destroy, want none", scans)
	}
}

func TestManager_AdaptiveStateSurvivesAcrossScans(t *testing.T) {
	loud := 146_050_000.0
	m := newTestManager(t)

	complete := make(chan CompleteEvent, 1)
	m.Events().OnComplete(func(e CompleteEvent) { complete <- e })

	cfg := testConfig()
	cfg.Strategy = StrategyAdaptive
	tuner := &fakeTuner{loud: map[float64]bool{loud: true}}

	if _, err := m.StartScan(cfg, tuner); err != nil {
		t.Fatalf("first StartScan: %v", err)
	}
	first := waitEvent(t, complete, "first completion")
	if len(first.Results) != len(testFrequencies()) {
		t.Fatalf("first scan: got %d results, want %d", len(first.Results), len(testFrequencies()))
	}

	// The cached strategy instance keeps its learned interest, so the second
	// scan refines around the loud frequency.
	if _, err := m.StartScan(cfg, tuner); err != nil {
		t.Fatalf("second StartScan: %v", err)
	}
	second := waitEvent(t, complete, "second completion")
	if len(second.Results) <= len(testFrequencies()) {
		t.Errorf("second scan: got %d results, want more than %d after learning", len(second.Results), len(testFrequencies()))
	}
}
