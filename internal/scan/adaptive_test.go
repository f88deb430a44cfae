package scan

import (
	"context"
	"testing"
)

func TestAdaptive_BaseSweepWithoutInterest(t *testing.T) {
	tuner := &fakeTuner{}
	strategy := NewAdaptive(newTestPool(t), nil)

	results, err := strategy.Scan(context.Background(), tuner, testConfig(), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != len(testFrequencies()) {
		t.Errorf("got %d results, want %d base frequencies", len(results), len(testFrequencies()))
	}
}

func TestAdaptive_RefinesLearnedFrequencies(t *testing.T) {
	loud := 146_050_000.0
	tuner := &fakeTuner{loud: map[float64]bool{loud: true}}
	strategy := NewAdaptive(newTestPool(t), nil)
	cfg := testConfig()

	// First pass learns; no refinement yet.
	first, err := strategy.Scan(context.Background(), tuner, cfg, nil)
	if err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	if len(first) != len(testFrequencies()) {
		t.Fatalf("first pass: got %d results, want %d", len(first), len(testFrequencies()))
	}

	// Second pass inserts the three step/4 points after the loud frequency.
	second, err := strategy.Scan(context.Background(), tuner, cfg, nil)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if want := len(testFrequencies()) + 3; len(second) != want {
		t.Fatalf("second pass: got %d results, want %d", len(second), want)
	}

	visited := make(map[float64]bool, len(second))
	for _, r := range second {
		visited[r.Frequency] = true
	}
	for _, sub := range []float64{146_056_250, 146_062_500, 146_068_750} {
		if !visited[sub] {
			t.Errorf("refinement frequency %.0f was not scanned", sub)
		}
	}
}

func TestAdaptive_RefinementStopsAtRangeEnd(t *testing.T) {
	loud := 146_100_000.0 // end of range, no room to refine past it
	tuner := &fakeTuner{loud: map[float64]bool{loud: true}}
	strategy := NewAdaptive(newTestPool(t), nil)
	cfg := testConfig()

	if _, err := strategy.Scan(context.Background(), tuner, cfg, nil); err != nil {
		t.Fatalf("first Scan: %v", err)
	}

	second, err := strategy.Scan(context.Background(), tuner, cfg, nil)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if len(second) != len(testFrequencies()) {
		t.Errorf("got %d results, refinement must not extend past the range end", len(second))
	}
	for _, r := range second {
		if r.Frequency > cfg.EndFreq {
			t.Errorf("scanned %.0f beyond end frequency %.0f", r.Frequency, cfg.EndFreq)
		}
	}
}

func TestAdaptive_Reset(t *testing.T) {
	loud := 146_050_000.0
	tuner := &fakeTuner{loud: map[float64]bool{loud: true}}
	strategy := NewAdaptive(newTestPool(t), nil)
	cfg := testConfig()

	if _, err := strategy.Scan(context.Background(), tuner, cfg, nil); err != nil {
		t.Fatalf("first Scan: %v", err)
	}

	strategy.Reset()

	results, err := strategy.Scan(context.Background(), tuner, cfg, nil)
	if err != nil {
		t.Fatalf("Scan after Reset: %v", err)
	}
	if len(results) != len(testFrequencies()) {
		t.Errorf("got %d results after Reset, want %d base frequencies", len(results), len(testFrequencies()))
	}
}
