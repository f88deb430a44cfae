package scan

import "testing"

func TestFrequencies(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []float64
	}{
		{
			name: "aligned range includes end",
			cfg:  Config{StartFreq: 146_000_000, EndFreq: 146_100_000, StepFreq: 25_000},
			want: []float64{146_000_000, 146_025_000, 146_050_000, 146_075_000, 146_100_000},
		},
		{
			name: "single frequency",
			cfg:  Config{StartFreq: 100e6, EndFreq: 100e6, StepFreq: 25_000},
			want: []float64{100e6},
		},
		{
			name: "unaligned end is not overshot",
			cfg:  Config{StartFreq: 100_000_000, EndFreq: 100_090_000, StepFreq: 40_000},
			want: []float64{100_000_000, 100_040_000, 100_080_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Frequencies(&tt.cfg)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d frequencies %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("freqs[%d] = %.0f, want %.0f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBands(t *testing.T) {
	cfg := Config{StartFreq: 100e6, EndFreq: 110e6, StepFreq: 1e6}
	bands := Bands(&cfg, 2.5e6)

	if len(bands) == 0 {
		t.Fatal("expected at least one band")
	}

	var covered int
	for i, b := range bands {
		if len(b.Frequencies) == 0 {
			t.Errorf("band %d is empty", i)
		}
		if b.High-b.Low != 2.5e6 {
			t.Errorf("band %d spans %.0f Hz, want one sample rate", i, b.High-b.Low)
		}
		for _, f := range b.Frequencies {
			if f < b.Low || f >= b.High {
				t.Errorf("band %d: frequency %.0f outside [%.0f, %.0f)", i, f, b.Low, b.High)
			}
		}
		if center := b.Center(); center <= b.Low || center >= b.High {
			t.Errorf("band %d: center %.0f outside its bounds", i, center)
		}
		covered += len(b.Frequencies)
	}

	if want := len(Frequencies(&cfg)); covered != want {
		t.Errorf("bands cover %d frequencies, want all %d", covered, want)
	}
}

func TestBands_Degenerate(t *testing.T) {
	cfg := Config{StartFreq: 100e6, EndFreq: 110e6, StepFreq: 1e6}
	if got := Bands(&cfg, 0); got != nil {
		t.Errorf("Bands with zero sample rate = %v, want nil", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{StartFreq: 146e6, EndFreq: 146.1e6, StepFreq: 25e3}, false},
		{"zero start", Config{EndFreq: 146e6, StepFreq: 25e3}, true},
		{"zero end", Config{StartFreq: 146e6, StepFreq: 25e3}, true},
		{"inverted range", Config{StartFreq: 146.1e6, EndFreq: 146e6, StepFreq: 25e3}, true},
		{"zero step", Config{StartFreq: 146e6, EndFreq: 146.1e6}, true},
		{"negative step", Config{StartFreq: 146e6, EndFreq: 146.1e6, StepFreq: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := (&Config{StartFreq: 146e6, EndFreq: 146.1e6, StepFreq: 25e3}).withDefaults()

	if cfg.SettlingTime != DefaultSettlingTime {
		t.Errorf("SettlingTime = %v, want %v", cfg.SettlingTime, DefaultSettlingTime)
	}
	if cfg.SampleCount != DefaultSampleCount {
		t.Errorf("SampleCount = %d, want %d", cfg.SampleCount, DefaultSampleCount)
	}
	if cfg.DetectionThreshold != DefaultDetectionThreshold {
		t.Errorf("DetectionThreshold = %f, want %f", cfg.DetectionThreshold, DefaultDetectionThreshold)
	}
}
