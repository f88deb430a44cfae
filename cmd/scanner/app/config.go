package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/spectrum-scanner/internal/scan"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr/sim"
)

// Config represents the main application configuration
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Device    DeviceConfig    `yaml:"device"`
	Pool      PoolConfig      `yaml:"pool"`
	Detection DetectionConfig `yaml:"detection"`
	Storage   StorageConfig   `yaml:"storage"`
	Scan      ScanConfig      `yaml:"scan"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// DeviceConfig configures the simulated tuner.
type DeviceConfig struct {
	SampleRate   float64       `yaml:"sampleRate"`
	NoiseFloorDB float64       `yaml:"noiseFloorDB"`
	TuneDelayMs  int           `yaml:"tuneDelayMs"`
	Seed         int64         `yaml:"seed"`
	Carriers     []sim.Carrier `yaml:"carriers"`
}

// PoolConfig configures the FFT worker pool.
type PoolConfig struct {
	Workers int `yaml:"workers"` // 0 selects hardware parallelism
}

// DetectionConfig toggles the signal-detection collaborator.
type DetectionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// ScanConfig is the yaml shape of one scan request. Durations are
// milliseconds; zero values take the scan package defaults.
type ScanConfig struct {
	StartFreq           float64   `yaml:"startFreq"`
	EndFreq             float64   `yaml:"endFreq"`
	Step                float64   `yaml:"step"`
	Strategy            string    `yaml:"strategy"`
	SettlingTimeMs      int       `yaml:"settlingTimeMs"`
	SampleCount         int       `yaml:"sampleCount"`
	PriorityFrequencies []float64 `yaml:"priorityFrequencies"`
	DetectionThreshold  float64   `yaml:"detectionThreshold"`
}

// LoadConfig reads and parses the yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &config, nil
}

// LogLevel parses the configured log level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Settings.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ScanRequest converts the yaml scan section into a scan.Config.
func (c *Config) ScanRequest() *scan.Config {
	return &scan.Config{
		StartFreq:           c.Scan.StartFreq,
		EndFreq:             c.Scan.EndFreq,
		StepFreq:            c.Scan.Step,
		Strategy:            scan.StrategyKind(c.Scan.Strategy),
		SettlingTime:        time.Duration(c.Scan.SettlingTimeMs) * time.Millisecond,
		SampleCount:         c.Scan.SampleCount,
		PriorityFrequencies: c.Scan.PriorityFrequencies,
		DetectionThreshold:  c.Scan.DetectionThreshold,
	}
}

// SimDevice converts the yaml device section into a sim.Config.
func (c *Config) SimDevice() *sim.Config {
	return &sim.Config{
		SampleRate:   c.Device.SampleRate,
		NoiseFloorDB: c.Device.NoiseFloorDB,
		TuneDelay:    time.Duration(c.Device.TuneDelayMs) * time.Millisecond,
		Seed:         c.Device.Seed,
		Carriers:     c.Device.Carriers,
	}
}
