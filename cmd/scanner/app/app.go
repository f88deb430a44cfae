package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/spectrum-scanner/internal/detect"
	"github.com/roman-kulish/spectrum-scanner/internal/dsp"
	"github.com/roman-kulish/spectrum-scanner/internal/scan"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr"
	"github.com/roman-kulish/spectrum-scanner/internal/sdr/sim"
	"github.com/roman-kulish/spectrum-scanner/internal/storage"
)

const (
	storageDir          = "data"
	defaultMaxBatchSize = 100
	deviceName          = "sim"
)

// Run executes one configured scan end to end: it builds the worker pool,
// scan manager and simulated tuner, persists results in batches and returns
// once the scan completes, fails or the context is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer store.Close()

	device, err := sim.New(config.SimDevice())
	if err != nil {
		return fmt.Errorf("creating simulated tuner: %w", err)
	}

	pool := dsp.NewPool(dsp.WithLogger(logger), dsp.WithWorkerCount(config.Pool.Workers))
	defer pool.Terminate()

	options := []func(*scan.Manager){scan.WithLogger(logger)}
	if config.Detection.Enabled {
		detector := detect.NewThresholdDetector(detect.WithLogger(logger))
		if err = detector.Initialize(ctx); err != nil {
			return fmt.Errorf("initializing detector: %w", err)
		}
		options = append(options, scan.WithDetector(detector))
	}

	manager := scan.NewManager(pool, options...)
	defer manager.Destroy()

	batchSize := config.Storage.MaxBatchSize
	if batchSize <= 0 {
		batchSize = defaultMaxBatchSize
	}
	buffer, err := scan.NewResultBuffer(2*batchSize, batchSize)
	if err != nil {
		return fmt.Errorf("creating result buffer: %w", err)
	}

	results := make(chan scan.Result, batchSize)
	done := make(chan error, 1)

	manager.Events().OnProgress(func(e scan.ProgressEvent) {
		logger.Info("scanned frequency",
			slog.String("scanID", e.ScanID),
			slog.String("frequency", humanize.SI(e.CurrentFreq, "Hz")),
			slog.String("peak", fmt.Sprintf("%.1fdB", e.Result.PeakPower)),
			slog.String("progress", fmt.Sprintf("%.0f%%", e.ProgressPct)))

		// Non-blocking: the scan must never stall behind a slow storage
		// flush, and on shutdown nobody is left reading this channel.
		select {
		case results <- e.Result:
		default:
			logger.Warn("result channel full, dropping result",
				slog.Float64("frequency", e.CurrentFreq))
		}
	})
	manager.Events().OnComplete(func(e scan.CompleteEvent) {
		logger.Info("scan complete",
			slog.String("scanID", e.ScanID),
			slog.String("results", humanize.Comma(int64(len(e.Results)))),
			slog.Int("activeFrequencies", len(e.ActiveFrequencies)),
			slog.Duration("elapsed", e.TotalTime))
		done <- nil
	})
	manager.Events().OnError(func(e scan.ErrorEvent) {
		done <- e.Err
	})

	request := config.ScanRequest()
	logScanPlan(logger, request, device)

	scanID, err := manager.StartScan(request, device)
	if err != nil {
		return err
	}

	sessionID, err := store.CreateSession(ctx, scanID, deviceName, request)
	if err != nil {
		manager.StopScan(scanID)
		return fmt.Errorf("creating session: %w", err)
	}

	for {
		select {
		case r := <-results:
			buffer.Insert(r)
			if buffer.IsFull() {
				if err = store.StoreResults(ctx, sessionID, buffer.Flush()); err != nil {
					logger.Error(err.Error())
				}
			}

		case err = <-done:
			drainResults(results, buffer)
			if sErr := store.StoreResults(context.WithoutCancel(ctx), sessionID, buffer.DrainAll()); sErr != nil {
				logger.Error(sErr.Error())
			}
			return err

		case <-ctx.Done():
			manager.StopScan(scanID)
			drainResults(results, buffer)
			if sErr := store.StoreResults(context.WithoutCancel(ctx), sessionID, buffer.DrainAll()); sErr != nil {
				logger.Error(sErr.Error())
			}
			logger.Info("scan aborted, partial results preserved",
				slog.String("scanID", scanID),
				slog.Int64("sessionID", sessionID))
			return nil
		}
	}
}

func logScanPlan(logger *slog.Logger, request *scan.Config, tuner sdr.Tuner) {
	bands := scan.Bands(request, sdr.SampleRateOf(tuner))
	logger.Info("scan plan",
		slog.String("range", fmt.Sprintf("%s - %s",
			humanize.SI(request.StartFreq, "Hz"), humanize.SI(request.EndFreq, "Hz"))),
		slog.String("step", humanize.SI(request.StepFreq, "Hz")),
		slog.Int("frequencies", len(scan.Frequencies(request))),
		slog.Int("bands", len(bands)))
}

func drainResults(results chan scan.Result, buffer *scan.ResultBuffer) {
	for {
		select {
		case r := <-results:
			buffer.Insert(r)
		default:
			return
		}
	}
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	dbPath := filepath.Join(wd, storageDir)
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	}

	if err = os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory '%s': %w", dbPath, err)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("scan_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), nil
}
