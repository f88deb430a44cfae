package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/spectrum-scanner/internal/storage"
)

// Run renders one stored scan session into an image file.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	results, err := store.Results(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading results: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("session %d has no results", config.SessionID)
	}

	spec := NewSpectrumData(results)
	if config.MinPower != nil {
		spec.Bounds.Min = *config.MinPower
	}
	if config.MaxPower != nil {
		spec.Bounds.Max = *config.MaxPower
	}

	logger.Info("loaded session",
		slog.String("scanID", session.ScanID),
		slog.String("strategy", session.Strategy),
		slog.String("results", humanize.Comma(int64(len(results)))),
		slog.String("minPower", fmt.Sprintf("%.1fdB", spec.Bounds.Min)),
		slog.String("maxPower", fmt.Sprintf("%.1fdB", spec.Bounds.Max)))

	renderer := NewSpectrogramRenderer(RenderConfig{
		Title: fmt.Sprintf("%s (%s), %s - %s",
			session.ScanID, session.Strategy,
			humanize.SI(session.StartFreq, "Hz"), humanize.SI(session.EndFreq, "Hz")),
		NoAnnotations: config.NoAnnotations,
	})

	logger.Info("rendering spectrogram",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", spec.Width),
			slog.Int("height", spec.Height),
		))

	img, err := renderer.Render(spec)
	if err != nil {
		return fmt.Errorf("rendering spectrogram: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
