package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taigrr/skyfish/internal/config"
	"github.com/taigrr/skyfish/internal/logger"
	"go.uber.org/zap"
)

// runHeadless renders cc.Frames frames at a fixed 60 Hz step and writes
// every cc.Every-th frame, plus the last, as a PNG under cc.OutDir. It
// returns the files written.
func runHeadless(ctx context.Context, a *app, cc config.CaptureConfig) ([]string, error) {
	log := logger.Named("headless")
	if err := os.MkdirAll(cc.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}

	var written []string
	for i := range cc.Frames {
		if err := ctx.Err(); err != nil {
			return written, nil
		}
		if err := a.frame(1); err != nil {
			return written, err
		}

		last := i == cc.Frames-1
		if !last && (cc.Every <= 0 || i%cc.Every != 0) {
			continue
		}
		path := filepath.Join(cc.OutDir, fmt.Sprintf("frame_%04d.png", i))
		if err := a.r.Framebuffer().SavePNG(path, nil); err != nil {
			return written, err
		}
		written = append(written, path)
		log.Debug("frame written", zap.String("path", path), zap.Int("drawn", a.r.LastFlush.Drawn))
	}

	log.Info("capture done", zap.Int("frames", cc.Frames), zap.Int("written", len(written)))
	return written, nil
}
