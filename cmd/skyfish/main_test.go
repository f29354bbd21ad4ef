package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/skyfish/internal/config"
	"github.com/taigrr/skyfish/internal/game"
	"github.com/taigrr/skyfish/pkg/models"
)

func newTestApp(t *testing.T, start string) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Game.StartScene = start
	a, err := newApp(cfg, 64, 48)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.destroy)
	return a
}

func TestHeadlessCapture(t *testing.T) {
	a := newTestApp(t, game.StageSceneName)
	cc := config.CaptureConfig{Frames: 5, Every: 2, OutDir: filepath.Join(t.TempDir(), "frames")}

	written, err := runHeadless(context.Background(), a, cc)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 3 {
		t.Fatalf("wrote %v, want frames 0, 2 and 4", written)
	}
	for _, path := range written {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("%s: %v", path, err)
		}
	}
	if a.r.LastFlush.Drawn == 0 {
		t.Error("nothing drawn")
	}
}

func TestHeadlessCanceled(t *testing.T) {
	a := newTestApp(t, game.CrateSceneName)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := runHeadless(ctx, a, config.CaptureConfig{Frames: 10, Every: 1, OutDir: t.TempDir()})
	if err != nil || len(written) != 0 {
		t.Errorf("canceled capture wrote %v, err %v", written, err)
	}
}

func TestNewAppUnknownScene(t *testing.T) {
	cfg := config.Default()
	cfg.Game.StartScene = "credits"
	if _, err := newApp(cfg, 64, 48); err == nil {
		t.Error("expected an error for an unknown start scene")
	}
}

func TestWriteCube(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.mesh")
	if err := writeCube(path); err != nil {
		t.Fatal(err)
	}
	m, err := models.LoadMesh(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("cube has %d triangles", m.TriangleCount())
	}
}
