package project_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/pkg/activity"
	"github.com/goliatone/go-assets/pkg/config"
	"github.com/goliatone/go-assets/pkg/logging"
	"github.com/goliatone/go-assets/pkg/project"
	"github.com/goliatone/go-assets/resources"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func observedLogger() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return logging.FromZap(zap.New(core)), logs
}

func TestOpenScanQuery(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Assets", "wood.png"), 64, 64)
	writePNG(t, filepath.Join(root, "Assets", "icons", "tiny.png"), 4, 4)
	if err := os.WriteFile(filepath.Join(root, config.DefaultFileName), []byte("query:\n  engine: cel\nactivity:\n  actor: editor\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logger, logs := observedLogger()
	capture := &activity.CaptureHook{}
	p, err := project.Open(root,
		project.WithConfigOptions(config.WithEnviron(nil)),
		project.WithLogger(logger),
		project.WithHooks(capture),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()

	ctx := context.Background()
	report, err := p.Scan(ctx)
	if err != nil || report.Err() != nil {
		t.Fatalf("scan: %v %v", err, report.Err())
	}
	if len(report.Imported) != 2 {
		t.Fatalf("expected 2 imports, got %+v", report)
	}

	matches, err := p.Query(ctx, `kind == "Texture" && props.width > 10`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].FilePath() != "Assets/wood.png" {
		t.Fatalf("unexpected matches %v", matches)
	}

	for _, event := range capture.Events {
		if event.ActorID != "editor" || event.Channel != activity.DefaultChannel {
			t.Fatalf("unexpected event %+v", event)
		}
	}
	if logs.FilterMessage("project opened").Len() != 1 {
		t.Fatalf("expected open to be logged")
	}
	if _, err := os.Stat(filepath.Join(root, "Meta")); err != nil {
		t.Fatalf("expected Meta directory: %v", err)
	}
}

func TestReopenRestoresSameIdentities(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Assets", "wood.png"), 8, 8)
	ctx := context.Background()
	logger, _ := observedLogger()

	first, err := project.Open(root, project.WithConfigOptions(config.WithEnviron(nil)), project.WithLogger(logger))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := first.Scan(ctx); err != nil {
		t.Fatalf("scan: %v", err)
	}
	id := first.Cache.Index().IDOf("Assets/wood.png")
	first.Close()

	second, err := project.Open(root, project.WithConfigOptions(config.WithEnviron(nil)), project.WithLogger(logger))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	report, err := second.Scan(ctx)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(report.Restored) != 1 || report.Restored[0] != id {
		t.Fatalf("expected %s restored, got %+v", id, report)
	}
	texture, ok, err := assets.GetAs[*resources.Texture](second.Cache, id)
	if err != nil || !ok || texture.Width != 8 {
		t.Fatalf("unexpected restored texture ok=%v err=%v", ok, err)
	}
}

func TestOpenUploadsRestoredTextures(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Assets", "wood.png"), 8, 8)
	ctx := context.Background()
	logger, _ := observedLogger()
	open := func(upload resources.Uploader) *project.Project {
		p, err := project.Open(root,
			project.WithConfigOptions(config.WithEnviron(nil)),
			project.WithLogger(logger),
			project.WithResourceOptions(resources.WithTextureUploader(upload, nil)),
		)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		return p
	}

	first := open(func(context.Context, *resources.Texture) (uint32, error) { return 1, nil })
	if _, err := first.Scan(ctx); err != nil {
		t.Fatalf("scan: %v", err)
	}
	first.Close()

	var uploaded []string
	second := open(func(_ context.Context, texture *resources.Texture) (uint32, error) {
		uploaded = append(uploaded, texture.FilePath())
		return 7, nil
	})
	defer second.Close()
	if _, err := second.Scan(ctx); err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(uploaded) != 1 || uploaded[0] != "Assets/wood.png" {
		t.Fatalf("expected restore to upload wood.png, got %v", uploaded)
	}
}

func TestOpenRejectsUnavailableEngine(t *testing.T) {
	root := t.TempDir()
	logger, _ := observedLogger()
	_, err := project.Open(root,
		project.WithConfigOptions(config.WithEnviron([]string{"ASSETS_QUERY_ENGINE=js"})),
		project.WithLogger(logger),
	)
	if err == nil {
		// Built with js_eval; the engine is available.
		return
	}
	if !errors.Is(err, project.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestOpenWithFunctions(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Assets", "Wood.png"), 2, 2)
	logger, _ := observedLogger()
	registry := assets.NewFunctionRegistry()
	if err := registry.Register("lower", func(args ...any) (any, error) {
		return strings.ToLower(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	p, err := project.Open(root,
		project.WithConfigOptions(config.WithEnviron(nil)),
		project.WithLogger(logger),
		project.WithFunctions(registry),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()
	if _, err := p.Scan(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}
	matches, err := p.Query(context.Background(), `call("lower", name) == "wood"`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}
}
