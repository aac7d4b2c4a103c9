package importer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/pkg/activity"
	"github.com/goliatone/go-assets/pkg/decoders"
	"github.com/goliatone/go-assets/pkg/state"
	"github.com/goliatone/go-assets/resources"
)

type project struct {
	root    string
	cache   *assets.Cache
	store   *state.FileStore
	capture *activity.CaptureHook
}

func openProject(t *testing.T, root string) (*project, *Importer) {
	t.Helper()
	types, err := resources.NewTypes()
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	store := state.NewFileStore(filepath.Join(root, "Meta"))
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})
	cache := assets.NewCache(
		assets.WithTypes(types),
		assets.WithStore(store),
		assets.WithActivity(emitter, "importer-test"),
	)
	fsys := os.DirFS(root)
	registry, err := decoders.Default(fsys, CacheResolver(cache))
	if err != nil {
		t.Fatalf("decoders: %v", err)
	}
	imp := New(cache, store, fsys, registry, WithDir("Assets"), WithWorkers(2))
	return &project{root: root, cache: cache, store: store, capture: capture}, imp
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScanImportsThenRestoresWithSameID(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Assets", "wood.png"), 32, 16)
	ctx := context.Background()

	first, imp := openProject(t, root)
	report, err := imp.Scan(ctx)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if err := report.Err(); err != nil {
		t.Fatalf("first scan failures: %v", err)
	}
	if len(report.Imported) != 1 || len(report.Restored) != 0 {
		t.Fatalf("unexpected first report %+v", report)
	}
	id := report.Imported[0]
	if first.cache.Index().PathOf(id) != "Assets/wood.png" {
		t.Fatalf("unexpected indexed path %q", first.cache.Index().PathOf(id))
	}
	if _, err := os.Stat(first.store.Path(id)); err != nil {
		t.Fatalf("expected metadata file: %v", err)
	}
	verbs := first.capture.Verbs()
	want := []string{activity.VerbAdd, activity.VerbSave, activity.VerbImport}
	if len(verbs) != len(want) {
		t.Fatalf("unexpected verbs %v", verbs)
	}
	for n := range want {
		if verbs[n] != want[n] {
			t.Fatalf("unexpected verbs %v", verbs)
		}
	}

	second, imp := openProject(t, root)
	report, err = imp.Scan(ctx)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if len(report.Restored) != 1 || report.Restored[0] != id {
		t.Fatalf("expected %s restored, got %+v", id, report)
	}
	if len(report.Imported) != 0 || len(report.Skipped) != 1 || report.Skipped[0] != "Assets/wood.png" {
		t.Fatalf("unexpected second report %+v", report)
	}
	texture, ok, err := assets.GetAs[*resources.Texture](second.cache, id)
	if err != nil || !ok {
		t.Fatalf("expected restored texture: ok=%v err=%v", ok, err)
	}
	if texture.Width != 32 || texture.Height != 16 || texture.Name() != "wood" {
		t.Fatalf("unexpected restored texture %+v", texture)
	}
}

func TestScanLinksReferencesInDependencyOrder(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Assets", "textures", "crate.png"), 8, 8)
	writeFile(t, filepath.Join(root, "Assets", "crate.mtl"), []byte("newmtl Crate\nKd 1 1 1\nmap_Kd textures/crate.png\n"))
	writeFile(t, filepath.Join(root, "Assets", "crate.obj"), []byte("mtllib crate.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	ctx := context.Background()

	first, imp := openProject(t, root)
	report, err := imp.Scan(ctx)
	if err != nil || report.Err() != nil {
		t.Fatalf("scan: %v %v", err, report.Err())
	}
	if len(report.Imported) != 3 {
		t.Fatalf("expected 3 imports, got %+v", report)
	}
	meshID := first.cache.Index().IDOf("Assets/crate.obj")

	second, imp := openProject(t, root)
	if _, err := imp.Scan(ctx); err != nil {
		t.Fatalf("rescan: %v", err)
	}
	mesh, ok, err := assets.GetAs[*resources.Mesh](second.cache, meshID)
	if err != nil || !ok {
		t.Fatalf("expected mesh: ok=%v err=%v", ok, err)
	}
	if mesh.Material == nil || mesh.Material.DiffuseTex == nil {
		t.Fatalf("expected mesh -> material -> texture chain restored")
	}
	if mesh.Material.DiffuseTex.FilePath() != "Assets/textures/crate.png" {
		t.Fatalf("unexpected texture path %q", mesh.Material.DiffuseTex.FilePath())
	}
}

func TestScanCollectsFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Assets", "broken.png"), []byte("nope"))
	writeFile(t, filepath.Join(root, "Assets", "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(root, "Meta", "garbage.meta"), []byte("{"))

	_, imp := openProject(t, root)
	report, err := imp.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan should not fail on per-file errors: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Path != "Assets/broken.png" {
		t.Fatalf("expected broken.png failure, got %+v", report.Failed)
	}
	if report.Err() == nil {
		t.Fatalf("expected joined error")
	}
}

func TestScanHonoursIgnore(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Assets", ".cache", "thumb.png"), 2, 2)
	writePNG(t, filepath.Join(root, "Assets", "kept.png"), 2, 2)

	p, imp := openProject(t, root)
	imp = New(p.cache, p.store, os.DirFS(root), imp.decoders, WithDir("Assets"), WithIgnore(func(name string) bool {
		return filepath.Base(name)[0] == '.'
	}))
	report, err := imp.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(report.Imported) != 1 {
		t.Fatalf("expected only kept.png, got %+v", report)
	}
}

func TestScanWithoutAssetDirectory(t *testing.T) {
	_, imp := openProject(t, t.TempDir())
	report, err := imp.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(report.Imported)+len(report.Restored)+len(report.Failed) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
