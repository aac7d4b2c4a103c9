// Package importer brings a project's assets into a cache on startup:
// persisted assets are restored under their recorded ids and new source
// files are decoded, cached and given metadata.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/pkg/activity"
	"github.com/goliatone/go-assets/pkg/decoders"
)

// DefaultWorkers bounds concurrent metadata reads.
const DefaultWorkers = 4

// Option customises an Importer.
type Option func(*Importer)

// WithLogger sets the logger used for per-file outcomes.
func WithLogger(logger assets.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithWorkers bounds concurrent metadata reads during prefetch.
func WithWorkers(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithDir sets the directory walked for source files, relative to the file
// system root. Defaults to ".".
func WithDir(dir string) Option {
	return func(i *Importer) {
		if dir != "" {
			i.dir = path.Clean(dir)
		}
	}
}

// WithIgnore skips files for which ignore returns true.
func WithIgnore(ignore func(name string) bool) Option {
	return func(i *Importer) {
		i.ignore = ignore
	}
}

// Importer scans a project once per call to Scan.
type Importer struct {
	cache    *assets.Cache
	store    assets.MetadataStore
	fsys     fs.FS
	decoders *decoders.Registry
	logger   assets.Logger
	workers  int
	dir      string
	ignore   func(string) bool
}

// New builds an importer. store must be the store cache persists to.
func New(cache *assets.Cache, store assets.MetadataStore, fsys fs.FS, registry *decoders.Registry, opts ...Option) *Importer {
	i := &Importer{
		cache:    cache,
		store:    store,
		fsys:     fsys,
		decoders: registry,
		logger:   assets.NopLogger(),
		workers:  DefaultWorkers,
		dir:      ".",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// CacheResolver resolves decoder references against assets already cached.
func CacheResolver(cache *assets.Cache) decoders.Resolver {
	return func(name string) (assets.Asset, bool) {
		id := cache.Index().IDOf(name)
		if id.IsNil() {
			return nil, false
		}
		return cache.Get(id)
	}
}

// Scan restores every persisted asset, then imports source files not yet
// known. Only failures to enumerate metadata or walk the tree are returned
// as errors; per-file problems are collected in the report.
func (i *Importer) Scan(ctx context.Context) (*Report, error) {
	if i.cache == nil || i.store == nil {
		return nil, errors.New("importer: cache and store are required")
	}
	report := &Report{}

	snapshots, err := i.prefetch(ctx, report)
	if err != nil {
		return report, err
	}
	i.restore(ctx, snapshots, report)

	if i.fsys == nil || i.decoders == nil {
		return report, nil
	}
	if err := i.importNew(ctx, report); err != nil {
		return report, err
	}
	i.logger.Info("asset scan complete",
		"restored", len(report.Restored),
		"imported", len(report.Imported),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed))
	return report, nil
}

// prefetch reads every snapshot concurrently and registers {id, path} in
// the index so later steps know every persisted asset.
func (i *Importer) prefetch(ctx context.Context, report *Report) ([]assets.Snapshot, error) {
	ids, err := i.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("importer: list metadata: %w", err)
	}

	snapshots := make([]assets.Snapshot, len(ids))
	failures := make([]error, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(i.workers)
	for n, id := range ids {
		group.Go(func() error {
			snapshot, err := i.store.Load(groupCtx, id)
			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[n] = err
				return nil
			}
			snapshots[n] = snapshot
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]assets.Snapshot, 0, len(ids))
	for n, id := range ids {
		if failures[n] != nil {
			report.fail(id, "", failures[n])
			i.logger.Warn("asset metadata unreadable", "id", id, "error", failures[n])
			continue
		}
		snapshot := snapshots[n]
		i.cache.Index().Register(snapshot.ID, snapshot.FilePath)
		out = append(out, snapshot)
	}
	slices.SortFunc(out, func(a, b assets.Snapshot) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (i *Importer) restore(ctx context.Context, snapshots []assets.Snapshot, report *Report) {
	for _, snapshot := range snapshots {
		if i.cache.ContainsID(snapshot.ID) {
			// Already pulled in as a reference of an earlier asset.
			report.Restored = append(report.Restored, snapshot.ID)
			continue
		}
		if _, err := i.cache.Load(ctx, snapshot.ID); err != nil {
			report.fail(snapshot.ID, snapshot.FilePath, err)
			i.logger.Warn("asset restore failed", "id", snapshot.ID, "path", snapshot.FilePath, "error", err)
			continue
		}
		report.Restored = append(report.Restored, snapshot.ID)
	}
}

// kindOrder imports referenced kinds before the kinds that refer to them.
var kindOrder = map[assets.Kind]int{
	assets.KindTexture:  0,
	assets.KindShader:   1,
	assets.KindScript:   2,
	assets.KindMaterial: 3,
	assets.KindMesh:     4,
}

type candidate struct {
	name string
	kind assets.Kind
}

func (i *Importer) importNew(ctx context.Context, report *Report) error {
	if _, err := fs.Stat(i.fsys, i.dir); errors.Is(err, fs.ErrNotExist) {
		i.logger.Info("asset directory missing, nothing to import", "dir", i.dir)
		return nil
	}
	var candidates []candidate
	err := fs.WalkDir(i.fsys, i.dir, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name != i.dir && i.ignored(name) {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if i.cache.Index().ContainsPath(name) {
			report.Skipped = append(report.Skipped, name)
			return nil
		}
		_, kind, ok := i.decoders.Lookup(name)
		if !ok {
			return nil
		}
		candidates = append(candidates, candidate{name: name, kind: kind})
		return nil
	})
	if err != nil {
		return fmt.Errorf("importer: walk %s: %w", i.dir, err)
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if d := kindOrder[a.kind] - kindOrder[b.kind]; d != 0 {
			return d
		}
		return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
	})

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		i.importFile(ctx, c.name, report)
	}
	return nil
}

func (i *Importer) importFile(ctx context.Context, name string, report *Report) {
	asset, err := i.decoders.Decode(ctx, name)
	if err != nil {
		report.fail(assets.NilID, name, err)
		i.logger.Warn("asset decode failed", "path", name, "error", err)
		return
	}
	added, err := i.cache.Add(asset.ID(), asset)
	if err != nil {
		report.fail(asset.ID(), name, err)
		return
	}
	if !added {
		report.Skipped = append(report.Skipped, name)
		return
	}
	if _, err := i.cache.SaveMetadata(ctx, asset); err != nil {
		report.fail(asset.ID(), name, err)
		i.logger.Error("asset metadata not saved", "id", asset.ID(), "path", name, "error", err)
		return
	}
	i.cache.Emit(ctx, activity.VerbImport, asset, nil)
	report.Imported = append(report.Imported, asset.ID())
	i.logger.Info("asset imported", "id", asset.ID(), "kind", asset.Kind(), "path", name)
}

func (i *Importer) ignored(name string) bool {
	return i.ignore != nil && i.ignore(name)
}
