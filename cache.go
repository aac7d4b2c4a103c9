package assets

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-assets/pkg/activity"
	"golang.org/x/sync/singleflight"
)

// Cache materializes assets at most once per id. An id moves from unknown to
// known (index only) when registered, to loaded when added or restored, and
// back to known when evicted.
type Cache struct {
	mu     sync.RWMutex
	assets map[ID]Asset
	cfg    cacheConfig
	loads  singleflight.Group
}

// NewCache builds an empty cache.
func NewCache(opts ...Option) *Cache {
	return &Cache{
		assets: map[ID]Asset{},
		cfg:    applyOptions(opts),
	}
}

func (c *Cache) Index() *Index { return c.cfg.index }
func (c *Cache) Types() *Types { return c.cfg.types }

// Add stores asset under id and registers its path. It fails with
// ErrAlreadyExists when id is cached, and returns false without changes when
// the asset path is registered to another id.
func (c *Cache) Add(id ID, asset Asset) (bool, error) {
	return c.add(context.Background(), id, asset, activity.VerbAdd)
}

func (c *Cache) add(ctx context.Context, id ID, asset Asset, verb string) (bool, error) {
	if asset == nil {
		return false, fmt.Errorf("assets: cannot add nil asset %s", id)
	}
	if asset.ID() != id {
		return false, fmt.Errorf("%w: %s != %s", ErrIDMismatch, id, asset.ID())
	}

	c.mu.Lock()
	if _, ok := c.assets[id]; ok {
		c.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}
	path := asset.FilePath()
	if path != "" {
		if owner := c.cfg.index.IDOf(path); !owner.IsNil() && owner != id {
			c.mu.Unlock()
			c.cfg.logger.Warn("asset path already registered", "id", id, "path", path, "owner", owner)
			return false, nil
		}
		c.cfg.index.Register(id, path)
	}
	c.assets[id] = asset
	c.mu.Unlock()

	c.cfg.logger.Debug("asset cached", "id", id, "kind", asset.Kind(), "path", path, "verb", verb)
	c.emit(ctx, verb, asset, nil)
	return true, nil
}

// Get returns the cached asset for id.
func (c *Cache) Get(id ID) (Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	asset, ok := c.assets[id]
	return asset, ok
}

// GetAs returns the cached asset for id as T. ok is false when nothing is
// cached; a cached asset of another type yields a TypeMismatchError.
func GetAs[T Asset](c *Cache, id ID) (T, bool, error) {
	var zero T
	asset, ok := c.Get(id)
	if !ok {
		return zero, false, nil
	}
	typed, ok := asset.(T)
	if !ok {
		return zero, true, &TypeMismatchError{ID: id, Want: fmt.Sprintf("%T", zero), Got: fmt.Sprintf("%T", asset)}
	}
	return typed, true, nil
}

// ContainsID reports whether id is loaded.
func (c *Cache) ContainsID(id ID) bool {
	_, ok := c.Get(id)
	return ok
}

// ContainsPath reports whether the asset registered for path is loaded.
func (c *Cache) ContainsPath(path string) bool {
	id := c.cfg.index.IDOf(path)
	if id.IsNil() {
		return false
	}
	return c.ContainsID(id)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

// IDs returns the loaded ids in canonical string order.
func (c *Cache) IDs() []ID {
	c.mu.RLock()
	out := make([]ID, 0, len(c.assets))
	for id := range c.assets {
		out = append(out, id)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b ID) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// Evict drops the loaded instance of id. The index entry stays, so the asset
// can be loaded again from its metadata. Assets implementing Releaser are
// released.
func (c *Cache) Evict(id ID) bool {
	c.mu.Lock()
	asset, ok := c.assets[id]
	delete(c.assets, id)
	c.mu.Unlock()
	if !ok {
		return false
	}
	if releaser, ok := asset.(Releaser); ok {
		releaser.Release()
	}
	c.cfg.logger.Debug("asset evicted", "id", id, "path", asset.FilePath())
	c.emit(context.Background(), activity.VerbEvict, asset, nil)
	return true
}

// discard drops asset when it is still the cached instance for its id.
func (c *Cache) discard(asset Asset, cause error) {
	id := asset.ID()
	c.mu.Lock()
	current, ok := c.assets[id]
	if ok && current == asset {
		delete(c.assets, id)
	}
	c.mu.Unlock()
	if !ok || current != asset {
		return
	}
	if releaser, ok := asset.(Releaser); ok {
		releaser.Release()
	}
	c.cfg.logger.Warn("asset discarded after failed load", "id", id, "path", asset.FilePath(), "error", cause)
}

func (c *Cache) requireStore() (MetadataStore, error) {
	if c.cfg.store == nil {
		return nil, ErrNoStore
	}
	return c.cfg.store, nil
}

// LoadMetadata reads the persisted snapshot of id.
func (c *Cache) LoadMetadata(ctx context.Context, id ID) (Snapshot, error) {
	store, err := c.requireStore()
	if err != nil {
		return Snapshot{}, err
	}
	snapshot, err := store.Load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if snapshot.ID != id {
		return Snapshot{}, NewDecodeError(id.String(), fmt.Errorf("metadata belongs to %s", snapshot.ID))
	}
	return snapshot, nil
}

// LoadMetadataAsync runs LoadMetadata on its own goroutine.
func (c *Cache) LoadMetadataAsync(ctx context.Context, id ID) *Task[Snapshot] {
	return Go(func() (Snapshot, error) {
		return c.LoadMetadata(ctx, id)
	})
}

// SaveMetadata snapshots asset and persists it, returning the snapshot
// written.
func (c *Cache) SaveMetadata(ctx context.Context, asset Asset) (Snapshot, error) {
	store, err := c.requireStore()
	if err != nil {
		return Snapshot{}, err
	}
	snapshot, err := c.cfg.types.Snapshot(asset)
	if err != nil {
		return Snapshot{}, err
	}
	if err := store.Save(ctx, snapshot); err != nil {
		return Snapshot{}, err
	}
	c.cfg.logger.Debug("asset metadata saved", "id", snapshot.ID, "path", snapshot.FilePath, "properties", len(snapshot.Properties))
	c.emit(ctx, activity.VerbSave, asset, map[string]any{"properties": len(snapshot.Properties)})
	return snapshot, nil
}

// SaveMetadataAsync runs SaveMetadata on its own goroutine.
func (c *Cache) SaveMetadataAsync(ctx context.Context, asset Asset) *Task[Snapshot] {
	return Go(func() (Snapshot, error) {
		return c.SaveMetadata(ctx, asset)
	})
}

// Load returns the cached asset for id, restoring it from its metadata when
// it is not loaded. Concurrent loads of the same id share one restore.
func (c *Cache) Load(ctx context.Context, id ID) (Asset, error) {
	if asset, ok := c.Get(id); ok {
		return asset, nil
	}
	value, err, _ := c.loads.Do(id.String(), func() (any, error) {
		session := newLoadSession()
		asset, err := c.loadIn(ctx, session, id)
		if err == nil {
			err = session.finish(ctx, c)
		}
		if err != nil {
			session.rollback(c, err)
			return nil, err
		}
		return asset, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(Asset), nil
}

// Restore reconstructs the asset described by snapshot without caching it.
// Referenced assets are loaded into the cache as needed; a cached asset that
// refers back to snapshot.ID is linked to the cached instance of that id,
// never to the one returned here.
func (c *Cache) Restore(ctx context.Context, snapshot Snapshot) (Asset, error) {
	session := newLoadSession()
	asset, err := c.restoreIn(ctx, session, snapshot)
	if err == nil {
		err = c.restoreRoot(ctx, session, asset)
	}
	if err == nil {
		err = session.finish(ctx, c)
	}
	if err != nil {
		session.rollback(c, err)
		return nil, err
	}
	return asset, nil
}

func (c *Cache) emit(ctx context.Context, verb string, asset Asset, meta map[string]any) {
	if !c.cfg.activity.Enabled() {
		return
	}
	event := activity.BuildAssetEvent(verb, activity.AssetEventInput{
		ActorID:    c.cfg.actor,
		AssetID:    asset.ID().String(),
		Kind:       asset.Kind().String(),
		Path:       asset.FilePath(),
		Metadata:   meta,
		OccurredAt: time.Now(),
	})
	c.notify(ctx, event)
}

func (c *Cache) notify(ctx context.Context, event activity.Event) {
	if err := c.cfg.activity.Emit(ctx, event); err != nil {
		c.cfg.logger.Warn("activity hook failed", "verb", event.Verb, "id", event.ObjectID, "error", err)
	}
}

// Emit forwards a lifecycle event for asset to the configured hooks. The
// importer uses it to report "import".
func (c *Cache) Emit(ctx context.Context, verb string, asset Asset, meta map[string]any) {
	if asset == nil {
		return
	}
	c.emit(ctx, verb, asset, meta)
}
