package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/internal/hydrate"
)

// MetaExt is the extension of metadata files.
const MetaExt = ".meta"

// FileStore reads and writes metadata documents in a directory.
type FileStore struct {
	dir     string
	logger  assets.Logger
	strict  bool
	decoder *hydrate.Decoder[assets.Snapshot]
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

func WithLogger(logger assets.Logger) FileStoreOption {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictDocuments rejects metadata documents carrying keys outside the
// snapshot layout. Legacy keys are renamed before the check.
func WithStrictDocuments() FileStoreOption {
	return func(s *FileStore) {
		s.strict = true
	}
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		dir:     dir,
		logger: assets.NopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.decoder = newSnapshotDecoder(s.strict)
	return s
}

func (s *FileStore) Dir() string { return s.dir }

// Path returns the canonical metadata file for id.
func (s *FileStore) Path(id assets.ID) string {
	return filepath.Join(s.dir, id.String()+MetaExt)
}

// SaveFile writes snapshot as indented JSON to path. The document is written
// to a temporary file in the same directory and renamed into place.
func (s *FileStore) SaveFile(ctx context.Context, snapshot assets.Snapshot, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("state: save %s: %w", path, err)
	}
	payload, err := json.MarshalIndent(snapshot.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", snapshot.ID, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*"+MetaExt)
	if err != nil {
		return fmt.Errorf("state: save %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("state: save %s: %w", path, err)
	}
	return nil
}

// SaveFileAsync runs SaveFile on its own goroutine.
func (s *FileStore) SaveFileAsync(ctx context.Context, snapshot assets.Snapshot, path string) *assets.Task[struct{}] {
	snapshot = snapshot.Clone()
	return assets.Go(func() (struct{}, error) {
		return struct{}{}, s.SaveFile(ctx, snapshot, path)
	})
}

// LoadFile reads the metadata document at path. A missing file matches
// assets.ErrNotFound; unparseable content matches assets.ErrDecode.
func (s *FileStore) LoadFile(ctx context.Context, path string) (assets.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return assets.Snapshot{}, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return assets.Snapshot{}, fmt.Errorf("%w: %s", assets.ErrNotFound, path)
	}
	if err != nil {
		return assets.Snapshot{}, fmt.Errorf("state: read %s: %w", path, err)
	}
	snapshot, err := s.decoder.DecodeBytes(hydrate.Context{Source: path}, raw)
	if err != nil {
		return assets.Snapshot{}, assets.NewDecodeError(path, err)
	}
	return snapshot, nil
}

// LoadFileAsync runs LoadFile on its own goroutine.
func (s *FileStore) LoadFileAsync(ctx context.Context, path string) *assets.Task[assets.Snapshot] {
	return assets.Go(func() (assets.Snapshot, error) {
		return s.LoadFile(ctx, path)
	})
}

// Save writes snapshot to its canonical path.
func (s *FileStore) Save(ctx context.Context, snapshot assets.Snapshot) error {
	return s.SaveFile(ctx, snapshot, s.Path(snapshot.ID))
}

// Load reads the metadata of id, falling back to a directory scan when the
// canonical file does not exist.
func (s *FileStore) Load(ctx context.Context, id assets.ID) (assets.Snapshot, error) {
	snapshot, err := s.LoadFile(ctx, s.Path(id))
	if err == nil || !errors.Is(err, assets.ErrNotFound) {
		return snapshot, err
	}
	path, ok, scanErr := s.locate(id)
	if scanErr != nil {
		return assets.Snapshot{}, scanErr
	}
	if !ok {
		return assets.Snapshot{}, fmt.Errorf("%w: metadata for %s", assets.ErrNotFound, id)
	}
	s.logger.Info("metadata found by directory scan", "id", id, "path", path)
	return s.LoadFile(ctx, path)
}

// Files returns every metadata file in the directory, sorted.
func (s *FileStore) Files(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: list %s: %w", s.dir, err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), MetaExt) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		out = append(out, filepath.Join(s.dir, name))
	}
	slices.Sort(out)
	return out, nil
}

// List returns the ids of every stored snapshot. Files whose name is not an
// id are opened to read it; unreadable files are logged and skipped.
func (s *FileStore) List(ctx context.Context) ([]assets.ID, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[assets.ID]struct{}, len(files))
	ids := make([]assets.ID, 0, len(files))
	for _, path := range files {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		id, err := assets.ParseID(base)
		if err != nil {
			snapshot, loadErr := s.LoadFile(ctx, path)
			if loadErr != nil {
				s.logger.Warn("skipping unreadable metadata", "path", path, "error", loadErr)
				continue
			}
			id = snapshot.ID
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b assets.ID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids, nil
}

func (s *FileStore) locate(id assets.ID) (string, bool, error) {
	files, err := s.Files(context.Background())
	if err != nil {
		return "", false, err
	}
	needle := strings.ToLower(id.String())
	for _, path := range files {
		if strings.Contains(strings.ToLower(filepath.Base(path)), needle) {
			return path, true, nil
		}
	}
	// Files named after their asset rather than its id.
	for _, path := range files {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if _, err := assets.ParseID(base); err == nil {
			continue
		}
		snapshot, err := s.LoadFile(context.Background(), path)
		if err == nil && snapshot.ID == id {
			return path, true, nil
		}
	}
	return "", false, nil
}
