package assets

import (
	"slices"
	"strings"
	"sync"
)

// Index is the bidirectional id <-> path registry. It answers "which assets
// exist" whether or not they are loaded. Paths compare case-insensitively;
// the first spelling registered is the one returned by PathOf.
//
// Conflicting registrations are silent no-ops: reimporting on every launch
// registers the same pairs again and must not fail.
type Index struct {
	mu    sync.RWMutex
	paths map[ID]string
	ids   map[string]ID
}

func NewIndex() *Index {
	return &Index{
		paths: map[ID]string{},
		ids:   map[string]ID{},
	}
}

func pathKey(path string) string {
	return strings.ToLower(path)
}

// Register records id under path. Each side is only inserted when absent,
// so a duplicate id or a duplicate path leaves the existing mapping intact.
func (x *Index) Register(id ID, path string) {
	if id.IsNil() || path == "" {
		return
	}
	key := pathKey(path)
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.paths[id]; ok {
		return
	}
	if _, ok := x.ids[key]; ok {
		return
	}
	x.paths[id] = path
	x.ids[key] = id
}

// PathOf returns the path registered for id, or "".
func (x *Index) PathOf(id ID) string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.paths[id]
}

// IDOf returns the id registered for path, or NilID.
func (x *Index) IDOf(path string) ID {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.ids[pathKey(path)]
}

func (x *Index) ContainsID(id ID) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.paths[id]
	return ok
}

func (x *Index) ContainsPath(path string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.ids[pathKey(path)]
	return ok
}

// Paths returns every registered path sorted case-insensitively.
func (x *Index) Paths() []string {
	x.mu.RLock()
	out := make([]string, 0, len(x.paths))
	for _, path := range x.paths {
		out = append(out, path)
	}
	x.mu.RUnlock()
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(pathKey(a), pathKey(b))
	})
	return out
}

// IDs returns every registered id in canonical string order.
func (x *Index) IDs() []ID {
	x.mu.RLock()
	out := make([]ID, 0, len(x.paths))
	for id := range x.paths {
		out = append(out, id)
	}
	x.mu.RUnlock()
	slices.SortFunc(out, func(a, b ID) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.paths)
}

func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.paths = map[ID]string{}
	x.ids = map[string]ID{}
}
