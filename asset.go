package assets

import (
	"path/filepath"
	"strings"
)

// Asset is any resource managed by the cache. Concrete types embed Header,
// which supplies the identity accessors.
type Asset interface {
	ID() ID
	Name() string
	FilePath() string
	Kind() Kind
	header() *Header
}

// Header carries the identity fields shared by every asset. They are not
// members: snapshots store them in dedicated slots and restore sets them
// before any member is touched.
type Header struct {
	id       ID
	name     string
	filePath string
	kind     Kind
}

// NewHeader assigns a fresh identity. Use it when constructing an asset from
// raw import data.
func NewHeader(kind Kind, name, filePath string) Header {
	return Header{
		id:       NewID(),
		name:     name,
		filePath: filePath,
		kind:     kind,
	}
}

// HeaderFromPath derives the asset name from the file name without extension.
func HeaderFromPath(kind Kind, filePath string) Header {
	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return NewHeader(kind, name, filePath)
}

func (h *Header) ID() ID           { return h.id }
func (h *Header) Name() string     { return h.name }
func (h *Header) FilePath() string { return h.filePath }
func (h *Header) Kind() Kind       { return h.kind }

func (h *Header) header() *Header { return h }

func (h *Header) restore(snapshot Snapshot) {
	h.id = snapshot.ID
	h.name = snapshot.Name
	h.filePath = snapshot.FilePath
	h.kind = snapshot.Kind
}

// Releaser is implemented by assets holding runtime resources that must be
// freed when the cache evicts them.
type Releaser interface {
	Release()
}
