package assets

import "context"

// MetadataStore persists snapshots keyed by asset id. Load returns an error
// matching ErrNotFound when no metadata exists for the id.
type MetadataStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context, id ID) (Snapshot, error)
	List(ctx context.Context) ([]ID, error)
}
