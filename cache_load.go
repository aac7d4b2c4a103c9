package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-assets/pkg/activity"
)

// loadSession tracks one chain of recursive loads. References to an asset
// still being restored higher up the chain are assigned once it completes.
// Assets cached by the session are discarded again when the chain fails.
type loadSession struct {
	visiting map[ID]struct{}
	pending  []pendingReference
	added    []Asset
}

type pendingReference struct {
	owner  Asset
	member Member
	target ID
}

func newLoadSession() *loadSession {
	return &loadSession{visiting: map[ID]struct{}{}}
}

// resolve assigns pending references to target. When owner is non-nil only
// references held by that instance are assigned.
func (s *loadSession) resolve(c *Cache, target ID, asset Asset, owner Asset) {
	remaining := s.pending[:0]
	for _, ref := range s.pending {
		if ref.target != target || (owner != nil && ref.owner != owner) {
			remaining = append(remaining, ref)
			continue
		}
		if err := ref.member.assignRef(ref.owner, asset); err != nil {
			c.cfg.logger.Warn("deferred reference not assigned", "owner", ref.owner.ID(), "member", ref.member.Name, "target", target, "error", err)
		}
	}
	s.pending = remaining
}

// waitingOn reports whether a pending reference targets id.
func (s *loadSession) waitingOn(id ID) bool {
	for _, ref := range s.pending {
		if ref.target == id {
			return true
		}
	}
	return false
}

// finish applies the dangling policy to references whose target never
// completed.
func (s *loadSession) finish(ctx context.Context, c *Cache) error {
	var errs []error
	for _, ref := range s.pending {
		c.cfg.logger.Warn("reference left unresolved", "owner", ref.owner.ID(), "member", ref.member.Name, "target", ref.target)
		if _, err := c.dangling(ctx, ref.owner, ref.member, ref.target); err != nil {
			errs = append(errs, err)
		}
	}
	s.pending = nil
	return errors.Join(errs...)
}

// rollback discards every asset the session cached, so a failed chain does
// not leave instances with unassigned back references behind.
func (s *loadSession) rollback(c *Cache, cause error) {
	for _, ref := range s.pending {
		c.cfg.logger.Warn("reference left unresolved", "owner", ref.owner.ID(), "member", ref.member.Name, "target", ref.target, "error", cause)
	}
	s.pending = nil
	for i := len(s.added) - 1; i >= 0; i-- {
		c.discard(s.added[i], cause)
	}
	s.added = nil
}

func (c *Cache) loadIn(ctx context.Context, s *loadSession, id ID) (Asset, error) {
	if asset, ok := c.Get(id); ok {
		return asset, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot, err := c.LoadMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	asset, err := c.restoreIn(ctx, s, snapshot)
	if err != nil {
		return nil, err
	}
	added, err := c.add(ctx, id, asset, activity.VerbLoad)
	switch {
	case errors.Is(err, ErrAlreadyExists):
		// Another load won; hand out the instance it cached.
		existing, _ := c.Get(id)
		asset = existing
	case err != nil:
		return nil, err
	case !added:
		return nil, fmt.Errorf("assets: load %s: path %q belongs to %s", id, asset.FilePath(), c.cfg.index.IDOf(asset.FilePath()))
	default:
		s.added = append(s.added, asset)
	}
	s.resolve(c, id, asset, nil)
	return asset, nil
}

// restoreRoot completes a Restore whose chain referenced the restored asset
// itself. Self references get the restored instance. Cached assets pointing
// back at the root get the canonical cached instance, loaded from the store,
// so the cache never holds an instance it does not own.
func (c *Cache) restoreRoot(ctx context.Context, s *loadSession, root Asset) error {
	s.resolve(c, root.ID(), root, root)
	if !s.waitingOn(root.ID()) {
		return nil
	}
	canonical, err := c.Load(ctx, root.ID())
	switch {
	case err == nil:
		s.resolve(c, root.ID(), canonical, nil)
		return nil
	case errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoStore):
		// Left pending; finish applies the dangling policy.
		return nil
	default:
		return err
	}
}

func (c *Cache) restoreIn(ctx context.Context, s *loadSession, snapshot Snapshot) (Asset, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, NewDecodeError(snapshot.FilePath, err)
	}
	schema, err := c.cfg.types.mustLookup(snapshot.Kind)
	if err != nil {
		return nil, err
	}
	s.visiting[snapshot.ID] = struct{}{}
	defer delete(s.visiting, snapshot.ID)

	return schema.restore(ctx, snapshot, func(ctx context.Context, owner Asset, member Member, target ID) (Asset, error) {
		return c.resolveReference(ctx, s, owner, member, target)
	})
}

func (c *Cache) resolveReference(ctx context.Context, s *loadSession, owner Asset, member Member, target ID) (Asset, error) {
	if asset, ok := c.Get(target); ok {
		return asset, nil
	}
	if _, ok := s.visiting[target]; ok {
		s.pending = append(s.pending, pendingReference{owner: owner, member: member, target: target})
		return nil, nil
	}
	asset, err := c.loadIn(ctx, s, target)
	if err == nil {
		return asset, nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoStore) {
		return c.dangling(ctx, owner, member, target)
	}
	return nil, fmt.Errorf("assets: resolve %q of %s: %w", member.Name, owner.ID(), err)
}

func (c *Cache) dangling(ctx context.Context, owner Asset, member Member, target ID) (Asset, error) {
	if c.cfg.strictRefs {
		return nil, fmt.Errorf("%w: %s references missing asset %s via %q", ErrNotFound, owner.ID(), target, member.Name)
	}
	c.cfg.logger.Warn("dangling asset reference", "owner", owner.ID(), "member", member.Name, "target", target)
	if c.cfg.activity.Enabled() {
		c.notify(ctx, activity.BuildDanglingReferenceEvent(activity.AssetEventInput{
			ActorID: c.cfg.actor,
			AssetID: owner.ID().String(),
			Kind:    owner.Kind().String(),
			Path:    owner.FilePath(),
		}, member.Name, target.String()))
	}
	return nil, nil
}
