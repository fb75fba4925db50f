// Package handlecache maintains the process-wide table of relation
// handles, keyed by physical identity. Creating or destroying an entry
// never implies I/O; the cache only tracks handles, their single owner
// slots and the side set of handles nobody claimed, which are swept at
// transaction end.
package handlecache

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamNilotpal/relstore/internal/relation"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

type Cache struct {
	log *zap.SugaredLogger

	mu      sync.RWMutex
	handles map[relpath.RelKeyBackend]*relation.Relation

	// unowned holds handles without an owner slot. They are scoped to at
	// most one transaction and destroyed by the end-of-transaction sweep.
	unowned map[*relation.Relation]struct{}
}

func New(log *zap.SugaredLogger) *Cache {
	return &Cache{
		log:     log,
		handles: make(map[relpath.RelKeyBackend]*relation.Relation),
		unowned: make(map[*relation.Relation]struct{}),
	}
}

// Open returns the handle for key, creating a fresh unowned one on first
// lookup. Never performs I/O; idempotent per key.
func (c *Cache) Open(key relpath.RelKeyBackend) *relation.Relation {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rel, ok := c.handles[key]; ok {
		return rel
	}

	rel := relation.New(key)
	c.handles[key] = rel
	c.unowned[rel] = struct{}{}

	c.log.Debugw("Cached new relation handle", "relation", key.String())
	return rel
}

// Lookup returns the cached handle for key without creating one.
func (c *Cache) Lookup(key relpath.RelKeyBackend) (*relation.Relation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rel, ok := c.handles[key]
	return rel, ok
}

// SetOwner records slot as the handle's sole owner and takes the handle
// off the unowned list. Attaching a second, different owner is a logic
// error surfaced to the caller.
func (c *Cache) SetOwner(slot *relation.Owner, rel *relation.Relation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A slot being repointed at a new handle first disowns the old one,
	// which goes back on the unowned list.
	if old := slot.Relation(); old != nil && old != rel {
		if old.DetachOwner(slot) {
			c.unowned[old] = struct{}{}
		}
	}

	if err := rel.AttachOwner(slot); err != nil {
		return err
	}
	delete(c.unowned, rel)
	return nil
}

// ClearOwner detaches ownership only if slot currently points at rel and
// returns the handle to the unowned list; a stale slot is a no-op.
func (c *Cache) ClearOwner(slot *relation.Owner, rel *relation.Relation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rel.DetachOwner(slot) {
		c.unowned[rel] = struct{}{}
	}
}

// Close destroys the handle: it leaves the mapping before any resource
// release happens, so a concurrent lookup can never observe a half-closed
// handle. The owner slot, if any, is nulled out. Descriptors already lost
// (for example after an external unlink) do not make Close fail.
func (c *Cache) Close(rel *relation.Relation) error {
	c.mu.Lock()
	delete(c.handles, rel.Key())
	delete(c.unowned, rel)
	rel.ClearOwner()
	c.mu.Unlock()

	if err := rel.CloseSegments(); err != nil {
		c.log.Warnw("Errors while closing segment descriptors", "relation", rel.Key().String(), "error", err)
	}

	c.log.Debugw("Closed relation handle", "relation", rel.Key().String())
	return nil
}

// CloseKey closes the handle for one key if present. Used when a physical
// identity is being recycled.
func (c *Cache) CloseKey(key relpath.RelKeyBackend) error {
	c.mu.RLock()
	rel, ok := c.handles[key]
	c.mu.RUnlock()

	if !ok {
		return nil
	}
	return c.Close(rel)
}

// CloseAll closes every cached handle. Used at shutdown.
func (c *Cache) CloseAll() error {
	var errs error
	for _, rel := range c.snapshot() {
		errs = multierr.Append(errs, c.Close(rel))
	}
	return errs
}

// Release closes the handle's OS descriptors but keeps the handle and its
// cached metadata alive; the next access reopens segments transparently.
func (c *Cache) Release(rel *relation.Relation) error {
	return rel.CloseSegments()
}

// ReleaseAll releases every cached handle's descriptors. Reports whether
// any handle actually had descriptors to drop.
func (c *Cache) ReleaseAll() (bool, error) {
	released := false
	var errs error

	for _, rel := range c.snapshot() {
		open := 0
		for fork := relpath.ForkMain; fork <= relpath.MaxFork; fork++ {
			open += rel.OpenSegCount(fork)
		}
		if open == 0 {
			continue
		}

		released = true
		if err := rel.CloseSegments(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return released, errs
}

// AtEOXact destroys every handle on the unowned list. Owned handles are
// untouched. Runs once per transaction boundary, after any post-commit
// cleanup that might still need the handles.
func (c *Cache) AtEOXact() int {
	c.mu.Lock()
	swept := make([]*relation.Relation, 0, len(c.unowned))
	for rel := range c.unowned {
		swept = append(swept, rel)
		delete(c.handles, rel.Key())
	}
	clear(c.unowned)
	c.mu.Unlock()

	for _, rel := range swept {
		rel.ClearOwner()
		if err := rel.CloseSegments(); err != nil {
			c.log.Warnw(
				"Errors while sweeping unowned relation handle",
				"relation", rel.Key().String(),
				"error", err,
			)
		}
	}

	if len(swept) > 0 {
		c.log.Debugw("Swept unowned relation handles", "count", len(swept))
	}
	return len(swept)
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// UnownedLen returns the number of handles currently without an owner.
func (c *Cache) UnownedLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.unowned)
}

func (c *Cache) snapshot() []*relation.Relation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rels := make([]*relation.Relation, 0, len(c.handles))
	for _, rel := range c.handles {
		rels = append(rels, rel)
	}
	return rels
}
