// Package relstore maps logical relation forks onto segmented files on
// secondary storage. It caches lightweight relation handles process-wide
// and exposes block-granularity read/write/extend/truncate/sync/unlink
// primitives to the rest of a database engine.
package relstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iamNilotpal/relstore/internal/engine"
	"github.com/iamNilotpal/relstore/internal/relation"
	"github.com/iamNilotpal/relstore/pkg/logger"
	"github.com/iamNilotpal/relstore/pkg/options"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

// Convenience aliases so callers only import this package for day-to-day
// use. The fork and key types live in pkg/relpath.
type (
	// Relation is a cached handle to one relation's physical storage.
	Relation = relation.Relation
	// Owner is the single external slot allowed to reference a handle;
	// it is nulled out automatically when the handle is destroyed.
	Owner = relation.Owner
)

// UnknownNBlocks is returned by NBlocksCached when a fork's size was
// never computed.
const UnknownNBlocks = relation.UnknownNBlocks

// Store is one storage-manager instance. Multiple independent instances
// may coexist in a process; all state is per instance.
type Store struct {
	engine  *engine.Engine
	options *options.Options
	log     *zap.SugaredLogger
}

// New initializes a storage-manager instance. It must complete before any
// other call; Close tears the instance down again.
func New(ctx context.Context, service string, opts ...options.OptionFunc) (*Store, error) {
	log := logger.New(service)

	defaultOpts := options.DefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.New(ctx, log, &defaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage manager: %w", err)
	}

	return &Store{engine: eng, options: &defaultOpts, log: log}, nil
}

// Open returns the handle for the given physical key, creating a fresh
// unowned one on first lookup. Never performs I/O.
func (s *Store) Open(key relpath.RelKeyBackend) (*Relation, error) {
	return s.engine.Open(key)
}

// SetOwner records slot as the handle's sole owner; the handle leaves the
// unowned list and survives end-of-transaction sweeps. Attaching a second,
// different owner is a logic error.
func (s *Store) SetOwner(slot *Owner, rel *Relation) error {
	return s.engine.SetOwner(slot, rel)
}

// ClearOwner detaches ownership if slot currently owns rel and returns
// the handle to the unowned list; a stale slot is a no-op.
func (s *Store) ClearOwner(slot *Owner, rel *Relation) {
	s.engine.ClearOwner(slot, rel)
}

// CloseRelation destroys the handle, closing open descriptors and nulling
// the owner slot. Files stay on disk.
func (s *Store) CloseRelation(rel *Relation) error {
	return s.engine.CloseRelation(rel)
}

// CloseKey destroys the handle for one key if present; used when a
// physical identity is being recycled.
func (s *Store) CloseKey(key relpath.RelKeyBackend) error {
	return s.engine.CloseKey(key)
}

// Release closes the handle's OS descriptors but keeps its cached
// metadata; segments reopen transparently on next access. Used to bound
// descriptor consumption.
func (s *Store) Release(rel *Relation) error {
	return s.engine.Release(rel)
}

// ReleaseAll releases every cached handle's descriptors.
func (s *Store) ReleaseAll() (bool, error) {
	return s.engine.ReleaseAll()
}

// AtEOXact destroys every handle nobody claimed ownership of. The
// transaction manager calls this exactly once per transaction boundary,
// after all other cleanup that might still need those handles. Returns
// the number of handles destroyed.
func (s *Store) AtEOXact() int {
	return s.engine.AtEOXact()
}

// Exists reports whether the fork's storage is present on disk.
func (s *Store) Exists(rel *Relation, fork relpath.ForkNumber) (bool, error) {
	if err := isValidFork(fork); err != nil {
		return false, err
	}
	return s.engine.Exists(rel, fork)
}

// Create creates the fork's storage. During redo replay an already
// existing file is tolerated.
func (s *Store) Create(rel *Relation, fork relpath.ForkNumber, isRedo bool) error {
	if err := isValidFork(fork); err != nil {
		return err
	}
	return s.engine.Create(rel, fork, isRedo)
}

// Extend writes one block at blocknum, growing the fork by one block.
// Extension must immediately follow the fork's current size. With
// skipFsync, durability is deferred to a later bulk sync.
func (s *Store) Extend(rel *Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte, skipFsync bool) error {
	if err := isValidBlockArgs(fork, blocknum, buffer); err != nil {
		return err
	}
	return s.engine.Extend(rel, fork, blocknum, buffer, skipFsync)
}

// ZeroExtend grows the fork by nblocks zero-filled blocks starting at
// blocknum; all requested blocks become visible as zeros or the fork's
// size is unchanged.
func (s *Store) ZeroExtend(rel *Relation, fork relpath.ForkNumber, blocknum, nblocks int64, skipFsync bool) error {
	if err := isValidFork(fork); err != nil {
		return err
	}
	if err := isValidBlock(blocknum); err != nil {
		return err
	}
	return s.engine.ZeroExtend(rel, fork, blocknum, nblocks, skipFsync)
}

// Read reads one block into buffer; a short read is a fatal consistency
// error, never a partial result.
func (s *Store) Read(rel *Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte) error {
	if err := isValidBlockArgs(fork, blocknum, buffer); err != nil {
		return err
	}
	return s.engine.Read(rel, fork, blocknum, buffer)
}

// Write overwrites one existing block; it never grows the fork.
func (s *Store) Write(rel *Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte, skipFsync bool) error {
	if err := isValidBlockArgs(fork, blocknum, buffer); err != nil {
		return err
	}
	return s.engine.Write(rel, fork, blocknum, buffer, skipFsync)
}

// Prefetch issues a best-effort read-ahead hint and reports whether the
// block address was plausible; missing OS support is not an error.
func (s *Store) Prefetch(rel *Relation, fork relpath.ForkNumber, blocknum int64) (bool, error) {
	if err := isValidFork(fork); err != nil {
		return false, err
	}
	if err := isValidBlock(blocknum); err != nil {
		return false, err
	}
	return s.engine.Prefetch(rel, fork, blocknum)
}

// Writeback asks the OS to start flushing a contiguous run of blocks; it
// is a hint, not a durability guarantee.
func (s *Store) Writeback(rel *Relation, fork relpath.ForkNumber, blocknum, nblocks int64) error {
	if err := isValidFork(fork); err != nil {
		return err
	}
	if err := isValidBlock(blocknum); err != nil {
		return err
	}
	return s.engine.Writeback(rel, fork, blocknum, nblocks)
}

// NBlocks returns the authoritative fork size in blocks, probing segment
// file sizes on disk.
func (s *Store) NBlocks(rel *Relation, fork relpath.ForkNumber) (int64, error) {
	if err := isValidFork(fork); err != nil {
		return 0, err
	}
	return s.engine.NBlocks(rel, fork)
}

// NBlocksCached returns the fork's last known size without I/O, or
// UnknownNBlocks. The hint is reliable only during recovery replay; there
// is no invalidation for concurrent fork extension, so ordinary callers
// must treat it strictly as advisory.
func (s *Store) NBlocksCached(rel *Relation, fork relpath.ForkNumber) (int64, error) {
	if err := isValidFork(fork); err != nil {
		return 0, err
	}
	return s.engine.NBlocksCached(rel, fork), nil
}

// Truncate shrinks the fork to nblocks; truncating again at the same
// boundary is a no-op.
func (s *Store) Truncate(rel *Relation, fork relpath.ForkNumber, nblocks int64) error {
	if err := isValidFork(fork); err != nil {
		return err
	}
	if err := isValidBlock(nblocks); err != nil {
		return err
	}
	return s.engine.Truncate(rel, fork, nblocks)
}

// ImmedSync forces a durable flush of the fork's segments.
func (s *Store) ImmedSync(rel *Relation, fork relpath.ForkNumber) error {
	if err := isValidFork(fork); err != nil {
		return err
	}
	return s.engine.ImmedSync(rel, fork)
}

// SyncAll durably flushes every fork of every given handle, attempting
// every item before surfacing collected failures. Used at checkpoint.
func (s *Store) SyncAll(rels []*Relation) error {
	return s.engine.SyncAll(rels)
}

// UnlinkAll removes the on-disk files behind the given handles' forks.
// Missing files are tolerated; other errors are collected per handle
// while the batch continues.
func (s *Store) UnlinkAll(rels []*Relation, isRedo bool) error {
	return s.engine.UnlinkAll(rels, isRedo)
}

// RaiseReleaseBarrier signals that participants must drop open segment
// descriptors before an exclusive filesystem operation proceeds.
func (s *Store) RaiseReleaseBarrier() {
	s.engine.RaiseReleaseBarrier()
}

// ProcessBarrierRelease releases all cached descriptors once per raised
// barrier generation and reports whether any work was done.
func (s *Store) ProcessBarrierRelease() (bool, error) {
	return s.engine.ProcessBarrierRelease()
}

// TargetBlock returns the handle's advisory insertion-target hint, or
// UnknownNBlocks.
func (s *Store) TargetBlock(rel *Relation) int64 {
	return s.engine.TargetBlock(rel)
}

// SetTargetBlock records the last block hinted for new-row insertion.
func (s *Store) SetTargetBlock(rel *Relation, blocknum int64) {
	s.engine.SetTargetBlock(rel, blocknum)
}

// Close shuts the instance down, destroying every cached handle.
func (s *Store) Close() error {
	return s.engine.Close()
}
