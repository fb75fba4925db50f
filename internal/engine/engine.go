// Package engine composes the handle cache and the segmented file manager
// into the storage-manager operation surface: block I/O against cached
// relation handles, transaction-boundary batch operations and the
// cross-process descriptor release barrier.
package engine

import (
	"context"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamNilotpal/relstore/internal/handlecache"
	"github.com/iamNilotpal/relstore/internal/relation"
	"github.com/iamNilotpal/relstore/internal/segfile"
	relstoreErrors "github.com/iamNilotpal/relstore/pkg/errors"
	"github.com/iamNilotpal/relstore/pkg/filesys"
	"github.com/iamNilotpal/relstore/pkg/options"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

// Engine is one storage-manager instance. Instances are independent, so
// tests can run several side by side; there is no ambient global state.
type Engine struct {
	closed atomic.Bool
	log    *zap.SugaredLogger
	opts   *options.Options
	cache  *handlecache.Cache
	files  *segfile.Store

	// barrierGen counts raised release barriers; releasedGen is the last
	// generation this participant has already released descriptors for.
	// The pair keeps a participant from redundantly re-releasing when it
	// already acted after the barrier was raised.
	barrierGen  atomic.Uint64
	releasedGen atomic.Uint64
}

// New initializes a storage-manager instance over the configured data
// directory. Must run before any other call.
func New(ctx context.Context, log *zap.SugaredLogger, opts *options.Options) (*Engine, error) {
	if err := filesys.CreateDir(opts.DataDir, 0700, true); err != nil {
		return nil, relstoreErrors.NewStorageError(
			err, relstoreErrors.ErrSystemInternal, "Failed to create data directory",
		).WithPath(opts.DataDir)
	}

	log.Infow(
		"Storage manager initialized",
		"dataDir", opts.DataDir,
		"blockSize", options.BlockSize,
		"segmentBlocks", opts.SegmentBlocks,
	)

	return &Engine{
		log:   log,
		opts:  opts,
		cache: handlecache.New(log),
		files: segfile.New(log, opts),
	}, nil
}

// Open returns the cached handle for key, creating one without I/O on
// first lookup.
func (e *Engine) Open(key relpath.RelKeyBackend) (*relation.Relation, error) {
	if err := e.ensureOpen(); err != nil {
		return nil, err
	}
	return e.cache.Open(key), nil
}

// SetOwner registers slot as the handle's single owner.
func (e *Engine) SetOwner(slot *relation.Owner, rel *relation.Relation) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.cache.SetOwner(slot, rel)
}

// ClearOwner detaches ownership if slot currently owns rel; otherwise it
// is a no-op.
func (e *Engine) ClearOwner(slot *relation.Owner, rel *relation.Relation) {
	e.cache.ClearOwner(slot, rel)
}

// CloseRelation destroys the cached handle, closing its descriptors and
// nulling the owner slot.
func (e *Engine) CloseRelation(rel *relation.Relation) error {
	return e.cache.Close(rel)
}

// CloseKey destroys the handle for one key if present.
func (e *Engine) CloseKey(key relpath.RelKeyBackend) error {
	return e.cache.CloseKey(key)
}

// CloseAllRelations destroys every cached handle.
func (e *Engine) CloseAllRelations() error {
	return e.cache.CloseAll()
}

// Release drops the handle's OS descriptors but keeps its cached metadata;
// the next access reopens segments transparently.
func (e *Engine) Release(rel *relation.Relation) error {
	return e.cache.Release(rel)
}

// ReleaseAll releases descriptors of every cached handle.
func (e *Engine) ReleaseAll() (bool, error) {
	return e.cache.ReleaseAll()
}

// AtEOXact destroys every handle not claimed by an owner. The transaction
// manager calls this exactly once per transaction boundary, after all
// cleanup that might still need those handles. Returns the number of
// handles destroyed.
func (e *Engine) AtEOXact() int {
	return e.cache.AtEOXact()
}

// Exists reports whether the fork's storage is present on disk.
func (e *Engine) Exists(rel *relation.Relation, fork relpath.ForkNumber) (bool, error) {
	if err := e.ensureOpen(); err != nil {
		return false, err
	}
	return e.files.Exists(rel, fork)
}

// Create creates the fork's first segment file; under redo an existing
// file is tolerated.
func (e *Engine) Create(rel *relation.Relation, fork relpath.ForkNumber, isRedo bool) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.Create(rel, fork, isRedo)
}

// Extend appends one block of content at blocknum.
func (e *Engine) Extend(
	rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte, skipFsync bool,
) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.Extend(rel, fork, blocknum, buffer, skipFsync)
}

// ZeroExtend appends nblocks zero-filled blocks starting at blocknum.
func (e *Engine) ZeroExtend(
	rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, nblocks int64, skipFsync bool,
) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.ZeroExtend(rel, fork, blocknum, nblocks, skipFsync)
}

// Read reads one block into buffer.
func (e *Engine) Read(rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.Read(rel, fork, blocknum, buffer)
}

// Write overwrites one existing block.
func (e *Engine) Write(
	rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte, skipFsync bool,
) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.Write(rel, fork, blocknum, buffer, skipFsync)
}

// Prefetch issues an advisory read-ahead hint for the block.
func (e *Engine) Prefetch(rel *relation.Relation, fork relpath.ForkNumber, blocknum int64) (bool, error) {
	if err := e.ensureOpen(); err != nil {
		return false, err
	}
	return e.files.Prefetch(rel, fork, blocknum)
}

// Writeback hints the OS to flush a contiguous run of blocks.
func (e *Engine) Writeback(rel *relation.Relation, fork relpath.ForkNumber, blocknum, nblocks int64) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.Writeback(rel, fork, blocknum, nblocks)
}

// NBlocks returns the authoritative fork size in blocks.
func (e *Engine) NBlocks(rel *relation.Relation, fork relpath.ForkNumber) (int64, error) {
	if err := e.ensureOpen(); err != nil {
		return 0, err
	}
	return e.files.NBlocks(rel, fork)
}

// NBlocksCached returns the fork's cached size hint without I/O, or
// relation.UnknownNBlocks. Advisory outside recovery replay.
func (e *Engine) NBlocksCached(rel *relation.Relation, fork relpath.ForkNumber) int64 {
	return e.files.NBlocksCached(rel, fork)
}

// Truncate shrinks the fork to nblocks.
func (e *Engine) Truncate(rel *relation.Relation, fork relpath.ForkNumber, nblocks int64) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.Truncate(rel, fork, nblocks)
}

// ImmedSync forces a durable flush of the fork.
func (e *Engine) ImmedSync(rel *relation.Relation, fork relpath.ForkNumber) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}
	return e.files.ImmedSync(rel, fork)
}

// SyncAll durably flushes every existing fork of every given handle.
// Each handle's failure is independent: the batch attempts every item and
// surfaces the collected errors afterwards.
func (e *Engine) SyncAll(rels []*relation.Relation) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}

	var errs error
	for _, rel := range rels {
		if err := e.syncRelation(rel); err != nil {
			e.log.Errorw("Failed to sync relation", "relation", rel.Key().String(), "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// UnlinkAll removes the on-disk files behind every given handle's forks.
// Missing files are tolerated: the goal state, file absent, is already
// achieved, and redo replay must be idempotent. Other I/O errors are
// collected per handle while the batch continues.
func (e *Engine) UnlinkAll(rels []*relation.Relation, isRedo bool) error {
	if err := e.ensureOpen(); err != nil {
		return err
	}

	var errs error
	for _, rel := range rels {
		for fork := relpath.ForkMain; fork <= relpath.MaxFork; fork++ {
			if err := e.files.Unlink(rel, fork, isRedo); err != nil {
				e.log.Errorw(
					"Failed to unlink fork",
					"relation", rel.Key().String(),
					"fork", fork.String(),
					"isRedo", isRedo,
					"error", err,
				)
				errs = multierr.Append(errs, err)
			}
		}
	}
	return errs
}

// RaiseReleaseBarrier signals that every participant must release its open
// segment descriptors before the pending filesystem-level operation (for
// example a physical rename) can proceed.
func (e *Engine) RaiseReleaseBarrier() {
	gen := e.barrierGen.Add(1)
	e.log.Infow("Release barrier raised", "generation", gen)
}

// ProcessBarrierRelease releases all cached descriptors once per barrier
// generation. A participant that already released after the barrier was
// raised does nothing. Reports whether any descriptors were actually
// dropped, purely for the caller's bookkeeping.
func (e *Engine) ProcessBarrierRelease() (bool, error) {
	gen := e.barrierGen.Load()
	if e.releasedGen.Load() >= gen {
		return false, nil
	}

	released, err := e.cache.ReleaseAll()
	if err != nil {
		return released, err
	}

	e.releasedGen.Store(gen)
	e.log.Infow("Release barrier acknowledged", "generation", gen, "released", released)
	return released, nil
}

// TargetBlock returns the handle's advisory insertion-target hint.
func (e *Engine) TargetBlock(rel *relation.Relation) int64 {
	return rel.TargetBlock()
}

// SetTargetBlock records the advisory insertion-target hint.
func (e *Engine) SetTargetBlock(rel *relation.Relation, blocknum int64) {
	rel.SetTargetBlock(blocknum)
}

// Close tears the instance down, destroying every cached handle.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}

	err := e.cache.CloseAll()
	e.log.Infow("Storage manager shut down", "dataDir", e.opts.DataDir)
	return err
}

func (e *Engine) syncRelation(rel *relation.Relation) error {
	var errs error
	for fork := relpath.ForkMain; fork <= relpath.MaxFork; fork++ {
		ok, err := e.files.Exists(rel, fork)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		if err := e.files.ImmedSync(rel, fork); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (e *Engine) ensureOpen() error {
	if e.closed.Load() {
		return relstoreErrors.NewStorageError(
			nil, relstoreErrors.ErrSystemClosed, "Storage manager is closed",
		)
	}
	return nil
}
