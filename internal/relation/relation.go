// Package relation defines the cached relation handle: the physical key,
// the single owner back-reference, per-fork size hints and the per-fork
// open segment descriptors. Handles are created and destroyed by the
// handle cache; the segment descriptors are driven by the segmented file
// manager.
package relation

import (
	stdErrors "errors"
	"os"

	"go.uber.org/multierr"

	"github.com/iamNilotpal/relstore/pkg/relpath"
)

// UnknownNBlocks is the sentinel for "size never computed". Cached fork
// sizes are reliable only during recovery replay; everywhere else they
// are advisory hints, since no invalidation exists for concurrent fork
// extension.
const UnknownNBlocks int64 = -1

var (
	ErrAlreadyOwned = stdErrors.New("relation already has a different owner")
)

// Segment wraps one open segment file of one fork. Segment i of a fork
// holds blocks [i*SegmentBlocks, (i+1)*SegmentBlocks).
type Segment struct {
	File  *os.File
	Segno int64

	// Dirty marks writes whose fsync was deferred by the caller; the next
	// ImmedSync or SyncAll on the fork flushes it.
	Dirty bool
}

// Owner is the one external slot allowed to reference a cached handle.
// The handle keeps a back-reference so destruction can null the slot out,
// which makes a dangling reference structurally impossible.
type Owner struct {
	rel *Relation
}

// Relation returns the handle currently held by this slot, or nil after
// the handle was closed or ownership detached.
func (o *Owner) Relation() *Relation {
	return o.rel
}

// Relation is a cached, lightweight handle to one relation's physical
// storage. Creating one performs no I/O; segment files are opened lazily
// by the segmented file manager.
type Relation struct {
	key   relpath.RelKeyBackend
	owner *Owner

	// targBlock is the advisory insertion-target hint, reset when the
	// handle is destroyed.
	targBlock int64

	cachedNBlocks [relpath.NumForks]int64
	segs          [relpath.NumForks][]*Segment
}

// New constructs a fresh handle with no open segments and all size hints
// unknown.
func New(key relpath.RelKeyBackend) *Relation {
	r := &Relation{key: key, targBlock: UnknownNBlocks}
	for fork := range r.cachedNBlocks {
		r.cachedNBlocks[fork] = UnknownNBlocks
	}
	return r
}

// Key returns the immutable physical identity of the handle.
func (r *Relation) Key() relpath.RelKeyBackend {
	return r.key
}

// IsTemp reports whether the handle names session-temporary storage.
// Temporary relations never fsync.
func (r *Relation) IsTemp() bool {
	return r.key.IsTemp()
}

// Owner returns the owning slot, or nil if the handle is unowned.
func (r *Relation) Owner() *Owner {
	return r.owner
}

// AttachOwner records slot as the handle's sole owner. Attaching a second,
// different owner is a logic error.
func (r *Relation) AttachOwner(slot *Owner) error {
	if r.owner != nil && r.owner != slot {
		return ErrAlreadyOwned
	}
	r.owner = slot
	slot.rel = r
	return nil
}

// DetachOwner detaches ownership only if slot is the current owner;
// a stale slot is a no-op. Reports whether ownership was detached.
func (r *Relation) DetachOwner(slot *Owner) bool {
	if r.owner == nil || r.owner != slot || slot.rel != r {
		return false
	}
	slot.rel = nil
	r.owner = nil
	return true
}

// ClearOwner nulls out the owning slot, if any. Called during handle
// destruction so the owner can never observe a freed handle.
func (r *Relation) ClearOwner() {
	if r.owner != nil {
		r.owner.rel = nil
		r.owner = nil
	}
}

// TargetBlock returns the insertion-target hint, or UnknownNBlocks.
func (r *Relation) TargetBlock() int64 {
	return r.targBlock
}

// SetTargetBlock records the last block hinted for new-row insertion.
func (r *Relation) SetTargetBlock(block int64) {
	r.targBlock = block
}

// CachedNBlocks returns the last known size of the fork without I/O, or
// UnknownNBlocks if never computed. Advisory outside recovery.
func (r *Relation) CachedNBlocks(fork relpath.ForkNumber) int64 {
	return r.cachedNBlocks[fork]
}

// SetCachedNBlocks updates the fork's size hint.
func (r *Relation) SetCachedNBlocks(fork relpath.ForkNumber, nblocks int64) {
	r.cachedNBlocks[fork] = nblocks
}

// Segments returns the fork's open segment descriptors in segment order.
// Only the segmented file manager mutates the returned descriptors.
func (r *Relation) Segments(fork relpath.ForkNumber) []*Segment {
	return r.segs[fork]
}

// OpenSegCount returns the number of open segments of the fork. This is
// tracked exactly rather than inferred from file existence; a gap would
// mean an unnoticed truncation.
func (r *Relation) OpenSegCount(fork relpath.ForkNumber) int {
	return len(r.segs[fork])
}

// AppendSegment registers a newly opened segment descriptor. Segments are
// opened lazily and strictly in segment order.
func (r *Relation) AppendSegment(fork relpath.ForkNumber, seg *Segment) {
	r.segs[fork] = append(r.segs[fork], seg)
}

// DropSegmentsFrom removes and returns the descriptors with index >= n,
// keeping the open-segment count exact during truncation. The caller is
// responsible for closing the returned descriptors.
func (r *Relation) DropSegmentsFrom(fork relpath.ForkNumber, n int) []*Segment {
	if n >= len(r.segs[fork]) {
		return nil
	}
	dropped := r.segs[fork][n:]
	r.segs[fork] = r.segs[fork][:n]
	return dropped
}

// CloseForkSegments closes and forgets the open segment descriptors of
// one fork only. Close errors are collected, not short-circuited.
func (r *Relation) CloseForkSegments(fork relpath.ForkNumber) error {
	var errs error
	for _, seg := range r.segs[fork] {
		if seg.File != nil {
			if err := seg.File.Close(); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	r.segs[fork] = nil
	return errs
}

// CloseSegments closes every open segment descriptor of every fork and
// forgets them, keeping cached size hints and the target hint intact.
// Close errors are collected, not short-circuited: a descriptor that was
// already lost (for example after an external unlink) must not block
// releasing the rest.
func (r *Relation) CloseSegments() error {
	var errs error
	for fork := range r.segs {
		for _, seg := range r.segs[fork] {
			if seg.File != nil {
				if err := seg.File.Close(); err != nil {
					errs = multierr.Append(errs, err)
				}
			}
		}
		r.segs[fork] = nil
	}
	return errs
}
