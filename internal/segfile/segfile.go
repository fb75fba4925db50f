// Package segfile implements the segmented file manager. Each fork of a
// relation is physically split into fixed-size segment files; this package
// opens, creates, extends, truncates and syncs them on demand, keeping the
// handle's open-segment count exactly in step with what is on disk.
package segfile

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamNilotpal/relstore/internal/relation"
	relstoreErrors "github.com/iamNilotpal/relstore/pkg/errors"
	"github.com/iamNilotpal/relstore/pkg/filesys"
	"github.com/iamNilotpal/relstore/pkg/options"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

// segment opening behavior when the file is missing.
type openBehavior int

const (
	openFail   openBehavior = iota // missing segment is an error
	openCreate                     // create the segment file if missing
)

// Store performs all block-granularity I/O for relation forks. It is
// stateless beyond the handle it is given on each call.
type Store struct {
	log  *zap.SugaredLogger
	opts *options.Options
}

// New creates a segmented file manager over the configured data directory.
func New(log *zap.SugaredLogger, opts *options.Options) *Store {
	return &Store{log: log, opts: opts}
}

// Exists reports whether the fork's first segment file is present, without
// opening the whole segment chain.
func (s *Store) Exists(rel *relation.Relation, fork relpath.ForkNumber) (bool, error) {
	if rel.OpenSegCount(fork) > 0 {
		return true, nil
	}

	path := relpath.SegmentPath(s.opts.DataDir, rel.Key(), fork, 0)
	ok, err := filesys.Exists(path)
	if err != nil {
		return false, relstoreErrors.NewStorageError(
			err, relstoreErrors.ErrIOGeneral, "Failed to probe fork existence",
		).
			WithPath(path).
			WithFork(fork.String())
	}
	return ok, nil
}

// Create creates the fork's first segment file. During redo an already
// existing file is tolerated, since recovery may replay a creation whose
// effect is already on disk.
func (s *Store) Create(rel *relation.Relation, fork relpath.ForkNumber, isRedo bool) error {
	if rel.OpenSegCount(fork) > 0 {
		return nil
	}

	dir := relpath.Directory(s.opts.DataDir, rel.Key())
	if err := filesys.CreateDir(dir, 0700, true); err != nil {
		return relstoreErrors.NewStorageError(
			err, relstoreErrors.ErrSegmentCreateFailed, "Failed to create relation directory",
		).
			WithPath(dir).
			WithFork(fork.String())
	}

	path := relpath.SegmentPath(s.opts.DataDir, rel.Key(), fork, 0)
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if !errors.Is(err, fs.ErrExist) || !isRedo {
			return relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrSegmentCreateFailed, "Failed to create first segment file",
			).
				WithPath(path).
				WithFork(fork.String()).
				WithSegment(0)
		}

		// Redo replay against a creation already on disk: reopen instead.
		file, err = os.OpenFile(path, os.O_RDWR, 0600)
		if err != nil {
			return relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrSegmentOpenFailed, "Failed to reopen existing segment during redo",
			).
				WithPath(path).
				WithFork(fork.String()).
				WithSegment(0)
		}
	}

	s.log.Debugw("Created fork", "relation", rel.Key().String(), "fork", fork.String(), "path", path, "isRedo", isRedo)
	rel.AppendSegment(fork, &relation.Segment{File: file, Segno: 0})
	return nil
}

// Extend writes one block at blocknum, growing the fork by exactly one
// block. Extension must be sequential relative to the fork's current size;
// a block number past end-of-fork is a logic error, while a replayed write
// of an existing tail block is accepted.
func (s *Store) Extend(
	rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte, skipFsync bool,
) error {
	if err := s.checkBuffer(buffer, fork, blocknum); err != nil {
		return err
	}

	nblocks, err := s.NBlocks(rel, fork)
	if err != nil {
		return err
	}

	if blocknum > nblocks {
		return relstoreErrors.NewStorageError(
			nil, relstoreErrors.ErrSequenceViolation, "Extend must immediately follow the current end of fork",
		).
			WithFork(fork.String()).
			WithBlock(blocknum).
			WithDetail("currentNBlocks", nblocks)
	}

	seg, err := s.segmentForBlock(rel, fork, blocknum, openCreate)
	if err != nil {
		return err
	}

	if err := s.writeBlock(rel, seg, fork, blocknum, buffer); err != nil {
		return err
	}

	if err := s.syncAfterWrite(rel, fork, seg, skipFsync); err != nil {
		return err
	}

	if blocknum >= nblocks {
		rel.SetCachedNBlocks(fork, blocknum+1)
	}
	return nil
}

// ZeroExtend grows the fork by nblocks zero-filled blocks starting at
// blocknum. Either every requested block becomes visible with zero content
// or the fork is restored to its prior size.
func (s *Store) ZeroExtend(
	rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, nblocks int64, skipFsync bool,
) error {
	if nblocks <= 0 {
		return relstoreErrors.NewValidationError(
			nil, relstoreErrors.ErrValidationInvalidData, "Zero-extend block count must be positive",
		).WithProvided(nblocks)
	}

	cur, err := s.NBlocks(rel, fork)
	if err != nil {
		return err
	}

	if blocknum != cur {
		return relstoreErrors.NewStorageError(
			nil, relstoreErrors.ErrSequenceViolation, "Zero-extend must start at the current end of fork",
		).
			WithFork(fork.String()).
			WithBlock(blocknum).
			WithDetail("currentNBlocks", cur)
	}

	remaining := nblocks
	next := blocknum
	for remaining > 0 {
		seg, err := s.segmentForBlock(rel, fork, next, openCreate)
		if err != nil {
			s.rollbackZeroExtend(rel, fork, cur)
			return err
		}

		segOffset := (next % s.opts.SegmentBlocks) * options.BlockSize
		count := s.opts.SegmentBlocks - next%s.opts.SegmentBlocks
		if count > remaining {
			count = remaining
		}

		if err := s.zeroFill(seg, segOffset, count*options.BlockSize); err != nil {
			s.rollbackZeroExtend(rel, fork, cur)
			return relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrForkExtendFailed, "Failed to zero-extend segment",
			).
				WithFork(fork.String()).
				WithBlock(next).
				WithSegment(int(seg.Segno)).
				WithFileName(seg.File.Name())
		}

		if err := s.syncAfterWrite(rel, fork, seg, skipFsync); err != nil {
			s.rollbackZeroExtend(rel, fork, cur)
			return err
		}

		next += count
		remaining -= count
	}

	rel.SetCachedNBlocks(fork, blocknum+nblocks)
	s.log.Debugw(
		"Zero-extended fork",
		"relation", rel.Key().String(),
		"fork", fork.String(),
		"from", blocknum,
		"nblocks", nblocks,
	)
	return nil
}

// Read reads exactly one block into buffer. A short read is a fatal
// consistency error, never a partial result.
func (s *Store) Read(rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte) error {
	if err := s.checkBuffer(buffer, fork, blocknum); err != nil {
		return err
	}

	seg, err := s.segmentForBlock(rel, fork, blocknum, openFail)
	if err != nil {
		return err
	}

	offset := (blocknum % s.opts.SegmentBlocks) * options.BlockSize
	n, err := seg.File.ReadAt(buffer, offset)
	if err != nil || int64(n) != options.BlockSize {
		code := relstoreErrors.ErrIOGeneral
		if int64(n) != options.BlockSize {
			code = relstoreErrors.ErrIOShortRead
		}
		return relstoreErrors.NewStorageError(err, code, "Failed to read block").
			WithFork(fork.String()).
			WithBlock(blocknum).
			WithSegment(int(seg.Segno)).
			WithFileName(seg.File.Name()).
			WithDetail("bytesRead", n).
			WithDetail("expectedBytes", options.BlockSize)
	}
	return nil
}

// Write writes one existing block in place. It never grows the fork; use
// Extend or ZeroExtend for that.
func (s *Store) Write(
	rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, buffer []byte, skipFsync bool,
) error {
	if err := s.checkBuffer(buffer, fork, blocknum); err != nil {
		return err
	}

	seg, err := s.segmentForBlock(rel, fork, blocknum, openFail)
	if err != nil {
		return err
	}

	if err := s.writeBlock(rel, seg, fork, blocknum, buffer); err != nil {
		return err
	}
	return s.syncAfterWrite(rel, fork, seg, skipFsync)
}

// Prefetch issues an advisory read-ahead hint for the block. It reports
// whether the block address was plausible and the hint was issued; absence
// of OS support is not an error.
func (s *Store) Prefetch(rel *relation.Relation, fork relpath.ForkNumber, blocknum int64) (bool, error) {
	seg, err := s.segmentForBlock(rel, fork, blocknum, openFail)
	if err != nil {
		if relstoreErrors.HasCode(err, relstoreErrors.ErrSegmentNotFound) ||
			relstoreErrors.HasCode(err, relstoreErrors.ErrForkNotFound) {
			return false, nil
		}
		return false, err
	}

	offset := (blocknum % s.opts.SegmentBlocks) * options.BlockSize
	return fadviseWillNeed(seg.File, offset, options.BlockSize)
}

// Writeback asks the OS to begin flushing a contiguous run of blocks to
// stable storage without waiting for confirmation. It is a hint, not a
// durability guarantee; use ImmedSync for that.
func (s *Store) Writeback(rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, nblocks int64) error {
	for nblocks > 0 {
		seg, err := s.segmentForBlock(rel, fork, blocknum, openFail)
		if err != nil {
			// Segments may have been unlinked or truncated away since the
			// blocks were dirtied; a missing range is simply not flushed.
			if relstoreErrors.HasCode(err, relstoreErrors.ErrSegmentNotFound) ||
				relstoreErrors.HasCode(err, relstoreErrors.ErrForkNotFound) {
				return nil
			}
			return err
		}

		segOffset := (blocknum % s.opts.SegmentBlocks) * options.BlockSize
		count := s.opts.SegmentBlocks - blocknum%s.opts.SegmentBlocks
		if count > nblocks {
			count = nblocks
		}

		if err := syncFileRange(seg.File, segOffset, count*options.BlockSize); err != nil {
			return relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrIOSyncFailed, "Failed to initiate writeback",
			).
				WithFork(fork.String()).
				WithBlock(blocknum).
				WithSegment(int(seg.Segno)).
				WithFileName(seg.File.Name())
		}

		blocknum += count
		nblocks -= count
	}
	return nil
}

// NBlocks returns the authoritative size of the fork in blocks, probing
// segment file sizes and opening further segments as needed. The result is
// recorded as the fork's cached size hint.
func (s *Store) NBlocks(rel *relation.Relation, fork relpath.ForkNumber) (int64, error) {
	segBlocks := s.opts.SegmentBlocks

	if rel.OpenSegCount(fork) == 0 {
		seg, err := s.openSegment(rel, fork, 0, openFail)
		if err != nil {
			if relstoreErrors.HasCode(err, relstoreErrors.ErrSegmentNotFound) {
				return 0, relstoreErrors.NewStorageError(
					err, relstoreErrors.ErrForkNotFound, "Fork does not exist",
				).
					WithFork(fork.String())
			}
			return 0, err
		}
		rel.AppendSegment(fork, seg)
	}

	// Walk forward from the last open segment: every full segment implies
	// a successor may exist; the first partial or missing one ends the fork.
	for {
		segs := rel.Segments(fork)
		last := segs[len(segs)-1]

		segSize, err := s.segmentNBlocks(last, fork)
		if err != nil {
			return 0, err
		}

		if segSize < segBlocks {
			total := last.Segno*segBlocks + segSize
			rel.SetCachedNBlocks(fork, total)
			return total, nil
		}

		next, err := s.openSegment(rel, fork, last.Segno+1, openFail)
		if err != nil {
			if relstoreErrors.HasCode(err, relstoreErrors.ErrSegmentNotFound) {
				total := (last.Segno + 1) * segBlocks
				rel.SetCachedNBlocks(fork, total)
				return total, nil
			}
			return 0, err
		}
		rel.AppendSegment(fork, next)
	}
}

// NBlocksCached returns the fork's last known size without I/O, or
// relation.UnknownNBlocks if never computed. Reliable only during recovery
// replay; elsewhere it is an advisory hint.
func (s *Store) NBlocksCached(rel *relation.Relation, fork relpath.ForkNumber) int64 {
	return rel.CachedNBlocks(fork)
}

// Truncate shrinks the fork to nblocks. Trailing segment files wholly
// above the cutoff are truncated to zero length and their descriptors
// closed; the boundary segment is cut to the remainder. Truncating to the
// current size is a no-op, so replaying the same truncation is idempotent.
func (s *Store) Truncate(rel *relation.Relation, fork relpath.ForkNumber, nblocks int64) error {
	cur, err := s.NBlocks(rel, fork)
	if err != nil {
		return err
	}

	if nblocks == cur {
		return nil
	}
	if nblocks > cur {
		return relstoreErrors.NewStorageError(
			nil, relstoreErrors.ErrForkTruncateFailed, "Cannot truncate fork to more blocks than it has",
		).
			WithFork(fork.String()).
			WithBlock(nblocks).
			WithDetail("currentNBlocks", cur)
	}

	segBlocks := s.opts.SegmentBlocks
	for i := rel.OpenSegCount(fork) - 1; i >= 0; i-- {
		seg := rel.Segments(fork)[i]
		priorBlocks := seg.Segno * segBlocks

		switch {
		case priorBlocks >= nblocks:
			// Whole segment is above the cutoff: empty the file and close
			// the descriptor so the open-segment count stays exact.
			if err := seg.File.Truncate(0); err != nil {
				return s.truncateError(err, fork, seg, nblocks)
			}
			dropped := rel.DropSegmentsFrom(fork, i)
			for _, d := range dropped {
				if closeErr := d.File.Close(); closeErr != nil {
					s.log.Warnw(
						"Failed to close truncated segment",
						"relation", rel.Key().String(),
						"fork", fork.String(),
						"segment", d.Segno,
						"error", closeErr,
					)
				}
			}

		case priorBlocks+segBlocks > nblocks:
			lastSegBlocks := nblocks - priorBlocks
			if err := seg.File.Truncate(lastSegBlocks * options.BlockSize); err != nil {
				return s.truncateError(err, fork, seg, nblocks)
			}
			if !rel.IsTemp() {
				seg.Dirty = true
			}
		}
	}

	rel.SetCachedNBlocks(fork, nblocks)
	s.log.Infow(
		"Truncated fork",
		"relation", rel.Key().String(),
		"fork", fork.String(),
		"oldNBlocks", cur,
		"newNBlocks", nblocks,
	)
	return nil
}

// ImmedSync forces a durable flush of the fork's segments. The whole
// segment chain is opened first so blocks written before a Release are
// covered too.
func (s *Store) ImmedSync(rel *relation.Relation, fork relpath.ForkNumber) error {
	if _, err := s.NBlocks(rel, fork); err != nil {
		return err
	}

	if rel.IsTemp() {
		return nil
	}

	var errs error
	for _, seg := range rel.Segments(fork) {
		if err := fdatasync(seg.File); err != nil {
			errs = multierr.Append(errs, relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrIOSyncFailed, "Failed to sync segment",
			).
				WithFork(fork.String()).
				WithSegment(int(seg.Segno)).
				WithFileName(seg.File.Name()))
			continue
		}
		seg.Dirty = false
	}
	return errs
}

// Unlink removes the fork's segment files from disk. Missing files are
// tolerated unconditionally: the goal state, file absent, is already
// achieved. Open descriptors are dropped first.
func (s *Store) Unlink(rel *relation.Relation, fork relpath.ForkNumber, isRedo bool) error {
	if err := rel.CloseForkSegments(fork); err != nil {
		s.log.Warnw(
			"Failed to close segments before unlink",
			"relation", rel.Key().String(),
			"fork", fork.String(),
			"error", err,
		)
	}
	rel.SetCachedNBlocks(fork, relation.UnknownNBlocks)

	var errs error
	for segno := int64(0); ; segno++ {
		path := relpath.SegmentPath(s.opts.DataDir, rel.Key(), fork, segno)

		ok, err := filesys.Exists(path)
		if err != nil {
			errs = multierr.Append(errs, relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrIOGeneral, "Failed to probe segment during unlink",
			).
				WithPath(path).
				WithFork(fork.String()).
				WithSegment(int(segno)))
			break
		}
		if !ok {
			break
		}

		if err := filesys.Remove(path); err != nil {
			errs = multierr.Append(errs, relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrSegmentUnlinkFailed, "Failed to unlink segment file",
			).
				WithPath(path).
				WithFork(fork.String()).
				WithSegment(int(segno)))
		}
	}

	if errs == nil {
		s.log.Debugw("Unlinked fork", "relation", rel.Key().String(), "fork", fork.String(), "isRedo", isRedo)
	}
	return errs
}

// SyncDirty flushes only the segments whose fsync was previously deferred
// with skipFsync. Used by checkpoint-style bulk syncs.
func (s *Store) SyncDirty(rel *relation.Relation, fork relpath.ForkNumber) error {
	if rel.IsTemp() {
		return nil
	}

	var errs error
	for _, seg := range rel.Segments(fork) {
		if !seg.Dirty {
			continue
		}
		if err := fdatasync(seg.File); err != nil {
			errs = multierr.Append(errs, relstoreErrors.NewStorageError(
				err, relstoreErrors.ErrIOSyncFailed, "Failed to sync dirty segment",
			).
				WithFork(fork.String()).
				WithSegment(int(seg.Segno)).
				WithFileName(seg.File.Name()))
			continue
		}
		seg.Dirty = false
	}
	return errs
}

// segmentForBlock ensures every segment up to the one containing blocknum
// is open, in non-decreasing segment order, and returns that segment.
func (s *Store) segmentForBlock(
	rel *relation.Relation, fork relpath.ForkNumber, blocknum int64, behavior openBehavior,
) (*relation.Segment, error) {
	targetSegno := blocknum / s.opts.SegmentBlocks

	for next := int64(rel.OpenSegCount(fork)); next <= targetSegno; next++ {
		seg, err := s.openSegment(rel, fork, next, behavior)
		if err != nil {
			if next == 0 && relstoreErrors.HasCode(err, relstoreErrors.ErrSegmentNotFound) {
				return nil, relstoreErrors.NewStorageError(
					err, relstoreErrors.ErrForkNotFound, "Fork does not exist",
				).
					WithFork(fork.String()).
					WithBlock(blocknum)
			}
			return nil, err
		}
		rel.AppendSegment(fork, seg)
	}

	return rel.Segments(fork)[targetSegno], nil
}

// openSegment opens one segment file of the fork.
func (s *Store) openSegment(
	rel *relation.Relation, fork relpath.ForkNumber, segno int64, behavior openBehavior,
) (*relation.Segment, error) {
	path := relpath.SegmentPath(s.opts.DataDir, rel.Key(), fork, segno)

	flags := os.O_RDWR
	if behavior == openCreate {
		flags |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flags, 0600)
	if err != nil {
		code := relstoreErrors.ErrSegmentOpenFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = relstoreErrors.ErrSegmentNotFound
		}
		return nil, relstoreErrors.NewStorageError(err, code, "Failed to open segment file").
			WithPath(path).
			WithFork(fork.String()).
			WithSegment(int(segno))
	}

	s.log.Debugw(
		"Opened segment file",
		"relation", rel.Key().String(),
		"fork", fork.String(),
		"segment", segno,
		"path", path,
	)
	return &relation.Segment{File: file, Segno: segno}, nil
}

// segmentNBlocks returns the number of complete blocks in the segment file.
func (s *Store) segmentNBlocks(seg *relation.Segment, fork relpath.ForkNumber) (int64, error) {
	stat, err := seg.File.Stat()
	if err != nil {
		return 0, relstoreErrors.NewStorageError(
			err, relstoreErrors.ErrIOGeneral, "Failed to stat segment file",
		).
			WithFork(fork.String()).
			WithSegment(int(seg.Segno)).
			WithFileName(seg.File.Name())
	}
	return stat.Size() / options.BlockSize, nil
}

// writeBlock writes one block at its in-segment offset, treating a short
// write as fatal.
func (s *Store) writeBlock(
	rel *relation.Relation, seg *relation.Segment, fork relpath.ForkNumber, blocknum int64, buffer []byte,
) error {
	offset := (blocknum % s.opts.SegmentBlocks) * options.BlockSize
	n, err := seg.File.WriteAt(buffer, offset)
	if err != nil || int64(n) != options.BlockSize {
		code := relstoreErrors.ErrIOGeneral
		if int64(n) != options.BlockSize {
			code = relstoreErrors.ErrIOShortWrite
		}
		return relstoreErrors.NewStorageError(err, code, "Failed to write block").
			WithFork(fork.String()).
			WithBlock(blocknum).
			WithSegment(int(seg.Segno)).
			WithFileName(seg.File.Name()).
			WithDetail("bytesWritten", n).
			WithDetail("expectedBytes", options.BlockSize)
	}
	return nil
}

// zeroFill extends the segment with length zero bytes at offset, using
// file preallocation when the OS supports it.
func (s *Store) zeroFill(seg *relation.Segment, offset, length int64) error {
	done, err := fallocate(seg.File, offset, length)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	// Fallback: write zero buffers in bounded chunks.
	chunk := 16 * options.BlockSize
	zeros := make([]byte, chunk)
	for length > 0 {
		n := int64(chunk)
		if n > length {
			n = length
		}
		written, err := seg.File.WriteAt(zeros[:n], offset)
		if err != nil {
			return err
		}
		if int64(written) != n {
			return errors.New("short write while zero-filling segment")
		}
		offset += n
		length -= n
	}
	return nil
}

// rollbackZeroExtend restores the fork to its prior size after a failed
// zero-extension, so no partially-written state becomes visible.
func (s *Store) rollbackZeroExtend(rel *relation.Relation, fork relpath.ForkNumber, prior int64) {
	if err := s.Truncate(rel, fork, prior); err != nil {
		s.log.Errorw(
			"Failed to roll back partial zero-extend",
			"relation", rel.Key().String(),
			"fork", fork.String(),
			"priorNBlocks", prior,
			"error", err,
		)
	}
}

// syncAfterWrite applies the caller's durability request: fsync now, or
// mark the segment dirty for a later bulk sync. Temporary relations never
// fsync.
func (s *Store) syncAfterWrite(
	rel *relation.Relation, fork relpath.ForkNumber, seg *relation.Segment, skipFsync bool,
) error {
	if rel.IsTemp() {
		return nil
	}

	if skipFsync {
		seg.Dirty = true
		return nil
	}

	if err := fdatasync(seg.File); err != nil {
		return relstoreErrors.NewStorageError(
			err, relstoreErrors.ErrIOSyncFailed, "Failed to sync segment after write",
		).
			WithFork(fork.String()).
			WithSegment(int(seg.Segno)).
			WithFileName(seg.File.Name())
	}
	seg.Dirty = false
	return nil
}

func (s *Store) checkBuffer(buffer []byte, fork relpath.ForkNumber, blocknum int64) error {
	if int64(len(buffer)) != options.BlockSize {
		return relstoreErrors.NewValidationError(
			nil, relstoreErrors.ErrValidationInvalidData, "Buffer length must equal the block size",
		).
			WithProvided(len(buffer)).
			WithExpected(options.BlockSize).
			WithDetail("fork", fork.String()).
			WithDetail("block", blocknum)
	}
	return nil
}

func (s *Store) truncateError(
	err error, fork relpath.ForkNumber, seg *relation.Segment, nblocks int64,
) error {
	return relstoreErrors.NewStorageError(
		err, relstoreErrors.ErrForkTruncateFailed, "Failed to truncate segment file",
	).
		WithFork(fork.String()).
		WithSegment(int(seg.Segno)).
		WithFileName(seg.File.Name()).
		WithDetail("targetNBlocks", nblocks)
}
