// Package relpath defines the physical identity of a relation's on-disk
// storage and the deterministic file naming scheme derived from it.
package relpath

import (
	"fmt"
	"path/filepath"
)

// OID is a numeric object identifier assigned by the catalog layer.
// This package treats them as opaque.
type OID uint32

// BackendID scopes a relation's storage to one session. InvalidBackend
// marks shared, permanent storage.
type BackendID int32

const InvalidBackend BackendID = -1

// RelKey identifies a relation's physical storage independent of its
// catalog identity. It is comparable and usable as a map key.
type RelKey struct {
	Tablespace OID
	Database   OID
	Relation   OID
}

func (k RelKey) String() string {
	return fmt.Sprintf("ts%d/db%d/rel%d", k.Tablespace, k.Database, k.Relation)
}

// RelKeyBackend is a RelKey plus its backend scope tag. It is the lookup
// key of the handle cache, immutable once constructed.
type RelKeyBackend struct {
	Key     RelKey
	Backend BackendID
}

// IsTemp reports whether the key names session-temporary storage.
func (k RelKeyBackend) IsTemp() bool {
	return k.Backend != InvalidBackend
}

func (k RelKeyBackend) String() string {
	if k.IsTemp() {
		return fmt.Sprintf("%s@backend%d", k.Key, k.Backend)
	}
	return k.Key.String()
}

// ForkNumber designates one of the independent block address spaces
// belonging to a relation.
type ForkNumber int

const (
	ForkMain ForkNumber = iota
	ForkFSM
	ForkVisibility
	ForkInit

	forkCount
)

// MaxFork is the highest valid fork number; per-fork arrays are sized
// MaxFork+1.
const MaxFork = forkCount - 1

// NumForks is the number of forks a relation can have.
const NumForks = int(forkCount)

var forkNames = [forkCount]string{"main", "fsm", "vm", "init"}
var forkSuffixes = [forkCount]string{"", "_fsm", "_vm", "_init"}

// Valid reports whether f is a member of the closed fork enumeration.
func (f ForkNumber) Valid() bool {
	return f >= ForkMain && f < forkCount
}

func (f ForkNumber) String() string {
	if !f.Valid() {
		return fmt.Sprintf("fork(%d)", int(f))
	}
	return forkNames[f]
}

// suffix returns the filename suffix for the fork; the main fork has none.
func (f ForkNumber) suffix() string {
	return forkSuffixes[f]
}

// Directory returns the directory holding every file of the relation.
func Directory(dataDir string, key RelKeyBackend) string {
	return filepath.Join(
		dataDir,
		fmt.Sprintf("ts%d", key.Key.Tablespace),
		fmt.Sprintf("db%d", key.Key.Database),
	)
}

// FileName returns the bare filename of one segment of one fork. Segment
// zero is unnumbered; later segments carry a ".<segno>" suffix. Temporary
// relations are prefixed with their owning backend so concurrent sessions
// never collide.
func FileName(key RelKeyBackend, fork ForkNumber, segno int64) string {
	var name string
	if key.IsTemp() {
		name = fmt.Sprintf("t%d_%d%s", key.Backend, key.Key.Relation, fork.suffix())
	} else {
		name = fmt.Sprintf("%d%s", key.Key.Relation, fork.suffix())
	}
	if segno > 0 {
		name = fmt.Sprintf("%s.%d", name, segno)
	}
	return name
}

// SegmentPath returns the full path of one segment file of one fork.
func SegmentPath(dataDir string, key RelKeyBackend, fork ForkNumber, segno int64) string {
	return filepath.Join(Directory(dataDir, key), FileName(key, fork, segno))
}
