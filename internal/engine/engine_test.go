package engine

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/relstore/internal/relation"
	relstoreErrors "github.com/iamNilotpal/relstore/pkg/errors"
	"github.com/iamNilotpal/relstore/pkg/logger"
	"github.com/iamNilotpal/relstore/pkg/options"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	opts := options.DefaultOptions()
	opts.DataDir = t.TempDir()
	opts.SegmentBlocks = 4

	eng, err := New(context.Background(), logger.NewNop(), &opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func testKey(relnum relpath.OID) relpath.RelKeyBackend {
	return relpath.RelKeyBackend{
		Key:     relpath.RelKey{Tablespace: 1, Database: 2, Relation: relnum},
		Backend: relpath.InvalidBackend,
	}
}

func filledBlock(marker byte) []byte {
	return bytes.Repeat([]byte{marker}, int(options.BlockSize))
}

func createWithBlocks(t *testing.T, eng *Engine, relnum relpath.OID, markers ...byte) *relation.Relation {
	t.Helper()

	rel, err := eng.Open(testKey(relnum))
	require.NoError(t, err)
	require.NoError(t, eng.Create(rel, relpath.ForkMain, false))
	for i, marker := range markers {
		require.NoError(t, eng.Extend(rel, relpath.ForkMain, int64(i), filledBlock(marker), true))
	}
	return rel
}

func TestSyncAllAttemptsEveryHandle(t *testing.T) {
	eng := newTestEngine(t)

	broken := createWithBlocks(t, eng, 100, 'A')
	healthy := createWithBlocks(t, eng, 200, 'B')

	// Sabotage the first handle's descriptor so its sync fails the way a
	// device error would.
	require.NoError(t, broken.Segments(relpath.ForkMain)[0].File.Close())

	err := eng.SyncAll([]*relation.Relation{broken, healthy})
	require.Error(t, err)

	// The second handle was still synced: its deferred-fsync flag is gone.
	assert.False(t, healthy.Segments(relpath.ForkMain)[0].Dirty)
}

func TestUnlinkAllRedoToleratesMissingFiles(t *testing.T) {
	eng := newTestEngine(t)

	rel, err := eng.Open(testKey(100))
	require.NoError(t, err)

	// Files were never created (or already removed): success, not error.
	require.NoError(t, eng.UnlinkAll([]*relation.Relation{rel}, true))
	require.NoError(t, eng.UnlinkAll([]*relation.Relation{rel}, false))
}

func TestUnlinkAllRemovesEveryFork(t *testing.T) {
	eng := newTestEngine(t)

	rel := createWithBlocks(t, eng, 100, 'A', 'B')
	require.NoError(t, eng.Create(rel, relpath.ForkFSM, false))

	require.NoError(t, eng.UnlinkAll([]*relation.Relation{rel}, false))

	for _, fork := range []relpath.ForkNumber{relpath.ForkMain, relpath.ForkFSM} {
		ok, err := eng.Exists(rel, fork)
		require.NoError(t, err)
		assert.False(t, ok, "fork %s must be gone", fork)
	}
}

func TestBarrierReleasesOncePerGeneration(t *testing.T) {
	eng := newTestEngine(t)
	rel := createWithBlocks(t, eng, 100, 'A')

	// No barrier raised yet: nothing to do.
	done, err := eng.ProcessBarrierRelease()
	require.NoError(t, err)
	assert.False(t, done)

	eng.RaiseReleaseBarrier()

	done, err = eng.ProcessBarrierRelease()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 0, rel.OpenSegCount(relpath.ForkMain))

	// Same generation: no redundant re-release.
	done, err = eng.ProcessBarrierRelease()
	require.NoError(t, err)
	assert.False(t, done)

	// Access after release reopens segments transparently.
	got := make([]byte, options.BlockSize)
	require.NoError(t, eng.Read(rel, relpath.ForkMain, 0, got))
	assert.Equal(t, filledBlock('A'), got)
}

func TestAtEOXactSweepsUnownedHandles(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Open(testKey(100))
	require.NoError(t, err)

	owned, err := eng.Open(testKey(200))
	require.NoError(t, err)

	var slot relation.Owner
	require.NoError(t, eng.SetOwner(&slot, owned))

	assert.Equal(t, 1, eng.AtEOXact())
	assert.Equal(t, 0, eng.AtEOXact())
	assert.Same(t, owned, slot.Relation())
}

func TestTargetBlockHint(t *testing.T) {
	eng := newTestEngine(t)

	rel, err := eng.Open(testKey(100))
	require.NoError(t, err)

	assert.Equal(t, relation.UnknownNBlocks, eng.TargetBlock(rel))
	eng.SetTargetBlock(rel, 12)
	assert.Equal(t, int64(12), eng.TargetBlock(rel))
}

func TestOperationsAfterCloseFail(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.Close())

	_, err := eng.Open(testKey(100))
	require.Error(t, err)
	assert.True(t, relstoreErrors.HasCode(err, relstoreErrors.ErrSystemClosed))

	// Close is idempotent.
	require.NoError(t, eng.Close())
}

func TestCloseKeyDropsDescriptors(t *testing.T) {
	eng := newTestEngine(t)
	rel := createWithBlocks(t, eng, 100, 'A')

	path := rel.Segments(relpath.ForkMain)[0].File.Name()
	require.NoError(t, eng.CloseKey(testKey(100)))

	// File stays on disk; only the handle and descriptors are gone.
	_, err := os.Stat(path)
	require.NoError(t, err)

	fresh, err := eng.Open(testKey(100))
	require.NoError(t, err)
	assert.NotSame(t, rel, fresh)
}
