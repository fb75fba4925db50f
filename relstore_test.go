package relstore_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/relstore"
	"github.com/iamNilotpal/relstore/pkg/errors"
	"github.com/iamNilotpal/relstore/pkg/options"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

func newTestStore(t *testing.T) *relstore.Store {
	t.Helper()

	store, err := relstore.New(
		context.Background(), "relstore-test",
		options.WithDataDir(t.TempDir()),
		options.WithSegmentBlocks(4),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testKey(relnum relpath.OID) relpath.RelKeyBackend {
	return relpath.RelKeyBackend{
		Key:     relpath.RelKey{Tablespace: 1663, Database: 5, Relation: relnum},
		Backend: relpath.InvalidBackend,
	}
}

func filledBlock(marker byte) []byte {
	return bytes.Repeat([]byte{marker}, int(options.BlockSize))
}

func TestReopenSeesPersistedBlocks(t *testing.T) {
	store := newTestStore(t)
	key := testKey(16384)

	rel, err := store.Open(key)
	require.NoError(t, err)
	require.NoError(t, store.Create(rel, relpath.ForkMain, false))
	for i, marker := range []byte{'A', 'B', 'C'} {
		require.NoError(t, store.Extend(rel, relpath.ForkMain, int64(i), filledBlock(marker), false))
	}

	require.NoError(t, store.CloseRelation(rel))

	reopened, err := store.Open(key)
	require.NoError(t, err)

	nblocks, err := store.NBlocks(reopened, relpath.ForkMain)
	require.NoError(t, err)
	assert.Equal(t, int64(3), nblocks)

	got := make([]byte, options.BlockSize)
	require.NoError(t, store.Read(reopened, relpath.ForkMain, 1, got))
	assert.Equal(t, filledBlock('B'), got)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rel, err := store.Open(testKey(16385))
	require.NoError(t, err)
	require.NoError(t, store.Create(rel, relpath.ForkMain, false))
	require.NoError(t, store.Extend(rel, relpath.ForkMain, 0, filledBlock('A'), true))

	require.NoError(t, store.Write(rel, relpath.ForkMain, 0, filledBlock('Q'), true))

	got := make([]byte, options.BlockSize)
	require.NoError(t, store.Read(rel, relpath.ForkMain, 0, got))
	assert.Equal(t, filledBlock('Q'), got)
}

func TestZeroExtendProperty(t *testing.T) {
	store := newTestStore(t)

	rel, err := store.Open(testKey(16386))
	require.NoError(t, err)
	require.NoError(t, store.Create(rel, relpath.ForkMain, false))
	require.NoError(t, store.Extend(rel, relpath.ForkMain, 0, filledBlock('A'), true))

	prior, err := store.NBlocks(rel, relpath.ForkMain)
	require.NoError(t, err)

	require.NoError(t, store.ZeroExtend(rel, relpath.ForkMain, prior, 5, true))

	nblocks, err := store.NBlocks(rel, relpath.ForkMain)
	require.NoError(t, err)
	assert.Equal(t, prior+5, nblocks)

	zero := make([]byte, options.BlockSize)
	got := make([]byte, options.BlockSize)
	for b := prior; b < nblocks; b++ {
		require.NoError(t, store.Read(rel, relpath.ForkMain, b, got))
		assert.Equal(t, zero, got)
	}
}

func TestTruncateIdempotent(t *testing.T) {
	store := newTestStore(t)

	rel, err := store.Open(testKey(16387))
	require.NoError(t, err)
	require.NoError(t, store.Create(rel, relpath.ForkMain, false))
	require.NoError(t, store.ZeroExtend(rel, relpath.ForkMain, 0, 9, true))

	require.NoError(t, store.Truncate(rel, relpath.ForkMain, 6))
	nblocks, err := store.NBlocks(rel, relpath.ForkMain)
	require.NoError(t, err)
	assert.Equal(t, int64(6), nblocks)

	require.NoError(t, store.Truncate(rel, relpath.ForkMain, 6))
	nblocks, err = store.NBlocks(rel, relpath.ForkMain)
	require.NoError(t, err)
	assert.Equal(t, int64(6), nblocks)
}

func TestNBlocksCachedIsAdvisory(t *testing.T) {
	store := newTestStore(t)

	rel, err := store.Open(testKey(16388))
	require.NoError(t, err)

	cached, err := store.NBlocksCached(rel, relpath.ForkMain)
	require.NoError(t, err)
	assert.Equal(t, relstore.UnknownNBlocks, cached)

	require.NoError(t, store.Create(rel, relpath.ForkMain, false))
	require.NoError(t, store.Extend(rel, relpath.ForkMain, 0, filledBlock('A'), true))

	cached, err = store.NBlocksCached(rel, relpath.ForkMain)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached)
}

func TestOwnershipLifecycle(t *testing.T) {
	store := newTestStore(t)

	rel, err := store.Open(testKey(16389))
	require.NoError(t, err)

	var slot relstore.Owner
	require.NoError(t, store.SetOwner(&slot, rel))
	assert.Same(t, rel, slot.Relation())

	// Owned handles survive the end-of-transaction sweep.
	assert.Equal(t, 0, store.AtEOXact())
	assert.Same(t, rel, slot.Relation())

	require.NoError(t, store.CloseRelation(rel))
	assert.Nil(t, slot.Relation())
}

func TestValidationErrors(t *testing.T) {
	store := newTestStore(t)

	rel, err := store.Open(testKey(16390))
	require.NoError(t, err)

	err = store.Create(rel, relpath.ForkNumber(99), false)
	require.Error(t, err)
	_, ok := errors.AsValidationError(err)
	assert.True(t, ok)

	err = store.Read(rel, relpath.ForkMain, 0, make([]byte, 16))
	require.Error(t, err)
	_, ok = errors.AsValidationError(err)
	assert.True(t, ok)

	err = store.Write(rel, relpath.ForkMain, -1, filledBlock('A'), true)
	require.Error(t, err)
	_, ok = errors.AsValidationError(err)
	assert.True(t, ok)
}

func TestSyncAllAndUnlinkAll(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Open(testKey(16391))
	require.NoError(t, err)
	second, err := store.Open(testKey(16392))
	require.NoError(t, err)

	for _, rel := range []*relstore.Relation{first, second} {
		require.NoError(t, store.Create(rel, relpath.ForkMain, false))
		require.NoError(t, store.Extend(rel, relpath.ForkMain, 0, filledBlock('A'), true))
	}

	require.NoError(t, store.SyncAll([]*relstore.Relation{first, second}))
	require.NoError(t, store.UnlinkAll([]*relstore.Relation{first, second}, false))

	for _, rel := range []*relstore.Relation{first, second} {
		ok, err := store.Exists(rel, relpath.ForkMain)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	// Unlinking again replays cleanly under redo.
	require.NoError(t, store.UnlinkAll([]*relstore.Relation{first, second}, true))
}
