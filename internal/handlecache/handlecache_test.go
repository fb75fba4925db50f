package handlecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/relstore/internal/relation"
	"github.com/iamNilotpal/relstore/pkg/logger"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

func testKey(relnum relpath.OID) relpath.RelKeyBackend {
	return relpath.RelKeyBackend{
		Key:     relpath.RelKey{Tablespace: 1, Database: 2, Relation: relnum},
		Backend: relpath.InvalidBackend,
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(logger.NewNop())
}

func TestOpenIsIdempotentPerKey(t *testing.T) {
	c := newTestCache(t)

	a := c.Open(testKey(100))
	b := c.Open(testKey(100))

	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.UnownedLen())
}

func TestOpenAfterCloseYieldsFreshHandle(t *testing.T) {
	c := newTestCache(t)

	a := c.Open(testKey(100))
	a.SetCachedNBlocks(relpath.ForkMain, 42)
	a.SetTargetBlock(41)

	require.NoError(t, c.Close(a))
	assert.Equal(t, 0, c.Len())

	b := c.Open(testKey(100))
	assert.NotSame(t, a, b)
	assert.Equal(t, relation.UnknownNBlocks, b.CachedNBlocks(relpath.ForkMain))
	assert.Equal(t, relation.UnknownNBlocks, b.TargetBlock())
}

func TestSetOwnerTakesHandleOffUnownedList(t *testing.T) {
	c := newTestCache(t)
	rel := c.Open(testKey(100))

	var slot relation.Owner
	require.NoError(t, c.SetOwner(&slot, rel))

	assert.Same(t, rel, slot.Relation())
	assert.Equal(t, 0, c.UnownedLen())
}

func TestSetOwnerConflictIsLogicError(t *testing.T) {
	c := newTestCache(t)
	rel := c.Open(testKey(100))

	var first, second relation.Owner
	require.NoError(t, c.SetOwner(&first, rel))

	err := c.SetOwner(&second, rel)
	require.ErrorIs(t, err, relation.ErrAlreadyOwned)
	assert.Same(t, rel, first.Relation())
	assert.Nil(t, second.Relation())
}

func TestCloseNullsOwnerSlot(t *testing.T) {
	c := newTestCache(t)
	rel := c.Open(testKey(100))

	var slot relation.Owner
	require.NoError(t, c.SetOwner(&slot, rel))

	require.NoError(t, c.Close(rel))
	assert.Nil(t, slot.Relation())
}

func TestClearOwnerWithStaleSlotIsNoop(t *testing.T) {
	c := newTestCache(t)
	rel := c.Open(testKey(100))

	var owner, stale relation.Owner
	require.NoError(t, c.SetOwner(&owner, rel))

	c.ClearOwner(&stale, rel)
	assert.Same(t, rel, owner.Relation())
	assert.Equal(t, 0, c.UnownedLen())

	c.ClearOwner(&owner, rel)
	assert.Nil(t, owner.Relation())
	assert.Equal(t, 1, c.UnownedLen())
}

func TestCloseKeyMissingIsNoop(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.CloseKey(testKey(999)))
}

func TestAtEOXactSweepsOnlyUnowned(t *testing.T) {
	c := newTestCache(t)

	unowned := c.Open(testKey(100))
	owned := c.Open(testKey(200))

	var slot relation.Owner
	require.NoError(t, c.SetOwner(&slot, owned))

	assert.Equal(t, 1, c.AtEOXact())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.UnownedLen())

	_, stillCached := c.Lookup(unowned.Key())
	assert.False(t, stillCached)
	_, stillCached = c.Lookup(owned.Key())
	assert.True(t, stillCached)

	// A second sweep with no intervening Open finds nothing to destroy.
	assert.Equal(t, 0, c.AtEOXact())
}

func TestReleaseKeepsCachedMetadata(t *testing.T) {
	c := newTestCache(t)
	rel := c.Open(testKey(100))

	file, err := os.Create(filepath.Join(t.TempDir(), "100"))
	require.NoError(t, err)
	rel.AppendSegment(relpath.ForkMain, &relation.Segment{File: file, Segno: 0})
	rel.SetCachedNBlocks(relpath.ForkMain, 7)
	rel.SetTargetBlock(6)

	require.NoError(t, c.Release(rel))

	assert.Equal(t, 0, rel.OpenSegCount(relpath.ForkMain))
	assert.Equal(t, int64(7), rel.CachedNBlocks(relpath.ForkMain))
	assert.Equal(t, int64(6), rel.TargetBlock())
	assert.Equal(t, 1, c.Len())
}

func TestReleaseAllReportsWork(t *testing.T) {
	c := newTestCache(t)
	rel := c.Open(testKey(100))

	released, err := c.ReleaseAll()
	require.NoError(t, err)
	assert.False(t, released)

	file, err := os.Create(filepath.Join(t.TempDir(), "100"))
	require.NoError(t, err)
	rel.AppendSegment(relpath.ForkMain, &relation.Segment{File: file, Segno: 0})

	released, err = c.ReleaseAll()
	require.NoError(t, err)
	assert.True(t, released)
}

func TestCloseAll(t *testing.T) {
	c := newTestCache(t)
	c.Open(testKey(100))
	c.Open(testKey(200))

	var slot relation.Owner
	rel := c.Open(testKey(300))
	require.NoError(t, c.SetOwner(&slot, rel))

	require.NoError(t, c.CloseAll())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.UnownedLen())
	assert.Nil(t, slot.Relation())
}
