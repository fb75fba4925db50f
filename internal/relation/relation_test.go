package relation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/relstore/pkg/relpath"
)

func testKey() relpath.RelKeyBackend {
	return relpath.RelKeyBackend{
		Key:     relpath.RelKey{Tablespace: 1, Database: 2, Relation: 300},
		Backend: relpath.InvalidBackend,
	}
}

func tempSegment(t *testing.T, segno int64) *Segment {
	t.Helper()
	file, err := os.Create(filepath.Join(t.TempDir(), "seg"))
	require.NoError(t, err)
	return &Segment{File: file, Segno: segno}
}

func TestNewHandleHasUnknownMetadata(t *testing.T) {
	rel := New(testKey())

	assert.Equal(t, UnknownNBlocks, rel.TargetBlock())
	for fork := relpath.ForkMain; fork <= relpath.MaxFork; fork++ {
		assert.Equal(t, UnknownNBlocks, rel.CachedNBlocks(fork))
		assert.Equal(t, 0, rel.OpenSegCount(fork))
	}
	assert.Nil(t, rel.Owner())
}

func TestAttachDetachOwner(t *testing.T) {
	rel := New(testKey())

	var slot Owner
	require.NoError(t, rel.AttachOwner(&slot))
	assert.Same(t, rel, slot.Relation())

	// Re-attaching the same slot is fine.
	require.NoError(t, rel.AttachOwner(&slot))

	var other Owner
	require.ErrorIs(t, rel.AttachOwner(&other), ErrAlreadyOwned)

	assert.False(t, rel.DetachOwner(&other))
	assert.True(t, rel.DetachOwner(&slot))
	assert.Nil(t, slot.Relation())
	assert.Nil(t, rel.Owner())
}

func TestClearOwnerNullsSlot(t *testing.T) {
	rel := New(testKey())

	var slot Owner
	require.NoError(t, rel.AttachOwner(&slot))

	rel.ClearOwner()
	assert.Nil(t, slot.Relation())
	assert.Nil(t, rel.Owner())
}

func TestDropSegmentsFrom(t *testing.T) {
	rel := New(testKey())
	for segno := int64(0); segno < 3; segno++ {
		rel.AppendSegment(relpath.ForkMain, tempSegment(t, segno))
	}

	dropped := rel.DropSegmentsFrom(relpath.ForkMain, 1)
	require.Len(t, dropped, 2)
	assert.Equal(t, int64(1), dropped[0].Segno)
	assert.Equal(t, 1, rel.OpenSegCount(relpath.ForkMain))

	assert.Nil(t, rel.DropSegmentsFrom(relpath.ForkMain, 5))

	for _, seg := range dropped {
		require.NoError(t, seg.File.Close())
	}
	require.NoError(t, rel.CloseSegments())
}

func TestCloseSegmentsToleratesLostDescriptors(t *testing.T) {
	rel := New(testKey())
	seg := tempSegment(t, 0)
	rel.AppendSegment(relpath.ForkMain, seg)

	// Descriptor already lost, e.g. after an external unlink plus close.
	require.NoError(t, seg.File.Close())

	err := rel.CloseSegments()
	assert.Error(t, err)
	assert.Equal(t, 0, rel.OpenSegCount(relpath.ForkMain))
}
