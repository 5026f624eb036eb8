package megabuffer

import (
	"io"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestSuballocateFromTail(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 256, 4)

	parent, err := megabuffer.AllocateRegion(64)
	require.NoError(t, err)

	child, err := parent.Suballocate(10)
	require.NoError(t, err)
	require.Equal(t, 52, child.Offset())
	require.Equal(t, 12, child.Size())
	require.Equal(t, 0, parent.Offset())
	require.Equal(t, 52, parent.Size())
	require.Equal(t, parent.Owner(), child.Owner())
	require.NoError(t, megabuffer.ValidateLocked())

	// The free list is not touched by suballocation
	require.Equal(t, []freeRegion{{offset: 64, size: 192}}, freeList(megabuffer))

	require.NoError(t, child.Release())
	require.NoError(t, parent.Release())
	require.Equal(t, []freeRegion{{offset: 0, size: 256}}, freeList(megabuffer))

	setup.teardown(t)
}

func TestSuballocateInvalidSizes(t *testing.T) {
	testCases := map[string]int{
		"Zero":             0,
		"Negative":         -1,
		"WholeParent":      32,
		"RoundsToWhole":    29,
		"LargerThanParent": 33,
		"RoundsPastMaxInt": math.MaxInt - 2,
	}

	for name, size := range testCases {
		t.Run(name, func(t *testing.T) {
			setup := readyRegistry(t, io.Discard)
			megabuffer := setup.create(t, 64, 4)

			parent, err := megabuffer.AllocateRegion(32)
			require.NoError(t, err)

			_, err = parent.Suballocate(size)
			require.True(t, errors.Is(err, ErrInvalidSize))
			require.Equal(t, 32, parent.Size())
			require.NoError(t, megabuffer.ValidateLocked())

			require.NoError(t, parent.Release())
			setup.teardown(t)
		})
	}
}

func TestMergeAdjacentRegions(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 256, 4)

	first, _ := megabuffer.AllocateRegion(16)
	second, _ := megabuffer.AllocateRegion(16)
	third, _ := megabuffer.AllocateRegion(16)

	// Higher region absorbing the lower one
	require.NoError(t, second.Merge(first))
	require.Equal(t, 0, second.Offset())
	require.Equal(t, 32, second.Size())
	require.True(t, first.Released())

	// Lower region absorbing the higher one
	require.NoError(t, second.Merge(third))
	require.Equal(t, 48, second.Size())
	require.True(t, third.Released())
	require.NoError(t, megabuffer.ValidateLocked())

	require.True(t, errors.Is(first.Release(), ErrRegionReleased))
	require.NoError(t, second.Release())
	setup.teardown(t)
}

func TestMergeRejections(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 256, 4)
	other := setup.create(t, 256, 4)

	a, _ := megabuffer.AllocateRegion(16)
	gap, _ := megabuffer.AllocateRegion(16)
	b, _ := megabuffer.AllocateRegion(16)
	foreign, _ := other.AllocateRegion(16)

	require.True(t, errors.Is(a.Merge(b), ErrNotAdjacent))
	require.True(t, errors.Is(a.Merge(foreign), ErrForeignRegion))
	require.Error(t, a.Merge(a))

	require.NoError(t, gap.Release())
	require.True(t, errors.Is(a.Merge(gap), ErrRegionReleased))

	require.NoError(t, a.Release())
	require.NoError(t, b.Release())
	require.NoError(t, foreign.Release())
	setup.teardown(t)
}

func TestSuballocateThenMergeRestoresParent(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 128, 8)

	parent, err := megabuffer.AllocateRegion(64)
	require.NoError(t, err)

	var children []*Region
	for i := 0; i < 3; i++ {
		child, err := parent.Suballocate(8)
		require.NoError(t, err)
		children = append(children, child)
	}
	require.Equal(t, 40, parent.Size())
	require.Equal(t, 4, megabuffer.Statistics().RegionCount)

	// Children were carved from the tail, so the last one borders the parent
	for i := len(children) - 1; i >= 0; i-- {
		require.NoError(t, parent.Merge(children[i]))
	}
	require.Equal(t, 0, parent.Offset())
	require.Equal(t, 64, parent.Size())
	require.Equal(t, 1, megabuffer.Statistics().RegionCount)

	require.NoError(t, parent.Release())
	setup.teardown(t)
}
