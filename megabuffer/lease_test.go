package megabuffer

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestLeaseClose(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 64, 4)

	lease, err := megabuffer.Lease(16)
	require.NoError(t, err)
	require.Equal(t, 16, lease.Region().Size())

	require.NoError(t, lease.Close())
	require.NoError(t, lease.Close())
	require.True(t, lease.Region().Released())
	require.Equal(t, 0, megabuffer.Statistics().RegionCount)

	setup.teardown(t)
}

func TestWithRegionReleasesOnError(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 64, 4)

	failure := errors.New("populate failed")
	var seen *Region
	err := WithRegion(megabuffer, 8, func(region *Region) error {
		seen = region
		require.NoError(t, region.Write([]byte{1, 2}))
		return failure
	})
	require.True(t, errors.Is(err, failure))
	require.True(t, seen.Released())

	err = WithRegion(megabuffer, 128, func(region *Region) error {
		t.Fatal("callback must not run when allocation fails")
		return nil
	})
	require.True(t, errors.Is(err, ErrOutOfSpace))

	setup.teardown(t)
}
