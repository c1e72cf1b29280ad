package hashsearch

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/require"
)

func TestPartition_coversSpaceExactlyOnce(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		max uint64
		n   int
	}{
		{max: 1, n: 1},
		{max: 1, n: 8},
		{max: 5, n: 8},
		{max: 64, n: 1},
		{max: 100, n: 7},
		{max: 1000, n: 16},
		{max: 1 << 12, n: 5},
	} {
		seen := bitset.MustNew(uint(tc.max))
		for _, sp := range partition(tc.max, tc.n) {
			for c := sp.lo; c < sp.hi; c++ {
				require.Falsef(t, seen.Test(uint(c)),
					"candidate %d visited twice (max=%d n=%d)", c, tc.max, tc.n)
				seen.Set(uint(c))
			}
		}
		require.Equalf(t, uint(tc.max), seen.Count(),
			"union is not the whole space (max=%d n=%d)", tc.max, tc.n)
	}
}

func TestPartition_balanced(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		max uint64
		n   int
	}{
		{max: 100, n: 7},
		{max: 1000, n: 16},
		{max: 17, n: 4},
	} {
		spans := partition(tc.max, tc.n)
		require.LessOrEqual(t, len(spans), tc.n)

		var min, max uint64
		for i, sp := range spans {
			require.Positivef(t, sp.size(), "empty span %d (max=%d n=%d)", i, tc.max, tc.n)
			if i == 0 || sp.size() < min {
				min = sp.size()
			}
			if sp.size() > max {
				max = sp.size()
			}
		}
		require.LessOrEqual(t, max-min, uint64(1))
	}
}

func TestPartition_contiguousAscending(t *testing.T) {
	t.Parallel()

	spans := partition(1000, 7)

	require.Zero(t, spans[0].lo)
	for i := 1; i < len(spans); i++ {
		require.Equal(t, spans[i-1].hi, spans[i].lo)
	}
	require.Equal(t, uint64(1000), spans[len(spans)-1].hi)
}

func TestPartition_fewerCandidatesThanWorkers(t *testing.T) {
	t.Parallel()

	spans := partition(3, 8)
	require.Len(t, spans, 3)
	for _, sp := range spans {
		require.Equal(t, uint64(1), sp.size())
	}
}

func TestPartition_degenerate(t *testing.T) {
	t.Parallel()

	require.Nil(t, partition(0, 4))
	require.Nil(t, partition(10, 0))
	require.Nil(t, partition(10, -1))
}
