package hashsearch_test

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"strconv"
	"testing"

	hashsearch "github.com/TobiX/hash-search"
	"github.com/TobiX/hash-search/hdigest"
	"github.com/TobiX/hash-search/hprefix"
	"github.com/TobiX/hash-search/internal/htest"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

func newBase(t *testing.T, input []byte) *hdigest.BaseState {
	t.Helper()

	alg, err := hdigest.Lookup("md5")
	require.NoError(t, err)

	base, err := hdigest.Absorb(bytes.NewReader(input), io.Discard, alg, nil)
	require.NoError(t, err)
	return base
}

// targetForCandidate builds a target that candidate c is known to
// satisfy: the first `nibbles` hex digits of md5(input ++ decimal(c)).
// Lower candidates may also satisfy it; the oracle decides.
func targetForCandidate(t *testing.T, input []byte, c uint64, nibbles int) hprefix.Target {
	t.Helper()

	sum := md5.Sum(append(append([]byte{}, input...), strconv.FormatUint(c, 10)...))
	target, err := hprefix.Parse(hex.EncodeToString(sum[:])[:nibbles])
	require.NoError(t, err)
	return target
}

func TestMaxSearchForBits(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		bits int
		want uint64
	}{
		{bits: 1, want: 1},
		{bits: 8, want: 255},
		{bits: 24, want: 16777215},
		{bits: 63, want: 1<<63 - 1},
		{bits: 64, want: 18446744073709551615},
	} {
		got, err := hashsearch.MaxSearchForBits(tc.bits)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "bits %d", tc.bits)
	}

	for _, bits := range []int{0, -1, 65, 100} {
		_, err := hashsearch.MaxSearchForBits(bits)

		var invalid hashsearch.InvalidBitsError
		require.ErrorAs(t, err, &invalid, "bits %d", bits)
		require.Equal(t, bits, invalid.Bits)
	}
}

func TestNewSearcher_validation(t *testing.T) {
	t.Parallel()

	log := slogt.New(t)
	input := htest.RandomDataForTest(t, 100)
	base := newBase(t, input)

	okTarget, err := hprefix.Parse("dead")
	require.NoError(t, err)

	_, err = hashsearch.NewSearcher(log, nil, hashsearch.SearcherConfig{
		Target: okTarget, MaxSearch: 10,
	})
	require.Error(t, err)

	_, err = hashsearch.NewSearcher(log, base, hashsearch.SearcherConfig{
		Target: okTarget, MaxSearch: 0,
	})
	require.Error(t, err)

	_, err = hashsearch.NewSearcher(log, base, hashsearch.SearcherConfig{
		MaxSearch: 10,
	})
	require.Error(t, err)

	// 136 bits of target cannot fit a 128-bit md5 digest.
	tooLong, err := hprefix.Parse("0011223344556677889900112233445566")
	require.NoError(t, err)
	_, err = hashsearch.NewSearcher(log, base, hashsearch.SearcherConfig{
		Target: tooLong, MaxSearch: 10,
	})
	require.Error(t, err)
}

func TestSearcher_First_singleWorkerFindsLowest(t *testing.T) {
	t.Parallel()

	input := htest.RandomDataForTest(t, 512)
	base := newBase(t, input)

	const max = 256
	target := targetForCandidate(t, input, 57, 4)

	expected := htest.MD5Matches(input, max, target)
	require.NotEmpty(t, expected)
	require.Contains(t, expected, uint64(57))

	s, err := hashsearch.NewSearcher(slogt.New(t), base, hashsearch.SearcherConfig{
		Target:    target,
		MaxSearch: max,
		Workers:   1,
	})
	require.NoError(t, err)

	m, found, err := s.First(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, expected[0], m.Candidate)

	want := md5.Sum(append(append([]byte{}, input...), strconv.FormatUint(m.Candidate, 10)...))
	require.Equal(t, want[:], m.Digest)
	require.True(t, target.Match(m.Digest))
}

func TestSearcher_First_parallelFindsTrueMatch(t *testing.T) {
	t.Parallel()

	input := htest.RandomDataForTest(t, 512)
	base := newBase(t, input)

	const max = 1 << 10
	target := targetForCandidate(t, input, 700, 4)

	expected := htest.MD5Matches(input, max, target)
	require.NotEmpty(t, expected)

	s, err := hashsearch.NewSearcher(slogt.New(t), base, hashsearch.SearcherConfig{
		Target:    target,
		MaxSearch: max,
		Workers:   8,
	})
	require.NoError(t, err)

	m, found, err := s.First(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	// Any true match is an acceptable winner in a parallel run.
	require.Contains(t, expected, m.Candidate)

	want := md5.Sum(append(append([]byte{}, input...), strconv.FormatUint(m.Candidate, 10)...))
	require.Equal(t, want[:], m.Digest)
}

func TestSearcher_First_exhaustion(t *testing.T) {
	t.Parallel()

	input := htest.RandomDataForTest(t, 256)
	base := newBase(t, input)

	// A 32-bit target over a tiny space: statistically certain not to
	// match, but the oracle keeps the test deterministic either way.
	const max = 64
	sum := md5.Sum([]byte("no such suffix"))
	target, err := hprefix.Parse(hex.EncodeToString(sum[:])[:8])
	require.NoError(t, err)

	expected := htest.MD5Matches(input, max, target)

	s, err := hashsearch.NewSearcher(slogt.New(t), base, hashsearch.SearcherConfig{
		Target:    target,
		MaxSearch: max,
		Workers:   4,
	})
	require.NoError(t, err)

	m, found, err := s.First(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(expected) > 0, found)
	if !found {
		require.Zero(t, m.Candidate)
		require.Nil(t, m.Digest)
	}
}

func TestSearcher_First_canceledContext(t *testing.T) {
	t.Parallel()

	input := htest.RandomDataForTest(t, 64)
	base := newBase(t, input)

	target, err := hprefix.Parse("dead")
	require.NoError(t, err)

	s, err := hashsearch.NewSearcher(slogt.New(t), base, hashsearch.SearcherConfig{
		Target:    target,
		MaxSearch: 1 << 20,
		Workers:   4,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found, err := s.First(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, found)
}

func TestSearcher_Enumerate_agreesWithOracle(t *testing.T) {
	t.Parallel()

	input := htest.RandomDataForTest(t, 300)
	base := newBase(t, input)

	const max = 1 << 12

	// A 3-nibble target over 4096 candidates matches once on average.
	target := targetForCandidate(t, input, 1234, 3)
	expected := htest.MD5Matches(input, max, target)
	require.NotEmpty(t, expected)

	s, err := hashsearch.NewSearcher(slogt.New(t), base, hashsearch.SearcherConfig{
		Target:    target,
		MaxSearch: max,
		Workers:   4,
	})
	require.NoError(t, err)

	// Emit runs serialized, so plain appends are safe.
	type reported struct {
		candidate uint64
		digest    []byte
	}
	var all []reported
	err = s.Enumerate(context.Background(), func(m hashsearch.Match) {
		d := make([]byte, len(m.Digest))
		copy(d, m.Digest)
		all = append(all, reported{candidate: m.Candidate, digest: d})
	})
	require.NoError(t, err)

	got := map[uint64][]byte{}
	for _, r := range all {
		_, dup := got[r.candidate]
		require.False(t, dup, "candidate %d reported twice", r.candidate)
		got[r.candidate] = r.digest
	}

	require.Len(t, got, len(expected))
	for _, c := range expected {
		d, ok := got[c]
		require.Truef(t, ok, "oracle match %d not reported", c)

		want := md5.Sum(append(append([]byte{}, input...), strconv.FormatUint(c, 10)...))
		require.Equal(t, want[:], d)
		require.True(t, target.Match(d))
	}
}

func TestSearcher_Enumerate_moreWorkersThanCandidates(t *testing.T) {
	t.Parallel()

	input := htest.RandomDataForTest(t, 100)
	base := newBase(t, input)

	target := targetForCandidate(t, input, 2, 1)
	expected := htest.MD5Matches(input, 4, target)

	s, err := hashsearch.NewSearcher(slogt.New(t), base, hashsearch.SearcherConfig{
		Target:    target,
		MaxSearch: 4,
		Workers:   32,
	})
	require.NoError(t, err)

	var got []uint64
	err = s.Enumerate(context.Background(), func(m hashsearch.Match) {
		got = append(got, m.Candidate)
	})
	require.NoError(t, err)
	require.ElementsMatch(t, expected, got)
}
