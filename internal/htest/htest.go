// Package htest contains helpers shared by the hash-search tests.
package htest

import (
	"crypto/md5"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/TobiX/hash-search/hprefix"
)

// RandomDataForTest returns a byte slice of size sz containing
// pseudorandom data, derived from a seed based on the test name,
// so failures reproduce without recording a seed.
func RandomDataForTest(t *testing.T, sz int) []byte {
	// Sha256 would also work here, but md5 is the digest this module
	// revolves around, and either way the seed just needs to be
	// distinct per test name. Two md5 sums fill the chacha8 seed.
	var seed [32]byte
	a := md5.Sum([]byte(t.Name()))
	b := md5.Sum([]byte("htest." + t.Name()))
	copy(seed[:16], a[:])
	copy(seed[16:], b[:])

	chacha := rand.NewChaCha8(seed)

	out := make([]byte, sz)
	if _, err := chacha.Read(out); err != nil {
		panic(err)
	}

	return out
}

// MD5Matches is the slow reference oracle for the search packages.
// It rehashes input plus the decimal text of every candidate in
// [0, max) from scratch and returns the candidates whose md5 digest
// begins with the target's bits, in ascending order.
func MD5Matches(input []byte, max uint64, target hprefix.Target) []uint64 {
	var out []uint64

	buf := make([]byte, 0, len(input)+20)
	for c := uint64(0); c < max; c++ {
		buf = append(buf[:0], input...)
		buf = strconv.AppendUint(buf, c, 10)

		sum := md5.Sum(buf)
		if target.Match(sum[:]) {
			out = append(out, c)
		}
	}

	return out
}
