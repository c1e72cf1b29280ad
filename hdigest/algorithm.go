// Package hdigest adapts the standard library's streaming hashes into
// the checkpointable digest capability used by the candidate search.
//
// The capability contract is init, update, finalize, and clone.
// Cloning is implemented through the [encoding.BinaryMarshaler] and
// [encoding.BinaryUnmarshaler] interfaces, which every hash in this
// package's registry supports: the base state is marshaled once after
// absorbing the input, and every candidate evaluation restores a
// private hash instance from that snapshot instead of rehashing the
// input from scratch.
package hdigest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"slices"
	"strings"
)

// DefaultName is the algorithm used when the caller does not choose one.
const DefaultName = "md5"

// Algorithm is one entry in the closed set of supported digests.
// The zero value is not usable; resolve algorithms with [Lookup].
type Algorithm struct {
	name string
	new  func() hash.Hash
}

// The supported set is closed on purpose: every entry is a standard
// library hash whose state supports binary marshaling, which the
// search relies on for checkpoint and restore.
var registry = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512/224": sha512.New512_224,
	"sha512/256": sha512.New512_256,
}

// Lookup resolves an algorithm by name, case-insensitively.
// Unknown names are a configuration error reported through
// [UnknownAlgorithmError].
func Lookup(name string) (Algorithm, error) {
	n := strings.ToLower(name)
	ctor, ok := registry[n]
	if !ok {
		return Algorithm{}, UnknownAlgorithmError{Name: name}
	}

	return Algorithm{name: n, new: ctor}, nil
}

// Names returns the sorted names of all supported algorithms.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Name returns the canonical lowercase name of the algorithm.
func (a Algorithm) Name() string {
	return a.name
}

// Size returns the digest size in bytes.
func (a Algorithm) Size() int {
	return a.new().Size()
}

// UnknownAlgorithmError is returned from [Lookup] for a name outside
// the supported set.
type UnknownAlgorithmError struct {
	Name string
}

func (e UnknownAlgorithmError) Error() string {
	return fmt.Sprintf(
		"unknown digest algorithm %q (supported: %s)",
		e.Name, strings.Join(Names(), ", "),
	)
}
