package hdigest

import (
	"encoding"
	"fmt"
	"hash"
	"io"
	"strconv"
)

// ChunkSize is the read size used by [Absorb].
const ChunkSize = 16384

// checkpointable is the full capability set the search needs from a
// digest: streaming updates plus state save and restore.
type checkpointable interface {
	hash.Hash
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// BaseState is the digest state for one algorithm after absorbing an
// entire input stream.
//
// It is immutable once built, so any number of evaluators may be
// derived from it concurrently without synchronization: deriving is a
// pure read of the marshaled checkpoint.
type BaseState struct {
	alg      Algorithm
	snapshot []byte
}

// Absorb reads r to exhaustion in [ChunkSize] chunks, feeding every
// chunk into a fresh digest state for alg, and returns the resulting
// base state.
//
// Every chunk is also written to echo, in order, before the next chunk
// is read; pass [io.Discard] to disable the passthrough. onChunk, if
// non-nil, is invoked once per chunk with the chunk length, for
// progress reporting.
//
// Any read or echo-write failure aborts the build; a partial state is
// never returned.
func Absorb(r io.Reader, echo io.Writer, alg Algorithm, onChunk func(n int)) (*BaseState, error) {
	if alg.new == nil {
		return nil, fmt.Errorf("digest algorithm must be resolved with Lookup")
	}

	h, ok := alg.new().(checkpointable)
	if !ok {
		// Every registry entry supports marshaling today; this guards
		// the contract if the registry ever grows an entry that does not.
		return nil, fmt.Errorf("digest %s does not support state checkpointing", alg.name)
	}

	buf := make([]byte, ChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			// hash.Hash writes never fail.
			_, _ = h.Write(buf[:n])

			if _, werr := echo.Write(buf[:n]); werr != nil {
				return nil, fmt.Errorf("echoing input: %w", werr)
			}
			if onChunk != nil {
				onChunk(n)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
	}

	snapshot, err := h.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("checkpointing %s state: %w", alg.name, err)
	}

	return &BaseState{alg: alg, snapshot: snapshot}, nil
}

// Algorithm returns the algorithm this state was built with.
func (b *BaseState) Algorithm() Algorithm {
	return b.alg
}

// Sum returns the digest of the absorbed input alone, with no
// candidate suffix. The base state is untouched: finalization happens
// on a restored copy, never on the checkpoint itself.
func (b *BaseState) Sum() ([]byte, error) {
	ev, err := b.NewEvaluator()
	if err != nil {
		return nil, err
	}

	d, err := ev.BaseSum()
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(d))
	copy(out, d)
	return out, nil
}

// AppendCandidate appends the canonical encoding of a candidate value
// to dst: its decimal digits as ASCII text. The exact same bytes are
// absorbed during evaluation and appended to a poisoned file, so the
// two can never disagree.
func AppendCandidate(dst []byte, c uint64) []byte {
	return strconv.AppendUint(dst, c, 10)
}
