package hdigest

import "fmt"

// Evaluator computes candidate digests against one base state.
//
// Each worker owns exactly one Evaluator. The hash instance, the sum
// buffer, and the encoding buffer are all private to the evaluator,
// keeping the candidate loop free of locks and of per-candidate
// allocations. Restoring the checkpoint costs only the digest's
// internal state size, not the length of the absorbed input.
type Evaluator struct {
	h checkpointable

	// Shared read-only with the BaseState and all sibling evaluators.
	snapshot []byte

	sum []byte
	enc []byte
}

// NewEvaluator derives an independent evaluator from the base state.
// It is safe to call concurrently from any number of goroutines.
func (b *BaseState) NewEvaluator() (*Evaluator, error) {
	h, ok := b.alg.new().(checkpointable)
	if !ok {
		return nil, fmt.Errorf("digest %s does not support state checkpointing", b.alg.name)
	}

	return &Evaluator{
		h:        h,
		snapshot: b.snapshot,
		sum:      make([]byte, 0, h.Size()),
		enc:      make([]byte, 0, 20), // enough for any uint64 in decimal
	}, nil
}

// Digest returns the digest of the absorbed input followed by the
// canonical decimal encoding of candidate.
//
// The returned slice is reused by the next Digest or BaseSum call on
// this evaluator; callers that retain a digest must copy it.
func (e *Evaluator) Digest(candidate uint64) ([]byte, error) {
	if err := e.h.UnmarshalBinary(e.snapshot); err != nil {
		return nil, fmt.Errorf("restoring digest state: %w", err)
	}

	e.enc = AppendCandidate(e.enc[:0], candidate)
	_, _ = e.h.Write(e.enc)

	e.sum = e.h.Sum(e.sum[:0])
	return e.sum, nil
}

// BaseSum returns the digest of the absorbed input with no suffix.
// The returned slice is reused like the [Evaluator.Digest] result.
func (e *Evaluator) BaseSum() ([]byte, error) {
	if err := e.h.UnmarshalBinary(e.snapshot); err != nil {
		return nil, fmt.Errorf("restoring digest state: %w", err)
	}

	e.sum = e.h.Sum(e.sum[:0])
	return e.sum, nil
}
