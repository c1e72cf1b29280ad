package hashsearch

// span is a half-open range of candidate values.
type span struct {
	lo, hi uint64
}

// size returns the number of candidates in the span.
func (s span) size() uint64 {
	return s.hi - s.lo
}

// partition splits [0, max) into at most n contiguous spans whose
// union is exactly [0, max), visiting every value exactly once across
// all spans. Span sizes differ by at most one, and no span is empty:
// when there are fewer candidates than workers, fewer spans are
// returned.
func partition(max uint64, n int) []span {
	if max == 0 || n <= 0 {
		return nil
	}

	w := uint64(n)
	if w > max {
		w = max
	}

	size := max / w
	rem := max % w

	spans := make([]span, 0, w)
	var lo uint64
	for i := uint64(0); i < w; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		spans = append(spans, span{lo: lo, hi: hi})
		lo = hi
	}

	return spans
}
