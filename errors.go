package hashsearch

import "fmt"

// NoMatchError is returned from [Run] in [FirstMatch] mode when the
// entire candidate space was exhausted without a matching digest.
// It is a normal, reportable search outcome, not an internal fault.
type NoMatchError struct {
	// Searched is the exclusive upper bound of the exhausted space.
	Searched uint64
}

func (e NoMatchError) Error() string {
	return fmt.Sprintf("no match found among %d candidates", e.Searched)
}

// InvalidBitsError is returned from [MaxSearchForBits] for an
// exponent outside [1, 64].
type InvalidBitsError struct {
	Bits int
}

func (e InvalidBitsError) Error() string {
	return fmt.Sprintf("invalid number of bits: %d (must be between 1 and 64)", e.Bits)
}
