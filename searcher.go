package hashsearch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/TobiX/hash-search/hdigest"
	"github.com/TobiX/hash-search/hprefix"
)

// DefaultBits is the default search-space exponent.
const DefaultBits = 24

// MaxSearchForBits converts a search-space exponent into the
// exclusive upper bound of the candidate space: 2^bits - 1 for bits
// in [1, 63], or the full uint64 range for 64.
func MaxSearchForBits(bits int) (uint64, error) {
	switch {
	case bits >= 1 && bits <= 63:
		return uint64(1)<<bits - 1, nil
	case bits == 64:
		return math.MaxUint64, nil
	default:
		return 0, InvalidBitsError{Bits: bits}
	}
}

// Match pairs a matching candidate with the digest it produced.
type Match struct {
	// Candidate is the value whose canonical decimal encoding was
	// absorbed after the base input.
	Candidate uint64

	// Digest is the full digest of input plus encoded candidate.
	Digest []byte
}

// SearcherConfig is the configuration for a [Searcher].
type SearcherConfig struct {
	// Target is the bit prefix every reported digest must begin with.
	Target hprefix.Target

	// MaxSearch bounds the candidate space to [0, MaxSearch).
	MaxSearch uint64

	// Workers is the size of the evaluation pool.
	// If zero, runtime.GOMAXPROCS(0) is used.
	Workers int
}

// Searcher runs parallel candidate evaluation over one base state.
//
// The candidate space is statically partitioned into contiguous
// spans, one per worker; per-candidate cost is uniform, so no work
// stealing is needed. The base state is only ever read, so the
// workers share it without locks.
type Searcher struct {
	log *slog.Logger

	base   *hdigest.BaseState
	target hprefix.Target

	max   uint64
	spans []span
}

// NewSearcher validates the configuration and returns a Searcher
// ready to scan.
func NewSearcher(log *slog.Logger, base *hdigest.BaseState, cfg SearcherConfig) (*Searcher, error) {
	if base == nil {
		return nil, fmt.Errorf("base state must not be nil")
	}
	if cfg.MaxSearch == 0 {
		return nil, fmt.Errorf("search space must not be empty")
	}
	if cfg.Target.BitLen() == 0 {
		return nil, fmt.Errorf("target prefix must not be empty")
	}
	if digestBits := 8 * base.Algorithm().Size(); cfg.Target.BitLen() > digestBits {
		return nil, fmt.Errorf(
			"target prefix is %d bits but %s digests only have %d",
			cfg.Target.BitLen(), base.Algorithm().Name(), digestBits,
		)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	spans := partition(cfg.MaxSearch, workers)
	log.Debug(
		"partitioned candidate space",
		"max_search", cfg.MaxSearch,
		"workers", len(spans),
	)

	return &Searcher{
		log:    log,
		base:   base,
		target: cfg.Target,
		max:    cfg.MaxSearch,
		spans:  spans,
	}, nil
}

// First scans until one worker reports a matching candidate and
// returns that match.
//
// If several workers find matches near-simultaneously, exactly one
// winner is chosen; the others are discarded and every worker is
// canceled, draining promptly without finishing its span. A
// single-worker search therefore always reports the lowest matching
// candidate, while multi-worker searches may report any true match.
//
// The boolean result is false when the whole space was exhausted
// without a match. The error is non-nil only for evaluation failures
// or external context cancellation, never for exhaustion.
func (s *Searcher) First(ctx context.Context) (Match, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu  sync.Mutex
		won *Match
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, sp := range s.spans {
		g.Go(func() error {
			return s.scan(ctx, sp, func(m Match) {
				mu.Lock()
				defer mu.Unlock()

				if won != nil {
					// Another worker already won the race.
					return
				}

				// The digest slice is owned by the reporting worker's
				// evaluator, so it must be copied while the worker is
				// still blocked here.
				m.Digest = slices.Clone(m.Digest)
				won = &m

				cancel()
			}, true)
		})
	}

	err := g.Wait()

	mu.Lock()
	defer mu.Unlock()

	if won != nil {
		// Cancellation caused by the win is not a failure.
		s.log.Debug("search matched", "candidate", won.Candidate)
		return *won, true, nil
	}
	if err != nil {
		return Match{}, false, err
	}

	s.log.Debug("search exhausted", "max_search", s.max)
	return Match{}, false, nil
}

// Enumerate scans the entire candidate space, invoking emit once for
// every match found.
//
// Calls to emit are serialized, so emit may write to a shared sink
// without further locking; matches arrive in ascending order within
// a worker's span but in no particular order across workers. The
// Match's Digest slice is reused after emit returns and must be
// copied if retained.
func (s *Searcher) Enumerate(ctx context.Context, emit func(m Match)) error {
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, sp := range s.spans {
		g.Go(func() error {
			return s.scan(ctx, sp, func(m Match) {
				mu.Lock()
				defer mu.Unlock()
				emit(m)
			}, false)
		})
	}

	return g.Wait()
}

// scan evaluates every candidate in sp in ascending order, invoking
// report for each match. If stopOnMatch is true the scan returns
// right after its first report.
//
// Cancellation is checked once per candidate, so a canceled scan
// stops without finishing its span; nothing in the loop blocks on
// I/O.
func (s *Searcher) scan(ctx context.Context, sp span, report func(Match), stopOnMatch bool) error {
	ev, err := s.base.NewEvaluator()
	if err != nil {
		return err
	}

	for c := sp.lo; c < sp.hi; c++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		d, err := ev.Digest(c)
		if err != nil {
			return err
		}

		if s.target.Match(d) {
			report(Match{Candidate: c, Digest: d})
			if stopOnMatch {
				return nil
			}
		}
	}

	return nil
}
