package hashsearch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/TobiX/hash-search/hdigest"
	"github.com/TobiX/hash-search/hprefix"
)

// Mode selects what a [Run] does with the matches it finds.
type Mode int

const (
	// FirstMatch emits the input stream plus the first accepted
	// candidate's encoding on the output writer, forming a file whose
	// digest begins with the target prefix. Exhausting the space is
	// reported through [NoMatchError].
	FirstMatch Mode = iota

	// EnumerateAll writes one listing line per matching candidate in
	// the space to the output writer and never fails on an empty
	// result.
	EnumerateAll
)

// RunConfig is the configuration for [Run].
type RunConfig struct {
	// Log receives all diagnostics. If nil, diagnostics are dropped.
	Log *slog.Logger

	// Target is the bit prefix the final digest must begin with.
	Target hprefix.Target

	// Algorithm is the digest to search against,
	// resolved through [hdigest.Lookup].
	Algorithm hdigest.Algorithm

	// MaxSearch bounds the candidate space to [0, MaxSearch);
	// see [MaxSearchForBits].
	MaxSearch uint64

	// Workers is the evaluation pool size; zero means GOMAXPROCS.
	Workers int

	// Mode selects first-match or enumerate-all behavior.
	Mode Mode

	// Input is the stream to absorb; usually stdin.
	Input io.Reader

	// Output receives the poisoned file in FirstMatch mode, or the
	// match listing in EnumerateAll mode; usually stdout.
	Output io.Writer

	// OnChunk, if non-nil, is called once per input chunk read, with
	// the chunk length, for progress reporting.
	OnChunk func(n int)

	// OnInputRead, if non-nil, is called once after the input stream
	// has been fully absorbed, before the search begins.
	OnInputRead func()
}

func (c RunConfig) validate() error {
	if c.Input == nil {
		return fmt.Errorf("input stream must not be nil")
	}
	if c.Output == nil {
		return fmt.Errorf("output writer must not be nil")
	}
	if c.Target.BitLen() == 0 {
		return fmt.Errorf("target prefix must not be empty")
	}
	if c.Algorithm.Name() == "" {
		return fmt.Errorf("digest algorithm must be resolved with hdigest.Lookup")
	}
	if c.MaxSearch == 0 {
		return fmt.Errorf("search space must not be empty")
	}
	if digestBits := 8 * c.Algorithm.Size(); c.Target.BitLen() > digestBits {
		return fmt.Errorf(
			"target prefix is %d bits but %s digests only have %d",
			c.Target.BitLen(), c.Algorithm.Name(), digestBits,
		)
	}
	if c.Mode != FirstMatch && c.Mode != EnumerateAll {
		return fmt.Errorf("unknown run mode %d", c.Mode)
	}
	return nil
}

// Run executes one complete search: absorb the input stream, fan out
// the candidate scan, and write results according to the configured
// mode.
//
// In [FirstMatch] mode the input is echoed to the output while it is
// absorbed, so the output is already a correct prefix of the poisoned
// file before the search starts; the chosen candidate's decimal bytes
// complete it. The returned match is the winner, and a [NoMatchError]
// is returned when the space is exhausted (the echo alone remains on
// the output).
//
// In [EnumerateAll] mode the echo is suppressed so the output carries
// only listing lines, one per match, each written atomically; the
// returned match is zero and the error is nil after a full scan
// regardless of how many matches were found.
func Run(ctx context.Context, cfg RunConfig) (Match, error) {
	if err := cfg.validate(); err != nil {
		return Match{}, err
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	echo := cfg.Output
	if cfg.Mode == EnumerateAll {
		// The listing shares the output writer, so the passthrough
		// would corrupt it.
		echo = io.Discard
	}

	base, err := hdigest.Absorb(cfg.Input, echo, cfg.Algorithm, cfg.OnChunk)
	if err != nil {
		return Match{}, err
	}
	if cfg.OnInputRead != nil {
		cfg.OnInputRead()
	}

	orig, err := base.Sum()
	if err != nil {
		return Match{}, err
	}

	log.Info(
		"beginning search",
		"digest", cfg.Algorithm.Name(),
		"original_hash", hex.EncodeToString(orig),
		"target", cfg.Target.String(),
		"max_search", cfg.MaxSearch,
	)

	s, err := NewSearcher(log, base, SearcherConfig{
		Target:    cfg.Target,
		MaxSearch: cfg.MaxSearch,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return Match{}, err
	}

	if cfg.Mode == EnumerateAll {
		return Match{}, runEnumerate(ctx, s, cfg.Output)
	}

	m, found, err := s.First(ctx)
	if err != nil {
		return Match{}, err
	}
	if !found {
		return Match{}, NoMatchError{Searched: cfg.MaxSearch}
	}

	log.Info(
		"found match",
		"candidate", m.Candidate,
		"new_hash", hex.EncodeToString(m.Digest),
	)

	if _, err := cfg.Output.Write(hdigest.AppendCandidate(nil, m.Candidate)); err != nil {
		return Match{}, fmt.Errorf("writing candidate suffix: %w", err)
	}

	return m, nil
}

// runEnumerate drives an enumerate-all scan, writing one line per
// match to out. Emit calls are already serialized by the Searcher,
// so the write error can be latched without extra locking.
func runEnumerate(ctx context.Context, s *Searcher, out io.Writer) error {
	var writeErr error
	err := s.Enumerate(ctx, func(m Match) {
		if writeErr != nil {
			return
		}
		_, writeErr = fmt.Fprintf(out, "%x ascii %d\n", m.Digest, m.Candidate)
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("writing match listing: %w", writeErr)
	}
	return nil
}
