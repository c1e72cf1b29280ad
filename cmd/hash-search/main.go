// Command hash-search finds bytes to append to a file so that its
// digest begins with a specified hex prefix.
//
// The file is read from stdin. In the default mode the original bytes
// plus the matching suffix are written to stdout, forming the
// "poisoned" file; with -l every matching candidate in the search
// space is listed instead. All diagnostics go to stderr.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	hashsearch "github.com/TobiX/hash-search"
	"github.com/TobiX/hash-search/hdigest"
	"github.com/TobiX/hash-search/hprefix"
)

// envPrefix is the prefix for environment-variable flag overrides,
// e.g. HASH_SEARCH_DIGEST=sha256.
const envPrefix = "HASH_SEARCH"

var (
	bits        int
	digestName  string
	listAll     bool
	workers     int
	logLevelStr string
)

var rootCmd = &cobra.Command{
	Use:   "hash-search [flags] hexdigits",
	Short: "find bytes to append to a file so its digest begins with a chosen prefix",
	Long: `hash-search reads a file from stdin and brute-forces a short suffix
such that the digest of file-plus-suffix begins with the given hex
prefix. An odd number of hex digits ends the prefix on a half-byte:
only the high nibble of the final digit's byte is matched.`,
	Args: cobra.ExactArgs(1),
	RunE: run,

	// Errors are reported by main so a failed search is not followed
	// by the usage text.
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().IntVarP(&bits, "bits", "b", hashsearch.DefaultBits,
		"search-space exponent; candidates are scanned in [0, 2^bits-1)")
	rootCmd.Flags().StringVarP(&digestName, "digest", "d", hdigest.DefaultName,
		"digest algorithm ("+strings.Join(hdigest.Names(), ", ")+")")
	rootCmd.Flags().BoolVarP(&listAll, "list", "l", false,
		"list every matching candidate instead of emitting a poisoned file")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0,
		"number of parallel workers (default GOMAXPROCS)")
	rootCmd.Flags().StringVar(&logLevelStr, "log-level", slog.LevelInfo.String(),
		"level for diagnostics on stderr (debug, info, warn, error)")
}

// setFlagsFromEnv fills flags that were not set on the command line
// from environment variables: --log-level becomes HASH_SEARCH_LOG_LEVEL.
func setFlagsFromEnv(fs *pflag.FlagSet, prefix string) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		name := prefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(name); ok {
			if serr := fs.Set(f.Name, v); serr != nil {
				err = fmt.Errorf("setting --%s from %s: %w", f.Name, name, serr)
			}
		}
	})
	return err
}

func run(cmd *cobra.Command, args []string) error {
	// The arguments parsed; remaining failures are not usage errors.
	cmd.SilenceUsage = true

	if err := setFlagsFromEnv(cmd.Flags(), envPrefix); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevelStr)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevelStr, err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	target, err := hprefix.Parse(args[0])
	if err != nil {
		return err
	}

	alg, err := hdigest.Lookup(digestName)
	if err != nil {
		return err
	}

	maxSearch, err := hashsearch.MaxSearchForBits(bits)
	if err != nil {
		return err
	}

	mode := hashsearch.FirstMatch
	if listAll {
		mode = hashsearch.EnumerateAll
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	fmt.Fprint(os.Stderr, "reading file to hash from stdin...")
	if interactive {
		fmt.Fprintln(os.Stderr)
	}

	_, err = hashsearch.Run(ctx, hashsearch.RunConfig{
		Log:         log,
		Target:      target,
		Algorithm:   alg,
		MaxSearch:   maxSearch,
		Workers:     workers,
		Mode:        mode,
		Input:       os.Stdin,
		Output:      os.Stdout,
		OnChunk:     chunkProgress(os.Stderr, interactive),
		OnInputRead: inputDone(os.Stderr, interactive),
	})
	return err
}

// chunkProgress returns a per-chunk callback printing a dot to w
// every 256 chunks. Interactive input gets no dots: a human typing at
// a terminal does not need a progress indicator for their own typing.
func chunkProgress(w io.Writer, interactive bool) func(int) {
	if interactive {
		return nil
	}

	var count int
	return func(int) {
		if count%256 == 0 {
			fmt.Fprint(w, ".")
		}
		count++
	}
}

// inputDone terminates the progress-dot line before the search
// diagnostics begin.
func inputDone(w io.Writer, interactive bool) func() {
	if interactive {
		return nil
	}
	return func() {
		fmt.Fprintln(w)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var noMatch hashsearch.NoMatchError
		if errors.As(err, &noMatch) {
			fmt.Fprintln(os.Stderr, "no match found.")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
