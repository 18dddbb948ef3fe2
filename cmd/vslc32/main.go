// Command vslc32 compiles a single vslc32 source file to a FASM x86-32
// listing.
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vslc32/internal/compiler"
	"vslc32/internal/lexer"
	"vslc32/internal/vslerr"
)

// stdinReadDeadline bounds how long a missing source argument waits on
// stdin before giving up, mirroring the teacher's ReadSource.
const stdinReadDeadline = 2 * time.Second

var log zerolog.Logger

func main() {
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var out string
	var dumpTokens bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "vslc32 [source]",
		Short: "Compile a vslc32 source file to a FASM x86-32 listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			source, fileName, err := readSource(path)
			if err != nil {
				log.Error().Err(err).Msg("failed to read source")
				return err
			}

			if dumpTokens {
				return dumpTokenStream(cmd.OutOrStdout(), source, fileName)
			}

			return runCompile(cmd, source, fileName, out, verbose)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default stdout)")
	cmd.Flags().BoolVar(&dumpTokens, "tokens", false, "dump the token stream and exit")
	cmd.Flags().BoolVar(&dumpTokens, "ts", false, "alias of --tokens")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print compilation statistics to stderr")

	return cmd
}

// readSource loads source either from the named file, or, when path is
// empty, from stdin within stdinReadDeadline.
func readSource(path string) (source, fileName string, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		return string(data), path, nil
	}

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(os.Stdin)
		ch <- result{data, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return "", "", r.err
		}
		return string(r.data), "<stdin>", nil
	case <-time.After(stdinReadDeadline):
		return "", "", fmt.Errorf("timed out waiting for source on stdin")
	}
}

// dumpTokenStream scans source and writes every token, column-aligned, via
// text/tabwriter.
func dumpTokenStream(w io.Writer, source, fileName string) error {
	tz := lexer.New(source, fileName)
	tab := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tab.Flush()

	for {
		if err := tz.Advance(); err != nil {
			return err
		}
		t := tz.Current()
		fmt.Fprintf(tab, "%s\t%s\n", t.Location, t)
		if tz.ReachedEnd() {
			break
		}
	}
	return nil
}

// runCompile compiles source and writes the resulting listing to out (or
// stdout), printing statistics to stderr when verbose is set.
func runCompile(cmd *cobra.Command, source, fileName, out string, verbose bool) error {
	opt := compiler.Options{Verbose: verbose}
	listing, stats, err := compiler.CompileWithStats(source, fileName, opt)
	if err != nil {
		if ce, ok := err.(*vslerr.Error); ok {
			log.Error().Str("kind", ce.Kind.String()).Str("at", ce.Location.String()).Msg(ce.Message)
		} else {
			log.Error().Err(err).Msg("compile failed")
		}
		return err
	}

	w := cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, listing); err != nil {
		return err
	}

	if verbose {
		log.Info().Int("globals", stats.Globals).Int("functions", stats.Functions).Msg("compiled")
		for symbol, n := range stats.RegisterPeaks {
			log.Info().Str("function", symbol).Int("registers_used", n).Msg("register pressure")
		}
	}
	return nil
}
