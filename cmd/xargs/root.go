package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/findutils/pkg/xargs"
)

// Populated via ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	exitCode int

	flagNull         bool
	flagArgFile      string
	flagDelimiter    string
	flagEOFString    string
	flagReplace      string
	flagMaxLines     int
	flagMaxArgs      int
	flagMaxProcs     int
	flagInteractive  bool
	flagNoRunIfEmpty bool
	flagMaxChars     int
	flagVerbose      bool
	flagExit         bool
	flagSlotVar      string
	flagVersion      bool
)

var rootCmd = &cobra.Command{
	Use:           "xargs [options] [command [initial-arguments]]",
	Short:         "Build and execute command lines from standard input",
	Long: `xargs reads delimited arguments from standard input and executes the given
command (default: /bin/echo) with those arguments batched under the
configured limits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runXargs,
}

func init() {
	flags := rootCmd.Flags()
	// Everything after the first positional argument belongs to the child
	// command line.
	flags.SetInterspersed(false)

	flags.BoolVarP(&flagNull, "null", "0", false, "split the input on NUL bytes rather than whitespace")
	flags.StringVarP(&flagArgFile, "arg-file", "a", "", "read arguments from FILE instead of standard input")
	flags.StringVarP(&flagDelimiter, "delimiter", "d", "", "split the input on the given byte")
	flags.StringVarP(&flagEOFString, "eof", "E", "", "stop reading input at the first occurrence of STR")
	flags.StringVarP(&flagReplace, "replace-str", "I", "", "replace occurrences of STR in the initial arguments with one input token")
	flags.IntVarP(&flagMaxLines, "max-lines", "L", 0, "use at most N input lines per command invocation")
	flags.IntVarP(&flagMaxArgs, "max-args", "n", 0, "use at most N arguments per command invocation")
	flags.IntVarP(&flagMaxProcs, "max-procs", "P", 1, "run up to N commands in parallel (0 = as many as possible)")
	flags.BoolVarP(&flagInteractive, "interactive", "p", false, "prompt before running each command")
	flags.BoolVarP(&flagNoRunIfEmpty, "no-run-if-empty", "r", false, "do not run the command when the input is empty")
	flags.IntVarP(&flagMaxChars, "max-chars", "s", 0, "limit the command line to at most N bytes")
	flags.BoolVarP(&flagVerbose, "verbose", "t", false, "print each command line on standard error before running it")
	flags.BoolVarP(&flagExit, "exit", "x", false, "exit if a command line exceeds the size limit while -n, -L or -I is in force")
	flags.StringVar(&flagSlotVar, "process-slot-var", "", "export the worker slot index to the child in this variable")
	flags.BoolVar(&flagVersion, "version", false, "print the version and exit")
}

// lastFlagWins resolves flag pairs where GNU xargs honors whichever came
// later on the command line.
func lastFlagWins(args []string, a, b string) string {
	winner := ""
	for _, arg := range args {
		switch arg {
		case a:
			winner = a
		case b:
			winner = b
		}
	}
	return winner
}

func runXargs(cmd *cobra.Command, args []string) error {
	if flagVersion {
		fmt.Printf("xargs %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	}

	if flagMaxProcs == 0 {
		// -P0: as many processes as possible.
		flagMaxProcs = xargs.UnlimitedProcs
	}

	opts := &xargs.Options{
		Command:        args,
		ArgFile:        flagArgFile,
		EOFString:      flagEOFString,
		Replace:        flagReplace,
		MaxArgs:        flagMaxArgs,
		MaxLines:       flagMaxLines,
		MaxChars:       flagMaxChars,
		Parallelism:    flagMaxProcs,
		NoRunIfEmpty:   flagNoRunIfEmpty,
		Verbose:        flagVerbose,
		Interactive:    flagInteractive,
		ExitOnLarge:    flagExit,
		ProcessSlotVar: flagSlotVar,
	}

	if flagMaxArgs > 0 && flagMaxLines > 0 {
		fmt.Fprintln(os.Stderr, "xargs: warning: both --max-args and --max-lines were given; the last one takes effect")
		if lastFlagWins(os.Args[1:], "-n", "-L") == "-n" {
			opts.MaxLines = 0
		} else {
			opts.MaxArgs = 0
		}
	}

	if flagDelimiter != "" {
		d, err := xargs.ParseDelimiter(flagDelimiter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xargs: %v\n", err)
			exitCode = xargs.ExitError
			return nil
		}
		opts.Delimiter = &d
	}
	if flagNull {
		// -0 and -d: whichever came later wins.
		if opts.Delimiter == nil || lastFlagWins(os.Args[1:], "-0", "-d") == "-0" {
			nul := byte(0)
			opts.Delimiter = &nul
		}
	}

	var input io.Reader = os.Stdin
	if flagArgFile != "" {
		f, err := os.Open(flagArgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xargs: failed to open %s: %v\n", flagArgFile, err)
			exitCode = xargs.ExitError
			return nil
		}
		defer f.Close()
		input = f
	}

	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	exitCode = xargs.Do(opts, input, xargs.NewLogger(os.Stderr, level))
	return nil
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return xargs.ExitError
	}
	return exitCode
}
