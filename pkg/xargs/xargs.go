// Package xargs implements the batching engine of a drop-in xargs(1):
// stdin is tokenized into arguments, arguments are packed into command
// invocations under byte and count limits, and the commands run with
// bounded parallelism.
package xargs

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog"
)

// defaultCommand is what runs when no command is given.
var defaultCommand = []string{"/bin/echo"}

// Do reads tokens from input, packs them into commands and runs them,
// returning the process exit status.
func Do(opts *Options, input io.Reader, log zerolog.Logger) int {
	argv := opts.Command
	if len(argv) == 0 {
		argv = defaultCommand
	}

	var chain LimiterChain
	switch {
	case opts.Replace != "":
		// Replace-string mode: exactly one token per command.
		chain = append(chain, NewMaxArgsLimiter(1))
	case opts.MaxArgs > 0:
		chain = append(chain, NewMaxArgsLimiter(opts.MaxArgs))
	case opts.MaxLines > 0:
		chain = append(chain, NewMaxLinesLimiter(opts.MaxLines))
	}
	if opts.MaxChars > 0 {
		chain = append(chain, NewMaxCharsLimiter(opts.MaxChars))
	}
	chain = append(chain, NewSystemCharsLimiter())

	builderOpts, err := NewBuilderOptions(argv, chain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xargs: %v\n", err)
		return ExitError
	}
	builderOpts.Verbose = opts.Verbose || opts.Interactive
	builderOpts.Interactive = opts.Interactive
	builderOpts.CloseStdin = opts.ArgFile == ""
	builderOpts.Replace = opts.Replace
	builderOpts.SlotVar = opts.ProcessSlotVar

	var reader ArgumentReader
	switch {
	case opts.Delimiter != nil:
		reader = NewByteDelimitedReader(input, *opts.Delimiter)
	case opts.Replace != "":
		reader = NewLineReader(input)
	default:
		reader = NewWhitespaceReader(input)
	}

	runner := NewRunner(builderOpts, opts.Parallelism)

	// On SIGINT the parent stops accepting new tokens, waits for in-flight
	// children and exits 130.
	var interrupted atomic.Bool
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signals)
		close(signals)
	}()
	go func() {
		if _, ok := <-signals; ok {
			log.Debug().Msg("interrupted; draining children")
			interrupted.Store(true)
		}
	}()

	exitOnLarge := opts.ExitOnLarge || opts.Replace != "" || opts.MaxLines > 0

	builder := NewBuilder(builderOpts)
	havePending := false
	readErr := error(nil)

	for !interrupted.Load() && !runner.aborted() {
		arg, err := reader.Next()
		if err != nil {
			readErr = err
			break
		}
		if arg == nil {
			break
		}
		if opts.EOFString != "" && opts.Delimiter == nil && opts.Replace == "" && arg.Text == opts.EOFString {
			break
		}

		if addErr := builder.AddArg(*arg); addErr != nil {
			exhausted, ok := addErr.(*ErrExhausted)
			if !ok {
				readErr = addErr
				break
			}
			if exhausted.OutOfChars && exitOnLarge && (opts.MaxArgs > 0 || opts.MaxLines > 0 || opts.Replace != "") {
				fmt.Fprintln(os.Stderr, "xargs: argument list too long")
				runner.Wait()
				return ExitError
			}
			if havePending {
				runner.Dispatch(builder.Argv())
			}
			builder = NewBuilder(builderOpts)
			if retryErr := builder.AddArg(exhausted.Arg); retryErr != nil {
				fmt.Fprintln(os.Stderr, "xargs: argument is too large to fit into one command execution")
				runner.Wait()
				return ExitError
			}
		}
		havePending = true
	}

	// One final invocation flushes the pending batch; an empty batch still
	// runs once unless -r was given or replace mode is on.
	if !runner.aborted() && !interrupted.Load() {
		if havePending && !builder.Empty() {
			runner.Dispatch(builder.Argv())
		} else if !opts.NoRunIfEmpty && !havePending && opts.Replace == "" {
			runner.Dispatch(builder.Argv())
		}
	}

	code := runner.Wait()
	if readErr != nil {
		fmt.Fprintf(os.Stderr, "xargs: %v\n", readErr)
		return ExitError
	}
	if interrupted.Load() {
		return ExitInterrupted
	}
	return code
}
