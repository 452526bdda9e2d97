package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/findutils/pkg/find"
)

// Populated via ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var exitCode int

// rootCmd is the find shell. Flag parsing is disabled: the expression
// language is order-sensitive and owns everything after the roots, so the
// whole argument vector is handed to the parser.
var rootCmd = &cobra.Command{
	Use:                "find [-H|-L|-P] [-D debugopts] [--] [path...] [expression]",
	Short:              "Search for files in a directory hierarchy",
	Long: `find walks the directory trees rooted at each given path, evaluating the
given expression against every entry. The default path is the current
directory and the default expression is -print.`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFromArgs(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "find: %v\n", err)
			exitCode = 1
			return nil
		}
		exitCode = find.Run(args, find.NewStandardDependencies(), logger, versionString())
		return nil
	},
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// loggerFromArgs scans the leading -D flag for debug topics and maps them
// onto the logger level.
func loggerFromArgs(args []string) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	for i := 0; i < len(args)-1; i++ {
		if args[i] != "-D" {
			if args[i] == "--" || !strings.HasPrefix(args[i], "-") {
				break
			}
			continue
		}
		for _, topic := range strings.Split(args[i+1], ",") {
			topicLevel, err := find.DebugTopicLevel(topic)
			if err != nil {
				return zerolog.Nop(), err
			}
			if topicLevel != zerolog.NoLevel && topicLevel < level {
				level = topicLevel
			}
		}
		i++
	}
	return find.NewLogger(os.Stderr, level), nil
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}
