// Package find implements the expression engine and traversal driver of a
// drop-in find(1): the command line is parsed into a tree of matchers, and
// the driver walks the starting points evaluating the tree against every
// entry.
package find

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

const helpText = `Usage: find [-H|-L|-P] [-D debugopts] [path...] [expression]

Default path is the current directory; default expression is -print.

Operators (decreasing precedence): ( EXPR ) ! EXPR -not EXPR
  EXPR1 -a EXPR2  EXPR1 -and EXPR2  EXPR1 -o EXPR2  EXPR1 -or EXPR2
  EXPR1 , EXPR2

Positional options (always true): -daystart -follow -regextype -noleaf

Normal options (always true, specified before other expressions):
  -depth -d -files0-from FILE -maxdepth LEVELS -mindepth LEVELS
  -mount -xdev -ignore_readdir_race -noignore_readdir_race
  -sorted -help --help -version --version

Tests (N can be +N or -N or N):
  -amin N -anewer FILE -atime N -cmin N -cnewer FILE -ctime N
  -empty -executable -false -fstype TYPE -gid N -group NAME -ilname PATTERN
  -iname PATTERN -inum N -ipath PATTERN -iregex PATTERN -iwholename PATTERN
  -links N -lname PATTERN -mmin N -mtime N -name PATTERN -newer FILE
  -newerXY REFERENCE -nogroup -nouser -path PATTERN -perm [-/]MODE
  -readable -regex PATTERN -samefile FILE -size N[bcwkMG] -true -type [bcdpfls]
  -uid N -used N -user NAME -wholename PATTERN -writable -xtype [bcdpfls]

Actions:
  -delete -print0 -printf FORMAT -fprintf FILE FORMAT -print
  -fprint0 FILE -fprint FILE -ls -fls FILE -prune -quit
  -exec COMMAND ; -exec COMMAND {} + -ok COMMAND ;
  -execdir COMMAND ; -execdir COMMAND {} + -okdir COMMAND ;

The -regextype option understands: posix-basic (default), posix-extended,
ed, emacs, grep, sed, findutils-default (an alias of emacs).
`

// Run parses the arguments, walks the starting points, and returns the
// process exit status. SIGINT and SIGTERM abort the traversal between
// entries; pending output is flushed first.
func Run(args []string, deps Dependencies, log zerolog.Logger, version string) int {
	parsed, err := ParseArgs(args, nil)
	if err != nil {
		fmt.Fprintf(deps.Err(), "find: %v\n", err)
		return 1
	}
	if parsed.Config.HelpRequested {
		io.WriteString(deps.Out(), helpText)
		return 0
	}
	if parsed.Config.VersionRequested {
		fmt.Fprintf(deps.Out(), "find %s\n", version)
		return 0
	}

	walker := NewWalker(parsed.Config, parsed.Matcher, deps, log)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signals)
		close(signals)
	}()
	go func() {
		if _, ok := <-signals; ok {
			log.Debug().Msg("interrupted; aborting traversal")
			walker.Interrupt()
		}
	}()

	return walker.WalkRoots(parsed.Paths)
}
