// cmd/fstree/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gagin/fstree/internal/config"
)

const Version = "0.1.0"

// errFailures signals that the run finished but some entries failed. The
// details have already been printed.
var errFailures = errors.New("completed with errors")

// app carries the persistent flags and the loaded config to subcommands.
type app struct {
	configPath string
	logLevel   string
	quiet      bool
	verbose    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "fstree",
		Short: "Display directory trees and copy filtered subtrees",
		Long: `fstree walks a directory once, applying include/exclude regex patterns,
depth limits and an empty-folder policy, then either renders the result as a
tree or copies it into another directory with the same structure.

Examples:
  fstree display . -e '\.log$' --depth 2
  fstree copy src/ backup/ -i '\.rs$' --preserve --dry-run`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogging(cmd.ErrOrStderr())
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to a custom configuration file.")
	pf.StringVar(&a.logLevel, "loglevel", "info", "Set logging verbosity (debug, info, warn, error).")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress progress output; errors are still reported.")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output: debug logging and per-path copy lines.")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	cmd.AddCommand(newDisplayCmd(a))
	cmd.AddCommand(newCopyCmd(a))
	return cmd
}

// setupLogging installs the default slog handler. -q and -v take precedence
// over --loglevel.
func (a *app) setupLogging(w io.Writer) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(a.logLevel)); err != nil {
		fmt.Fprintf(w, "Invalid log level %q, defaulting to 'info'.\n", a.logLevel)
		logLevel = slog.LevelInfo
	}
	switch {
	case a.quiet:
		logLevel = slog.LevelError
	case a.verbose:
		logLevel = slog.LevelDebug
	}
	logOpts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel <= slog.LevelDebug}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, logOpts)))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
