package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"twigblock/internal/version"
)

// Exit codes.
const (
	exitOK       = 0
	exitFindings = 1
	exitUsage    = 2
)

var rootCmd = &cobra.Command{
	Use:   "twigblock",
	Short: "Track Twig blocks copied from parent templates",
	Long: `twigblock annotates overridden Twig blocks with a hash of the parent
block they were copied from, and validates those annotations later so that
upstream changes to a parent template are noticed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupColor(cmd); err != nil {
			return usageError(err)
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return usageError(err)
		}
		traceCleanup = cleanup
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return usageError(err)
		}
		profileCleanup = stopProfiling
		return nil
	},
}

var (
	traceCleanup   = func(bool) {}
	profileCleanup = func() {}
)

// exitError carries a process exit code out of a command. A nil err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: exitUsage, err: err} }

func findings() error { return &exitError{code: exitFindings} }

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "only print problems")
	pf.Bool("timings", false, "show phase timings")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to collect")
	pf.String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	pf.String("config", "", "path to twigblock.toml (default: search upwards from the working directory)")
	pf.String("ui", "auto", "progress UI (auto|on|off)")
	pf.String("path-mode", "template", "how locations are printed (template|absolute|relative|basename)")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace output format (auto|text|ndjson); auto picks ndjson for .ndjson/.jsonl files")
	pf.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode ring")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	profileCleanup()
	traceCleanup(err != nil)
	stop()
	os.Exit(exitCode(err))
}

// exitCode reports err on stderr and maps it to a process exit code.
// Errors that do not carry a code are usage errors from cobra itself.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return exitUsage
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
