package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"twigblock/internal/pipeline"
)

var validateFlags struct {
	runFlags
	exitZero bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check block annotations against their parent blocks",
	Long: `validate reads every annotation in the target templates, recomputes the
hash of the block it was copied from and reports annotations whose hash or
version no longer matches.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	addRunFlags(validateCmd, &validateFlags.runFlags)
	validateCmd.Flags().BoolVar(&validateFlags.exitZero, "exit-zero", false, "exit with status 0 even if annotations are invalid")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd, &validateFlags.runFlags)
	if err != nil {
		return usageError(err)
	}
	l, err := s.newLoader(cmd)
	if err != nil {
		return usageError(err)
	}
	res, err := run(cmd.Context(), s, "validate", s.request(l, validateFlags.jobs), pipeline.Validate)
	if err != nil {
		if res != nil && res.Bag != nil {
			_ = s.printer(cmd, l).Diagnostics(res.Bag)
		}
		return pipelineError(err)
	}
	if err := s.printer(cmd, l).Validate(res); err != nil {
		return err
	}
	if validateFlags.exitZero {
		return nil
	}
	if res.Invalid() > 0 || res.Bag.HasErrors() {
		return findings()
	}
	return nil
}

func colorEnabled() bool { return !color.NoColor }
