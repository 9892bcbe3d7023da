package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"twigblock/internal/pipeline"
)

var annotateFlags struct {
	runFlags
	dryRun bool
	yes    bool
}

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Write block annotations into target templates",
	Long: `annotate inserts or refreshes a {# twig-block:<hash>@<version> #} comment
above every block of the target templates that overrides a parent block.
Files are rewritten in place.`,
	Args: cobra.NoArgs,
	RunE: runAnnotate,
}

func init() {
	addRunFlags(annotateCmd, &annotateFlags.runFlags)
	annotateCmd.Flags().BoolVar(&annotateFlags.dryRun, "dry-run", false, "report what would change without writing")
	annotateCmd.Flags().BoolVarP(&annotateFlags.yes, "yes", "y", false, "do not ask for confirmation")
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd, &annotateFlags.runFlags)
	if err != nil {
		return usageError(err)
	}
	if !annotateFlags.dryRun && !annotateFlags.yes && isTerminal(os.Stdin) {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
			fmt.Sprintf("rewrite templates under %s?", s.targets))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
			return nil
		}
	}

	l, err := s.newLoader(cmd)
	if err != nil {
		return usageError(err)
	}
	req := s.request(l, annotateFlags.jobs)
	req.DryRun = annotateFlags.dryRun
	res, err := run(cmd.Context(), s, "annotate", req, pipeline.Annotate)
	if err != nil {
		if res != nil && res.Bag != nil {
			_ = s.printer(cmd, l).Diagnostics(res.Bag)
		}
		return pipelineError(err)
	}
	if err := s.printer(cmd, l).Annotate(res); err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return findings()
	}
	return nil
}

// confirm asks a yes/no question; anything but y/yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
