package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"twigblock/internal/pipeline"
)

var inspectFlags runFlags

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List annotations without validating them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := resolveSettings(cmd, &inspectFlags)
		if err != nil {
			return usageError(err)
		}
		l, err := s.newLoader(cmd)
		if err != nil {
			return usageError(err)
		}
		res, err := run(cmd.Context(), s, "inspect", s.request(l, inspectFlags.jobs), pipeline.Inspect)
		if err != nil {
			return pipelineError(err)
		}
		if err := s.printer(cmd, l).Inspect(res); err != nil {
			return err
		}
		if res.Bag.HasErrors() {
			return findings()
		}
		return nil
	},
}

var blocksFlags struct {
	runFlags
	filter string
}

var blocksCmd = &cobra.Command{
	Use:   "blocks <template>",
	Short: "Print the block table of a template with resolved origins",
	Example: `  twigblock blocks @MyTheme/storefront/base.html.twig
  twigblock blocks @MyTheme/storefront/base.html.twig --filter head`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd, &blocksFlags.runFlags)
		if err != nil {
			return usageError(err)
		}
		l, err := s.newLoader(cmd)
		if err != nil {
			return usageError(err)
		}
		rows, bag, err := pipeline.Blocks(cmd.Context(), s.request(l, blocksFlags.jobs), args[0], blocksFlags.filter)
		if err != nil {
			return &exitError{code: exitFindings, err: err}
		}
		if len(rows) == 0 && blocksFlags.filter != "" && s.format == "pretty" {
			fmt.Fprintf(cmd.OutOrStdout(), "no blocks match %q\n", blocksFlags.filter)
			return nil
		}
		return s.printer(cmd, l).Blocks(args[0], rows, bag)
	},
}

var graphFlags runFlags

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the inheritance order of target templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := resolveSettings(cmd, &graphFlags)
		if err != nil {
			return usageError(err)
		}
		l, err := s.newLoader(cmd)
		if err != nil {
			return usageError(err)
		}
		res, err := pipeline.Graph(cmd.Context(), s.request(l, graphFlags.jobs))
		if err != nil {
			return pipelineError(err)
		}
		if err := s.printer(cmd, l).Graph(res); err != nil {
			return err
		}
		if len(res.Cycles) > 0 {
			return findings()
		}
		return nil
	},
}

func init() {
	addRunFlags(inspectCmd, &inspectFlags)
	addRunFlags(blocksCmd, &blocksFlags.runFlags)
	blocksCmd.Flags().StringVar(&blocksFlags.filter, "filter", "", "fuzzy filter on block names")
	addRunFlags(graphCmd, &graphFlags)
}
