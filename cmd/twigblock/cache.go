package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"twigblock/internal/loader"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk parse cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached parse results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dc, err := loader.OpenDiskCache(appName)
		if err != nil {
			return &exitError{code: exitFindings, err: err}
		}
		if err := dc.DropAll(); err != nil {
			return &exitError{code: exitFindings, err: fmt.Errorf("failed to clean %s: %w", dc.Dir(), err)}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", dc.Dir())
		return nil
	},
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := loader.CacheDir(appName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
	cacheCmd.AddCommand(cacheDirCmd)
}
