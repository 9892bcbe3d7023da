package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"twigblock/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter " + project.ConfigFile,
	Long: `init writes a starter ` + project.ConfigFile + ` into [path] (default: the
current directory), creating the directory if needed. An existing file is
never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		path, err := initConfig(target)
		if err != nil {
			return usageError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func initConfig(dir string) (string, error) {
	if st, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	} else if !st.IsDir() {
		return "", fmt.Errorf("%q is not a directory", dir)
	}

	path := filepath.Join(dir, project.ConfigFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("already initialized: %s exists", path)
		}
		return "", err
	}
	if _, err := f.WriteString(project.StarterConfig); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}
