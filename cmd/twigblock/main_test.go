package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"twigblock/internal/pipeline"
	"twigblock/internal/project"
)

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "auto": uiModeAuto, " ON ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("invalid mode accepted")
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{findings(), exitFindings},
		{usageError(errors.New("bad flag")), exitUsage},
		{errors.New("unknown command"), exitUsage},
		{pipelineError(pipeline.ErrNoTargets), exitUsage},
		{pipelineError(errors.New("cancelled")), exitFindings},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for in, want := range map[string]bool{"y\n": true, "Yes\n": true, "\n": false, "no\n": false, "": false} {
		got, err := confirm(strings.NewReader(in), &out, "go?")
		if err != nil || got != want {
			t.Errorf("confirm(%q) = %v, %v", in, got, err)
		}
	}
	if !strings.HasPrefix(out.String(), "go? [y/N] ") {
		t.Fatalf("prompt %q", out.String())
	}
}

func TestInitConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "theme")
	path, err := initConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := project.LoadManifestFile(path); err != nil {
		t.Fatalf("starter config does not load: %v", err)
	}
	if _, err := initConfig(dir); err == nil {
		t.Fatal("existing config overwritten")
	}
}

// testCommand builds a throwaway command tree with the real flags.
func testCommand(t *testing.T, f *runFlags, args ...string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "twigblock"}
	pf := root.PersistentFlags()
	pf.String("config", "", "")
	pf.Bool("quiet", false, "")
	pf.Bool("timings", false, "")
	pf.Int("max-diagnostics", 100, "")
	pf.String("min-severity", "info", "")
	pf.String("ui", "off", "")
	pf.String("path-mode", "template", "")
	cmd := &cobra.Command{Use: "validate"}
	addRunFlags(cmd, f)
	root.AddCommand(cmd)
	if err := root.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestResolveSettingsFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := `[paths]
context = ["@Core:core"]
targets = ["@Theme:theme"]

[version]
default = "6.5.0.0"
`
	cfgPath := filepath.Join(dir, project.ConfigFile)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var f runFlags
	cmd := testCommand(t, &f, "-r", "6.6.0.0", "-a")
	if err := cmd.Root().PersistentFlags().Set("config", cfgPath); err != nil {
		t.Fatal(err)
	}
	s, err := resolveSettings(cmd, &f)
	if err != nil {
		t.Fatal(err)
	}
	if s.version != "6.6.0.0" {
		t.Errorf("version = %q", s.version)
	}
	if got := s.targets.Namespaces(); len(got) != 2 || got[0] != "Core" || got[1] != "Theme" {
		t.Errorf("check-all targets = %v", got)
	}
	if s.targets["Theme"][0] != filepath.Join(dir, "theme") {
		t.Errorf("theme dir = %v", s.targets["Theme"])
	}

	f = runFlags{}
	cmd = testCommand(t, &f, "--no-version", "-c", "@Other:"+dir)
	if err := cmd.Root().PersistentFlags().Set("config", cfgPath); err != nil {
		t.Fatal(err)
	}
	s, err = resolveSettings(cmd, &f)
	if err != nil {
		t.Fatal(err)
	}
	if s.version != "" || s.targets.Len() != 1 || len(s.targets["Other"]) != 1 {
		t.Errorf("settings %+v", s)
	}
}

func TestResolveSettingsNeedsTargets(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, project.ConfigFile)
	if err := os.WriteFile(cfgPath, []byte("[version]\ndefault = \"6.6.0.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var f runFlags
	cmd := testCommand(t, &f)
	_ = cmd.Root().PersistentFlags().Set("config", cfgPath)
	if _, err := resolveSettings(cmd, &f); err == nil || err.Error() != noTargetsMessage {
		t.Fatalf("err = %v", err)
	}
}
