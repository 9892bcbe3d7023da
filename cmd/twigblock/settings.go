package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"twigblock/internal/diag"
	"twigblock/internal/diagfmt"
	"twigblock/internal/loader"
	"twigblock/internal/observ"
	"twigblock/internal/pipeline"
	"twigblock/internal/project"
	"twigblock/internal/report"
	"twigblock/internal/twig"
)

const appName = "twigblock"

const noTargetsMessage = "no target paths: pass --validate/-c or add [paths].targets to " + project.ConfigFile

// runFlags are shared by the batch commands.
type runFlags struct {
	context   []string
	targets   []string
	version   string
	noVersion bool
	checkAll  bool
	format    string
	jobs      int
	noCache   bool
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.context, "template", "t", nil, "context template path, @Namespace:path or path (repeatable)")
	fl.StringArrayVarP(&f.targets, "validate", "c", nil, "target template path, @Namespace:path or path (repeatable)")
	fl.StringVarP(&f.version, "use-version", "r", "", "default framework version for annotations")
	fl.BoolVar(&f.noVersion, "no-version", false, "ignore versions entirely")
	fl.BoolVarP(&f.checkAll, "check-all", "a", false, "treat context paths as targets too")
	fl.StringVar(&f.format, "format", "pretty", "output format (pretty|json|yaml)")
	fl.IntVar(&f.jobs, "jobs", 0, "parallel template loads (0 = GOMAXPROCS)")
	fl.BoolVar(&f.noCache, "no-cache", false, "do not use the on-disk parse cache")
}

// settings is the merged view of twigblock.toml and command-line flags.
type settings struct {
	manifest *project.Manifest
	context  project.PathMap
	targets  project.PathMap
	version  string
	delims   twig.Delimiters
	ttl      time.Duration
	disk     bool
	format   report.Format
	pathMode diagfmt.PathMode
	baseDir  string
	quiet    bool
	useUI    bool
	maxDiags int
	minSev   diag.Severity
	timer    *observ.Timer
}

// loadManifest honors --config, otherwise searches upwards from the
// working directory. A missing file is not an error.
func loadManifest(cmd *cobra.Command) (*project.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return project.LoadManifestFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, _, err := project.LoadManifest(wd)
	return m, err
}

func resolveSettings(cmd *cobra.Command, f *runFlags) (*settings, error) {
	pf := cmd.Root().PersistentFlags()
	s := &settings{delims: twig.DefaultDelimiters(), ttl: loader.DefaultTTL, disk: true}

	format, err := report.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	s.format = format
	modeStr, _ := pf.GetString("path-mode")
	mode, ok := diagfmt.ParsePathMode(modeStr)
	if !ok {
		return nil, fmt.Errorf("invalid --path-mode %q", modeStr)
	}
	s.pathMode = mode
	s.quiet, _ = pf.GetBool("quiet")
	s.maxDiags, _ = pf.GetInt("max-diagnostics")
	sevStr, _ := pf.GetString("min-severity")
	if s.minSev, err = diag.ParseSeverity(sevStr); err != nil {
		return nil, err
	}
	if timings, _ := pf.GetBool("timings"); timings {
		s.timer = observ.NewTimer()
	}
	uiValue, _ := pf.GetString("ui")
	ui, err := readUIMode(uiValue)
	if err != nil {
		return nil, err
	}
	s.useUI = format == report.FormatPretty && !s.quiet && shouldUseTUI(ui)

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	s.baseDir = wd
	s.context, s.targets = project.PathMap{}, project.PathMap{}

	s.manifest, err = loadManifest(cmd)
	if err != nil {
		return nil, err
	}
	if m := s.manifest; m != nil {
		s.baseDir = m.Root
		if s.context, s.targets, err = m.Resolve(); err != nil {
			return nil, err
		}
		s.version = m.Config.Version.Default
		if s.delims, err = m.Config.Lexer.Delimiters(); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		if s.ttl, err = m.Config.Cache.Duration(); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		s.disk = m.Config.Cache.DiskEnabled()
	}

	// flags replace config paths instead of extending them
	if len(f.context) > 0 {
		if s.context, err = project.ParsePathMap(f.context, wd); err != nil {
			return nil, err
		}
	}
	if len(f.targets) > 0 {
		if s.targets, err = project.ParsePathMap(f.targets, wd); err != nil {
			return nil, err
		}
	}
	if f.checkAll {
		s.targets = s.targets.Merge(s.context)
	}
	if s.targets.Len() == 0 {
		return nil, errors.New(noTargetsMessage)
	}

	if f.version != "" {
		s.version = f.version
	}
	if f.noVersion {
		s.version = ""
	}
	if f.noCache {
		s.disk = false
	}
	return s, nil
}

// newLoader builds the loader. A disk cache that cannot be opened is
// reported and skipped.
func (s *settings) newLoader(cmd *cobra.Command) (*loader.Loader, error) {
	opts := loader.Options{Delimiters: s.delims, TTL: s.ttl, BaseDir: s.baseDir}
	if s.disk {
		dc, err := loader.OpenDiskCache(appName)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
		} else {
			opts.Disk = dc
		}
	}
	return loader.New(opts)
}

func (s *settings) request(l *loader.Loader, jobs int) *pipeline.Request {
	return &pipeline.Request{
		Context:        s.context,
		Targets:        s.targets,
		Version:        s.version,
		Jobs:           jobs,
		MaxDiagnostics: s.maxDiags,
		Loader:         l,
		Timer:          s.timer,
	}
}

func (s *settings) printer(cmd *cobra.Command, l *loader.Loader) *report.Printer {
	return report.New(cmd.OutOrStdout(), report.Options{
		Format:      s.format,
		Color:       colorEnabled(),
		Quiet:       s.quiet,
		MinSeverity: s.minSev,
		PathMode:    s.pathMode,
		BaseDir:     s.baseDir,
		Sources:     l,
		Timings:     s.timer,
	})
}

// pipelineError maps pipeline failures to exit codes.
func pipelineError(err error) error {
	if errors.Is(err, pipeline.ErrNoTargets) {
		return usageError(fmt.Errorf("%w: none of the target directories could be read", err))
	}
	return &exitError{code: exitFindings, err: err}
}
