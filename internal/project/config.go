package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"twigblock/internal/twig"
)

// Config mirrors twigblock.toml.
type Config struct {
	Paths   PathsConfig   `toml:"paths"`
	Version VersionConfig `toml:"version"`
	Lexer   LexerConfig   `toml:"lexer"`
	Cache   CacheConfig   `toml:"cache"`
}

type PathsConfig struct {
	Context []string `toml:"context"`
	Targets []string `toml:"targets"`
}

type VersionConfig struct {
	Default string `toml:"default"`
}

type LexerConfig struct {
	Block    []string `toml:"block"`
	Comment  []string `toml:"comment"`
	Variable []string `toml:"variable"`
}

type CacheConfig struct {
	TTL  string `toml:"ttl"`
	Disk *bool  `toml:"disk"`
}

// Manifest is a loaded config together with where it came from.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

var (
	// ErrBadDelimiterPair indicates a [lexer] entry that is not a two-element list.
	ErrBadDelimiterPair = errors.New("delimiter must be a [open, close] pair")
)

// LoadManifest finds and loads twigblock.toml starting at startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	configPath, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifestFile(configPath)
	return m, true, err
}

// LoadManifestFile loads the given config file.
func LoadManifestFile(path string) (*Manifest, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// LoadConfig decodes and validates a config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("lexer") {
		if _, err := cfg.Lexer.Delimiters(); err != nil {
			return Config{}, fmt.Errorf("%s: [lexer]: %w", path, err)
		}
	}
	if meta.IsDefined("cache", "ttl") {
		if _, err := cfg.Cache.Duration(); err != nil {
			return Config{}, fmt.Errorf("%s: [cache].ttl: %w", path, err)
		}
	}
	if meta.IsDefined("version", "default") && strings.TrimSpace(cfg.Version.Default) == "" {
		return Config{}, fmt.Errorf("%s: [version].default is empty", path)
	}
	return cfg, nil
}

// Delimiters merges the configured pairs over the Twig defaults.
func (c LexerConfig) Delimiters() (twig.Delimiters, error) {
	d := twig.DefaultDelimiters()
	pairs := []struct {
		name        string
		in          []string
		open, close *string
	}{
		{"block", c.Block, &d.BlockStart, &d.BlockEnd},
		{"comment", c.Comment, &d.CommentStart, &d.CommentEnd},
		{"variable", c.Variable, &d.VarStart, &d.VarEnd},
	}
	for _, p := range pairs {
		if p.in == nil {
			continue
		}
		if len(p.in) != 2 {
			return d, fmt.Errorf("%s: %w", p.name, ErrBadDelimiterPair)
		}
		*p.open, *p.close = p.in[0], p.in[1]
	}
	return d, d.Validate()
}

// Duration parses ttl; zero when unset.
func (c CacheConfig) Duration() (time.Duration, error) {
	if strings.TrimSpace(c.TTL) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", c.TTL)
	}
	return d, nil
}

// DiskEnabled reports whether the disk cache is on; it is on by default.
func (c CacheConfig) DiskEnabled() bool {
	return c.Disk == nil || *c.Disk
}

// Resolve turns configured paths into PathMaps relative to the manifest root.
func (m *Manifest) Resolve() (context, targets PathMap, err error) {
	context, err = ParsePathMap(m.Config.Paths.Context, m.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: [paths].context: %w", m.Path, err)
	}
	targets, err = ParsePathMap(m.Config.Paths.Targets, m.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: [paths].targets: %w", m.Path, err)
	}
	return context, targets, nil
}

// StarterConfig is written by `twigblock init`.
const StarterConfig = `# twigblock configuration

[paths]
# templates that are only read (parents of the targets)
context = ["@Storefront:vendor/shopware/storefront/Resources/views"]
# templates whose annotations are checked and written
targets = ["@MyTheme:src/Resources/views"]

[version]
default = "6.6.0.0"

[lexer]
block = ["{%", "%}"]
comment = ["{#", "#}"]
variable = ["{{", "}}"]

[cache]
ttl = "10m"
disk = true
`
