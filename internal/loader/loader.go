package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"twigblock/internal/source"
	"twigblock/internal/twig"
)

// DefaultExt is the template file suffix enumerated by LoadFiles.
const DefaultExt = ".twig"

// Options configure a Loader.
type Options struct {
	Delimiters twig.Delimiters
	TTL        time.Duration
	Disk       *DiskCache
	BaseDir    string
	Now        func() time.Time
}

// Template is one loaded and parsed template.
type Template struct {
	Name   string
	Path   string
	File   *source.File
	Module *twig.Module
}

// Parent returns the extends target, "" for a root template.
func (t *Template) Parent() string {
	if t == nil || t.Module == nil {
		return ""
	}
	return t.Module.Parent
}

// Lines returns the normalized source split into lines.
func (t *Template) Lines() []string {
	if t == nil || t.File == nil {
		return nil
	}
	return t.File.Lines()
}

// FileRef identifies one template found on disk.
type FileRef struct {
	Name      string
	Namespace string
	Rel       string
	Path      string
}

// Loader resolves, reads and parses templates. Safe for concurrent use.
type Loader struct {
	mu    sync.RWMutex
	delim twig.Delimiters
	paths map[string][]string
	files *source.FileSet
	cache *ttlCache
	disk  *DiskCache
}

// New returns a loader with no registered paths.
func New(opts Options) (*Loader, error) {
	d := opts.Delimiters
	if d == (twig.Delimiters{}) {
		d = twig.DefaultDelimiters()
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("lexer options: %w", err)
	}
	return &Loader{
		delim: d,
		paths: make(map[string][]string),
		files: source.NewFileSetWithBase(opts.BaseDir),
		cache: newTTLCache(opts.TTL, opts.Now),
		disk:  opts.Disk,
	}, nil
}

// Delimiters returns the lexer options used for parsing.
func (l *Loader) Delimiters() twig.Delimiters {
	return l.delim
}

// Files exposes the underlying file set.
func (l *Loader) Files() *source.FileSet {
	return l.files
}

// RegisterPath adds dir to the lookup paths of namespace ns.
func (l *Loader) RegisterPath(ns, dir string) error {
	if ns == "" {
		ns = MainNamespace
	}
	abs, err := source.AbsolutePath(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPathNotFound, dir, err)
	}
	if !source.Exists(abs, true) {
		return fmt.Errorf("%w: %s", ErrPathNotFound, dir)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.paths[ns] {
		if existing == abs {
			return nil
		}
	}
	l.paths[ns] = append(l.paths[ns], abs)
	return nil
}

// Namespaces returns the registered namespaces, sorted.
func (l *Loader) Namespaces() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.paths))
	for ns := range l.paths {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Paths returns the directories registered for ns.
func (l *Loader) Paths(ns string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.paths[ns]...)
}

// LoadFiles enumerates template files under dir, named within ns.
func (l *Loader) LoadFiles(ns, dir, ext string) ([]FileRef, error) {
	if ns == "" {
		ns = MainNamespace
	}
	if ext == "" {
		ext = DefaultExt
	}
	root, err := source.AbsolutePath(dir)
	if err != nil {
		return nil, err
	}
	if !source.Exists(root, true) {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, dir)
	}

	var refs []FileRef
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		refs = append(refs, FileRef{Name: Name(ns, rel), Namespace: ns, Rel: rel, Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Slice(refs, func(i, j int) bool { return refs[i].Rel < refs[j].Rel })
	return refs, nil
}

// SourcePath maps a template name to its file on disk.
func (l *Loader) SourcePath(name string) (string, error) {
	if v, ok := l.cache.get(KindSource, name); ok {
		return v.(string), nil
	}
	ns, rel, err := ParseName(name)
	if err != nil {
		return "", err
	}
	l.mu.RLock()
	dirs := l.paths[ns]
	l.mu.RUnlock()
	for _, dir := range dirs {
		candidate := filepath.Join(dir, filepath.FromSlash(rel))
		if source.Exists(candidate, false) {
			l.cache.put(KindSource, name, candidate)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// Load returns the parsed template for name.
func (l *Loader) Load(name string) (*Template, error) {
	if v, ok := l.cache.get(KindModule, name); ok {
		return v.(*Template), nil
	}
	p, err := l.SourcePath(name)
	if err != nil {
		return nil, err
	}
	id, err := l.files.Load(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	file := l.files.Get(id)

	mod, err := l.parse(name, file)
	if err != nil {
		return nil, err
	}
	t := &Template{Name: name, Path: p, File: file, Module: mod}
	l.cache.put(KindModule, name, t)
	return t, nil
}

func (l *Loader) parse(name string, file *source.File) (*twig.Module, error) {
	key := moduleKey(file.Hash, l.delim)
	var payload DiskPayload
	if hit, err := l.disk.Get(key, &payload); err == nil && hit && payload.Name == name {
		return payload.Module, nil
	}
	mod, err := twig.Parse(name, string(file.Content), l.delim)
	if err != nil {
		return nil, err
	}
	// ошибки кеша не фатальны
	_ = l.disk.Put(key, &DiskPayload{Name: name, Module: mod})
	return mod, nil
}

// Invalidate drops every cached view of name; the next Load rereads it.
func (l *Loader) Invalidate(name string) {
	if p, err := l.SourcePath(name); err == nil {
		l.files.Forget(p)
	}
	l.cache.drop(name)
}

// Memo returns the cached value of kind for name, computing it with fn on
// a miss. Errors are not cached.
func (l *Loader) Memo(kind, name string, fn func() (any, error)) (any, error) {
	if v, ok := l.cache.get(kind, name); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	l.cache.put(kind, name, v)
	return v, nil
}

// IsNotFound reports whether err means a missing template.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) || errors.Is(err, os.ErrNotExist)
}
