package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// MainNamespace holds templates addressed without an "@Ns/" prefix.
const MainNamespace = "__main__"

// PathMap maps a template namespace to its directories.
type PathMap map[string][]string

// ErrInvalidNamespace indicates a namespace that is not an identifier.
var ErrInvalidNamespace = errors.New("invalid namespace")

// IsValidNamespace reports whether name can be used after "@".
func IsValidNamespace(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ParsePath splits "@Ns:path", "Ns:path" or "path" into namespace and path.
func ParsePath(arg string) (ns, dir string, err error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", "", errors.New("empty path")
	}
	explicit := strings.HasPrefix(arg, "@")
	body := strings.TrimPrefix(arg, "@")
	idx := strings.IndexByte(body, ':')
	// C:\views и C:/views: это путь, а не пространство имён
	if idx == 1 && len(body) > 2 && (body[2] == '\\' || body[2] == '/') && !explicit {
		idx = -1
	}
	if idx < 0 {
		if explicit {
			return "", "", fmt.Errorf("%w: %q has no path", ErrInvalidNamespace, arg)
		}
		return MainNamespace, arg, nil
	}
	ns, dir = body[:idx], body[idx+1:]
	if !IsValidNamespace(ns) {
		if explicit {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidNamespace, ns)
		}
		return MainNamespace, arg, nil
	}
	if strings.TrimSpace(dir) == "" {
		return "", "", fmt.Errorf("empty path for namespace %q", ns)
	}
	return ns, dir, nil
}

// ParsePathMap parses args; relative paths are joined to base.
func ParsePathMap(args []string, base string) (PathMap, error) {
	out := make(PathMap, len(args))
	for _, arg := range args {
		ns, dir, err := ParsePath(arg)
		if err != nil {
			return nil, err
		}
		if base != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		out.Add(ns, dir)
	}
	return out, nil
}

// Add appends dir to ns unless already present.
func (m PathMap) Add(ns, dir string) {
	dir = filepath.Clean(dir)
	for _, existing := range m[ns] {
		if existing == dir {
			return
		}
	}
	m[ns] = append(m[ns], dir)
}

// Merge returns a new map with the entries of m followed by other.
func (m PathMap) Merge(other PathMap) PathMap {
	out := make(PathMap, len(m)+len(other))
	for _, src := range []PathMap{m, other} {
		for _, ns := range src.Namespaces() {
			for _, dir := range src[ns] {
				out.Add(ns, dir)
			}
		}
	}
	return out
}

// Namespaces returns the keys, sorted.
func (m PathMap) Namespaces() []string {
	out := make([]string, 0, len(m))
	for ns := range m {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Len counts directories over all namespaces.
func (m PathMap) Len() int {
	n := 0
	for _, dirs := range m {
		n += len(dirs)
	}
	return n
}

func (m PathMap) String() string {
	var parts []string
	for _, ns := range m.Namespaces() {
		for _, dir := range m[ns] {
			if ns == MainNamespace {
				parts = append(parts, dir)
			} else {
				parts = append(parts, "@"+ns+":"+dir)
			}
		}
	}
	return strings.Join(parts, ", ")
}
