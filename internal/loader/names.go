package loader

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"twigblock/internal/project"
)

// MainNamespace holds templates addressed without an "@Ns/" prefix.
const MainNamespace = project.MainNamespace

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrPathNotFound     = errors.New("template path not found")
	ErrInvalidName      = errors.New("invalid template name")
)

// Name builds the template name for rel inside namespace ns.
func Name(ns, rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(rel, "\\", "/")), "/")
	if ns == "" || ns == MainNamespace {
		return rel
	}
	return "@" + ns + "/" + rel
}

// ParseName splits a template name into namespace and relative path.
func ParseName(name string) (ns, rel string, err error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return "", "", fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	ns = MainNamespace
	rel = name
	if strings.HasPrefix(name, "@") {
		idx := strings.IndexByte(name, '/')
		if idx <= 1 {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		ns, rel = name[1:idx], name[idx+1:]
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if rel == "" || rel == "." {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return ns, rel, nil
}
