package diagfmt

import (
	"fmt"

	"fortio.org/safecast"

	"twigblock/internal/source"
)

// Sources maps template names to files. *loader.Loader implements it.
type Sources interface {
	SourcePath(name string) (string, error)
	Files() *source.FileSet
}

// locate renders the location of template:line according to mode.
func locate(src Sources, template string, line int, mode PathMode, baseDir string) string {
	name := template
	if mode != PathModeTemplate && src != nil && template != "" {
		if path, err := src.SourcePath(template); err == nil {
			name = formatPath(path, mode, baseDir)
		}
	}
	if line > 0 && name != "" {
		return fmt.Sprintf("%s:%d", name, line)
	}
	return name
}

func formatPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := source.AbsolutePath(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if baseDir == "" {
			baseDir = "."
		}
		if rel, err := source.RelativePath(path, baseDir); err == nil {
			return rel
		}
	case PathModeBasename:
		return source.BaseName(path)
	}
	return path
}

// previewLine returns the source text of template:line if the file is
// already loaded.
func previewLine(src Sources, template string, line int) (string, bool) {
	if src == nil || template == "" || line <= 0 {
		return "", false
	}
	path, err := src.SourcePath(template)
	if err != nil {
		return "", false
	}
	file, ok := src.Files().GetByPath(path)
	if !ok {
		return "", false
	}
	n, err := safecast.Conv[uint32](line)
	if err != nil || line > file.LineCount() {
		return "", false
	}
	return file.GetLine(n), true
}
