package annotation

import (
	"errors"
	"regexp"
	"strings"
)

// Label prefixes every annotation payload.
const Label = "twig-block"

// ErrUnparseable is returned for annotation-shaped text without a valid payload.
var ErrUnparseable = errors.New("unparseable annotation")

// Pattern matches one payload; group 1 is the hash, group 2 the optional version.
var Pattern = regexp.MustCompile(regexp.QuoteMeta(Label) + `:([0-9a-f]+|` + UnknownHash + `)(?:@([0-9A-Za-z][0-9A-Za-z.+\-]*))?`)

// Payload is the decoded content of an annotation comment.
type Payload struct {
	Hash    string `json:"hash" yaml:"hash"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

func (p Payload) String() string {
	return Format(p.Hash, p.Version)
}

// Format renders the payload text without comment delimiters.
func Format(hash, version string) string {
	if version == "" {
		return Label + ":" + hash
	}
	return Label + ":" + hash + "@" + version
}

// IsAnnotation reports whether text looks like an annotation, parseable or not.
func IsAnnotation(text string) bool {
	return strings.Contains(text, Label)
}

// Parse extracts the payload from a comment body.
func Parse(text string) (Payload, error) {
	m := Pattern.FindStringSubmatch(text)
	if m == nil {
		return Payload{}, ErrUnparseable
	}
	return Payload{Hash: m[1], Version: m[2]}, nil
}

// Replace swaps the payload found in line for p, leaving the rest of the
// line untouched. ok is false when line carries no payload.
func Replace(line string, p Payload) (string, bool) {
	loc := Pattern.FindStringIndex(line)
	if loc == nil {
		return line, false
	}
	return line[:loc[0]] + p.String() + line[loc[1]:], true
}
