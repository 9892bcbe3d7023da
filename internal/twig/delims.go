package twig

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiters are the literal markers of the three Twig constructs.
type Delimiters struct {
	BlockStart   string `toml:"-" msgpack:"bs"`
	BlockEnd     string `toml:"-" msgpack:"be"`
	CommentStart string `toml:"-" msgpack:"cs"`
	CommentEnd   string `toml:"-" msgpack:"ce"`
	VarStart     string `toml:"-" msgpack:"vs"`
	VarEnd       string `toml:"-" msgpack:"ve"`
}

// DefaultDelimiters returns the stock Twig lexer options.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		BlockStart:   "{%",
		BlockEnd:     "%}",
		CommentStart: "{#",
		CommentEnd:   "#}",
		VarStart:     "{{",
		VarEnd:       "}}",
	}
}

// Validate rejects empty or ambiguous delimiter sets.
func (d Delimiters) Validate() error {
	pairs := [][2]string{
		{"block start", d.BlockStart}, {"block end", d.BlockEnd},
		{"comment start", d.CommentStart}, {"comment end", d.CommentEnd},
		{"variable start", d.VarStart}, {"variable end", d.VarEnd},
	}
	var errs []error
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) == "" {
			errs = append(errs, fmt.Errorf("empty %s delimiter", p[0]))
		}
	}
	if d.BlockStart == d.CommentStart || d.BlockStart == d.VarStart || d.CommentStart == d.VarStart {
		errs = append(errs, errors.New("opening delimiters must be distinct"))
	}
	return errors.Join(errs...)
}

// Key is a stable identity of the delimiter set, used in cache keys.
func (d Delimiters) Key() string {
	return strings.Join([]string{d.BlockStart, d.BlockEnd, d.CommentStart, d.CommentEnd, d.VarStart, d.VarEnd}, "\x00")
}

// WrapComment renders body as a comment using these delimiters.
func (d Delimiters) WrapComment(body string) string {
	return d.CommentStart + " " + body + " " + d.CommentEnd
}
