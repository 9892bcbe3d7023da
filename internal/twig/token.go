package twig

// TokenKind classifies lexer output.
type TokenKind uint8

const (
	TokenText TokenKind = iota
	TokenComment
	TokenTag
	TokenVar
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenComment:
		return "comment"
	case TokenTag:
		return "tag"
	case TokenVar:
		return "var"
	}
	return "unknown"
}

// Token is one lexical unit. Raw includes the delimiters, Body is the inner
// text with whitespace-control modifiers and surrounding spaces removed.
type Token struct {
	Kind    TokenKind
	Raw     string
	Body    string
	Line    int // 1-based line of the first byte
	EndLine int // 1-based line of the last byte
	Offset  int
	End     int
}

// SingleLine reports whether the token starts and ends on the same line.
func (t Token) SingleLine() bool {
	return t.Line == t.EndLine
}
