package twig

import (
	"regexp"
	"strings"

	"twigblock/internal/diag"
)

// Lexer splits template source into text, comment, tag and variable tokens.
type Lexer struct {
	src   string
	delim Delimiters
	off   int
	line  int
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string, d Delimiters) *Lexer {
	return &Lexer{src: src, delim: d, line: 1}
}

// Lex tokenizes src in one go.
func Lex(src string, d Delimiters) ([]Token, error) {
	lx := NewLexer(src, d)
	var out []Token
	for {
		tok, ok, err := lx.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, tok)
	}
}

// Next returns the next token; ok is false at end of input.
func (lx *Lexer) Next() (Token, bool, error) {
	if lx.off >= len(lx.src) {
		return Token{}, false, nil
	}

	kind, open := lx.nextOpen()
	if open != lx.off {
		end := len(lx.src)
		if open >= 0 {
			end = open
		}
		return lx.emit(TokenText, end, ""), true, nil
	}

	switch kind {
	case TokenComment:
		return lx.scanComment()
	case TokenTag:
		return lx.scanDelimited(TokenTag, lx.delim.BlockStart, lx.delim.BlockEnd)
	default:
		return lx.scanDelimited(TokenVar, lx.delim.VarStart, lx.delim.VarEnd)
	}
}

// nextOpen finds the earliest opening delimiter at or after the cursor.
func (lx *Lexer) nextOpen() (TokenKind, int) {
	best, kind := -1, TokenText
	try := func(k TokenKind, marker string) {
		idx := strings.Index(lx.src[lx.off:], marker)
		if idx < 0 {
			return
		}
		idx += lx.off
		if best < 0 || idx < best {
			best, kind = idx, k
		}
	}
	try(TokenComment, lx.delim.CommentStart)
	try(TokenTag, lx.delim.BlockStart)
	try(TokenVar, lx.delim.VarStart)
	return kind, best
}

func (lx *Lexer) scanComment() (Token, bool, error) {
	startLine := lx.line
	bodyStart := lx.off + len(lx.delim.CommentStart)
	rel := strings.Index(lx.src[bodyStart:], lx.delim.CommentEnd)
	if rel < 0 {
		return Token{}, false, syntaxErrorf(startLine, diag.SynUnclosedComment, "unclosed comment")
	}
	end := bodyStart + rel + len(lx.delim.CommentEnd)
	body := trimBody(lx.src[bodyStart : bodyStart+rel])
	return lx.emit(TokenComment, end, body), true, nil
}

// scanDelimited scans a tag or variable, skipping close markers inside
// quoted strings.
func (lx *Lexer) scanDelimited(kind TokenKind, open, closing string) (Token, bool, error) {
	startLine := lx.line
	bodyStart := lx.off + len(open)
	var quote byte
	for i := bodyStart; i < len(lx.src); i++ {
		c := lx.src[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case strings.HasPrefix(lx.src[i:], closing):
			end := i + len(closing)
			tok := lx.emit(kind, end, trimBody(lx.src[bodyStart:i]))
			if kind == TokenTag {
				if err := lx.skipVerbatim(tok); err != nil {
					return tok, false, err
				}
			}
			return tok, true, nil
		}
	}
	return Token{}, false, syntaxErrorf(startLine, diag.SynUnclosedTag, "unclosed %q", open)
}

// skipVerbatim moves the cursor past a verbatim/raw section, closing tag
// included, so its content is never tokenized.
func (lx *Lexer) skipVerbatim(tok Token) error {
	name, _ := splitTag(tok.Body)
	if name != "verbatim" && name != "raw" {
		return nil
	}
	closeRe := regexp.MustCompile(regexp.QuoteMeta(lx.delim.BlockStart) + `[-~]?\s*end` + name + `\s*[-~]?` + regexp.QuoteMeta(lx.delim.BlockEnd))
	loc := closeRe.FindStringIndex(lx.src[lx.off:])
	if loc == nil {
		return syntaxErrorf(tok.Line, diag.SynUnclosedVerbatim, "unclosed %s section", name)
	}
	lx.advance(lx.off + loc[1])
	return nil
}

func (lx *Lexer) emit(kind TokenKind, end int, body string) Token {
	tok := Token{
		Kind:   kind,
		Raw:    lx.src[lx.off:end],
		Body:   body,
		Line:   lx.line,
		Offset: lx.off,
		End:    end,
	}
	tok.EndLine = tok.Line + strings.Count(strings.TrimSuffix(tok.Raw, "\n"), "\n")
	lx.advance(end)
	return tok
}

func (lx *Lexer) advance(to int) {
	lx.line += strings.Count(lx.src[lx.off:to], "\n")
	lx.off = to
}

// trimBody strips whitespace-control modifiers and surrounding spaces.
func trimBody(body string) string {
	body = strings.TrimPrefix(body, "-")
	body = strings.TrimPrefix(body, "~")
	body = strings.TrimSuffix(body, "-")
	body = strings.TrimSuffix(body, "~")
	return strings.TrimSpace(body)
}

// splitTag returns the tag name and the remaining arguments.
func splitTag(body string) (string, string) {
	body = strings.TrimSpace(body)
	idx := strings.IndexFunc(body, isSpace)
	if idx < 0 {
		return body, ""
	}
	return body[:idx], strings.TrimSpace(body[idx:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
