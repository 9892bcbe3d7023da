package twig

import (
	"regexp"
	"strings"

	"twigblock/internal/diag"
)

var blockNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type openBlock struct {
	index int
	line  int
}

type parser struct {
	mod        *Module
	stack      []openBlock
	embedDepth int
}

// Parse tokenizes and parses src as template name.
func Parse(name, src string, d Delimiters) (*Module, error) {
	mod, err := parse(src, d)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Template = name
		}
		return nil, err
	}
	mod.Name = name
	return mod, nil
}

func parse(src string, d Delimiters) (*Module, error) {
	p := &parser{mod: &Module{}}
	p.mod.index = make(map[string]int)

	lx := NewLexer(src, d)
	for {
		tok, ok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := p.token(tok); err != nil {
			return nil, err
		}
	}
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		return nil, syntaxErrorf(top.line, diag.SynUnclosedBlock, "block %q is never closed", p.mod.Blocks[top.index].Name)
	}
	return p.mod, nil
}

func (p *parser) token(tok Token) error {
	switch tok.Kind {
	case TokenComment:
		if p.embedDepth > 0 {
			return nil
		}
		p.mod.Nodes = append(p.mod.Nodes, Node{Kind: NodeComment, Line: tok.Line, EndLine: tok.EndLine, Text: tok.Body, Block: -1})
	case TokenTag:
		return p.tag(tok)
	}
	return nil
}

func (p *parser) tag(tok Token) error {
	name, args := splitTag(tok.Body)
	switch name {
	case "embed":
		p.embedDepth++
	case "endembed":
		if p.embedDepth > 0 {
			p.embedDepth--
		}
	case "extends", "sw_extends":
		if p.embedDepth == 0 && len(p.stack) == 0 && p.mod.Parent == "" {
			if parent, ok := constantString(args); ok {
				p.mod.Parent = parent
				p.mod.ParentLine = tok.Line
			}
		}
	case "block":
		if p.embedDepth > 0 {
			return nil
		}
		return p.openBlock(tok, args)
	case "endblock":
		if p.embedDepth > 0 {
			return nil
		}
		return p.closeBlock(tok, args)
	}
	return nil
}

func (p *parser) openBlock(tok Token, args string) error {
	blockName, expr := splitTag(args)
	if !blockNameRe.MatchString(blockName) {
		return syntaxErrorf(tok.Line, diag.SynBadBlockName, "invalid block name %q", blockName)
	}
	if prev, dup := p.mod.index[blockName]; dup {
		return syntaxErrorf(tok.Line, diag.SynDuplicateBlock, "block %q already defined on line %d", blockName, p.mod.Blocks[prev].Start)
	}

	idx := len(p.mod.Blocks)
	b := BlockNode{Name: blockName, Start: tok.Line, End: tok.EndLine, Level: len(p.stack)}
	if expr != "" {
		b.Inline = true
		b.Expr = expr
	}
	p.mod.Blocks = append(p.mod.Blocks, b)
	p.mod.index[blockName] = idx
	p.mod.Nodes = append(p.mod.Nodes, Node{Kind: NodeBlockEnter, Line: tok.Line, EndLine: tok.EndLine, Block: idx})

	if b.Inline {
		p.mod.Nodes = append(p.mod.Nodes, Node{Kind: NodeBlockLeave, Line: tok.Line, EndLine: tok.EndLine, Block: idx})
		return nil
	}
	p.stack = append(p.stack, openBlock{index: idx, line: tok.Line})
	return nil
}

func (p *parser) closeBlock(tok Token, args string) error {
	if len(p.stack) == 0 {
		return syntaxErrorf(tok.Line, diag.SynUnexpectedEndblock, "endblock without matching block")
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	b := &p.mod.Blocks[top.index]
	if closing, _ := splitTag(args); closing != "" && closing != b.Name {
		return syntaxErrorf(tok.Line, diag.SynEndblockMismatch, "expected endblock for %q (opened on line %d), got %q", b.Name, b.Start, closing)
	}
	b.End = tok.Line
	p.mod.Nodes = append(p.mod.Nodes, Node{Kind: NodeBlockLeave, Line: tok.Line, EndLine: tok.EndLine, Block: top.index})
	return nil
}

// constantString unquotes a single string literal argument.
func constantString(args string) (string, bool) {
	args = strings.TrimSpace(args)
	if len(args) < 2 {
		return "", false
	}
	q := args[0]
	if (q != '"' && q != '\'') || args[len(args)-1] != q {
		return "", false
	}
	inner := args[1 : len(args)-1]
	if strings.ContainsRune(inner, rune(q)) {
		return "", false
	}
	return inner, true
}
