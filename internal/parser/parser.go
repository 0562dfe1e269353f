// Package parser builds the markup AST from the lexer's token stream.
//
// Inline conditionals are not part of the token grammar: a `{expr}` child is
// inspected byte-wise for a top-level `? :` or `&&` whose branch side starts
// markup, and qualifying branches are re-tokenized and re-parsed recursively.
package parser

import (
	"strings"

	"rsxc/internal/ast"
	"rsxc/internal/diag"
	"rsxc/internal/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	file   string
}

// Parse converts a token stream into a list of top-level markup nodes.
func Parse(tokens []lexer.Token, file string) ([]ast.Node, error) {
	p := &parser{tokens: tokens, file: file}
	nodes, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, p.errorf("unexpected closing tag </%s>", p.tokens[p.pos].Text)
	}
	return nodes, nil
}

func (p *parser) peek() (lexer.Token, bool) {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos], true
	}
	return lexer.Token{}, false
}

func (p *parser) advance() (lexer.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) errorf(format string, args ...any) error {
	return diag.Errorf(p.file, 0, 0, format, args...)
}

// parseNodes parses until the tokens run out or a close tag is seen; the
// close tag is left unconsumed so the parent element can verify it.
func (p *parser) parseNodes() ([]ast.Node, error) {
	var nodes []ast.Node
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == lexer.TokenCloseTag {
			return nodes, nil
		}
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

func (p *parser) parseNode() (ast.Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of tokens")
	}
	switch tok.Kind {
	case lexer.TokenOpenTag:
		return p.parseElement()
	case lexer.TokenText:
		p.advance()
		return &ast.Text{Value: tok.Text}, nil
	case lexer.TokenExpr:
		p.advance()
		return p.parseExpression(tok.Text)
	default:
		return nil, p.errorf("unexpected token %v in markup body", tok.Kind)
	}
}

// parseExpression classifies a `{expr}` child: ternary, conditional-and, or
// opaque passthrough. Malformed conditional shapes error here rather than
// degrading silently.
func (p *parser) parseExpression(expr string) (ast.Node, error) {
	// Ternary binds outermost, so it is tried first.
	if qPos, ok := findTernaryQuestion(expr); ok {
		rest := expr[qPos+1:]
		cPos, ok := findTernaryColon(rest)
		if !ok {
			return nil, p.errorf("invalid ternary expression: expected `:`")
		}
		cond := strings.TrimSpace(expr[:qPos])
		trueStr := strings.TrimSpace(rest[:cPos])
		falseStr := strings.TrimSpace(rest[cPos+1:])
		if cond == "" || trueStr == "" || falseStr == "" {
			return nil, p.errorf("invalid ternary expression: expected `cond ? a : b`")
		}
		ifTrue, err := p.parseInline(trueStr)
		if err != nil {
			return nil, err
		}
		ifFalse, err := p.parseInline(falseStr)
		if err != nil {
			return nil, err
		}
		return &ast.Ternary{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}, nil
	}

	if andPos, ok := findCondAndSplit(expr); ok {
		cond := strings.TrimSpace(expr[:andPos])
		body := strings.TrimSpace(expr[andPos+2:])
		if cond == "" || body == "" {
			return nil, p.errorf("invalid conditional expression: expected `cond && <markup>`")
		}
		nodes, err := p.parseInline(body)
		if err != nil {
			return nil, err
		}
		return &ast.CondAnd{Cond: cond, Body: nodes}, nil
	}

	// Catch obviously malformed conditionals before passing through.
	if qPos, ok := findTopLevel(expr, '?'); ok {
		if strings.TrimSpace(expr[:qPos]) == "" {
			return nil, p.errorf("invalid ternary expression: missing condition before `?`")
		}
	}
	if andPos, ok := findTopLevelAnd(expr); ok {
		cond := strings.TrimSpace(expr[:andPos])
		rhs := strings.TrimSpace(expr[andPos+2:])
		if cond == "" || rhs == "" {
			return nil, p.errorf("invalid conditional expression: expected `cond && <expr>`")
		}
	}

	return &ast.Expr{Src: expr}, nil
}

// parseInline re-tokenizes and re-parses an extracted branch substring.
func (p *parser) parseInline(src string) ([]ast.Node, error) {
	tokens, err := lexer.Tokenize(src, p.file)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, p.file)
}

func (p *parser) parseElement() (ast.Node, error) {
	open, _ := p.advance()
	tag := open.Text

	var attrs []ast.Attr
attrLoop:
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated tag <%s>", tag)
		}
		switch tok.Kind {
		case lexer.TokenAttrName:
			p.advance()
			eq, _ := p.advance()
			if eq.Kind != lexer.TokenAttrEquals {
				return nil, p.errorf("expected '=' after attribute %q", tok.Text)
			}
			val, ok := p.advance()
			if !ok {
				return nil, p.errorf("expected attribute value for %q", tok.Text)
			}
			switch val.Kind {
			case lexer.TokenAttrValue:
				attrs = append(attrs, ast.Attr{Name: tok.Text, Kind: ast.AttrLiteral, Value: val.Text})
			case lexer.TokenAttrExpr:
				attrs = append(attrs, ast.Attr{Name: tok.Text, Kind: ast.AttrExpr, Value: val.Text})
			default:
				return nil, p.errorf("expected attribute value for %q", tok.Text)
			}
		case lexer.TokenSelfCloseEnd, lexer.TokenTagEnd:
			break attrLoop
		default:
			return nil, p.errorf("unexpected token %v in tag attributes", tok.Kind)
		}
	}

	end, _ := p.advance()
	if end.Kind == lexer.TokenSelfCloseEnd {
		return &ast.Element{Tag: tag, Attrs: attrs, SelfClosing: true}, nil
	}

	children, err := p.parseNodes()
	if err != nil {
		return nil, err
	}

	closeTok, ok := p.advance()
	if !ok || closeTok.Kind != lexer.TokenCloseTag {
		return nil, p.errorf("expected closing tag </%s>", tag)
	}
	if closeTok.Text != tag {
		return nil, p.errorf("mismatched closing tag: <%s> closed by </%s>", tag, closeTok.Text)
	}

	return &ast.Element{Tag: tag, Attrs: attrs, Children: children}, nil
}

// isMarkupStart reports whether pos begins markup: `<` + letter, or a quote.
func isMarkupStart(s string, pos int) bool {
	if pos >= len(s) {
		return false
	}
	switch s[pos] {
	case '"':
		return true
	case '<':
		return pos+1 < len(s) && isAlpha(s[pos+1])
	}
	return false
}

// findTernaryQuestion finds the first `?` at bracket depth 0 whose right side
// starts markup.
func findTernaryQuestion(s string) (int, bool) {
	braceDepth, parenDepth := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipStringAt(s, i) - 1
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '?':
			if braceDepth == 0 && parenDepth == 0 && isMarkupStart(s, skipWS(s, i+1)) {
				return i, true
			}
		}
	}
	return 0, false
}

// findCondAndSplit finds the first `&&` at bracket depth 0 whose right side
// starts markup. Returns the position of the first `&`.
func findCondAndSplit(s string) (int, bool) {
	braceDepth, parenDepth := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipStringAt(s, i) - 1
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '&':
			if braceDepth == 0 && parenDepth == 0 && i+1 < len(s) && s[i+1] == '&' {
				if isMarkupStart(s, skipWS(s, i+2)) {
					return i, true
				}
				i++
			}
		}
	}
	return 0, false
}

// findTopLevel finds the first occurrence of target at bracket depth 0.
func findTopLevel(s string, target byte) (int, bool) {
	braceDepth, parenDepth := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipStringAt(s, i) - 1
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case target:
			if braceDepth == 0 && parenDepth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func findTopLevelAnd(s string) (int, bool) {
	braceDepth, parenDepth := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipStringAt(s, i) - 1
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '&':
			if braceDepth == 0 && parenDepth == 0 && i+1 < len(s) && s[i+1] == '&' {
				return i, true
			}
		}
	}
	return 0, false
}

// findTernaryColon locates the `:` separating the ternary branches. Markup
// tag nesting is tracked (branches contain whole elements), so only a colon
// at tag depth 0, outside braces, and after some branch content qualifies.
func findTernaryColon(s string) (int, bool) {
	tagDepth, braceDepth := 0, 0
	seenContent := false
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '"':
			seenContent = true
			i = skipStringAt(s, i)
			continue
		case s[i] == '{':
			braceDepth++
		case s[i] == '}':
			braceDepth--
		case s[i] == '<' && braceDepth == 0:
			seenContent = true
			if i+1 < len(s) && s[i+1] == '/' {
				i += 2
				for i < len(s) && s[i] != '>' {
					i++
				}
				if i < len(s) {
					i++
				}
				tagDepth--
				continue
			}
			if i+1 < len(s) && isAlpha(s[i+1]) {
				i++
				for i < len(s) && (isAlpha(s[i]) || isDigit(s[i]) || s[i] == '_' || s[i] == '-') {
					i++
				}
				selfClosing := false
				for i < len(s) {
					if s[i] == '"' {
						i = skipStringAt(s, i)
						continue
					}
					if s[i] == '/' && i+1 < len(s) && s[i+1] == '>' {
						selfClosing = true
						i += 2
						break
					}
					if s[i] == '>' {
						i++
						break
					}
					i++
				}
				if !selfClosing {
					tagDepth++
				}
				continue
			}
		case s[i] == ':' && braceDepth == 0 && tagDepth == 0 && seenContent:
			return i, true
		}
		i++
	}
	return 0, false
}

func skipWS(s string, pos int) int {
	for pos < len(s) {
		switch s[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func skipStringAt(s string, start int) int {
	i := start + 1
	for i < len(s) {
		if s[i] == '\\' {
			i += 2
			continue
		}
		if s[i] == '"' {
			return i + 1
		}
		i++
	}
	return i
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
