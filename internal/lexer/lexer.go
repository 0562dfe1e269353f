// Package lexer tokenizes embedded markup bodies into a flat token stream.
package lexer

import (
	"strings"

	"rsxc/internal/diag"
)

type tokenizer struct {
	src    string
	pos    int
	file   string
	tokens []Token
	// inTag is true between `<name` and the matching `>` or `/>`.
	inTag bool
}

// Tokenize converts a markup-bearing substring into an ordered token list.
// The same function is reused for recursively extracted conditional branches.
func Tokenize(source, file string) ([]Token, error) {
	t := &tokenizer{src: source, file: file}
	return t.run()
}

func (t *tokenizer) peekAt(offset int) byte {
	if t.pos+offset < len(t.src) {
		return t.src[t.pos+offset]
	}
	return 0
}

func (t *tokenizer) skipWhitespace() {
	for t.pos < len(t.src) {
		switch t.src[t.pos] {
		case ' ', '\t', '\n', '\r':
			t.pos++
		default:
			return
		}
	}
}

func (t *tokenizer) errorf(format string, args ...any) error {
	line, col := diag.LineCol(t.src, t.pos)
	return diag.Errorf(t.file, line, col, format, args...)
}

func (t *tokenizer) readIdent() string {
	start := t.pos
	for t.pos < len(t.src) && isNameChar(t.src[t.pos]) {
		t.pos++
	}
	return t.src[start:t.pos]
}

func (t *tokenizer) readQuotedString() (string, error) {
	t.pos++ // opening quote
	start := t.pos
	for t.pos < len(t.src) {
		switch t.src[t.pos] {
		case '\\':
			t.pos += 2
		case '"':
			s := t.src[start:t.pos]
			t.pos++
			return s, nil
		default:
			t.pos++
		}
	}
	return "", t.errorf("unterminated string literal")
}

// readBraceExpression consumes a `{...}` run, tracking nested braces and
// skipping quoted strings, and returns the trimmed inner text.
func (t *tokenizer) readBraceExpression() (string, error) {
	t.pos++ // opening brace
	start := t.pos
	depth := 1
	for t.pos < len(t.src) {
		switch t.src[t.pos] {
		case '"':
			t.pos++
			for t.pos < len(t.src) {
				if t.src[t.pos] == '\\' {
					t.pos += 2
					continue
				}
				if t.src[t.pos] == '"' {
					t.pos++
					break
				}
				t.pos++
			}
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := strings.TrimSpace(t.src[start:t.pos])
				t.pos++
				return s, nil
			}
		}
		t.pos++
	}
	return "", t.errorf("unterminated brace expression")
}

// readTextRun consumes a bare text child up to the next `<` or `{`.
func (t *tokenizer) readTextRun() string {
	start := t.pos
	for t.pos < len(t.src) && t.src[t.pos] != '<' && t.src[t.pos] != '{' {
		t.pos++
	}
	return strings.TrimSpace(t.src[start:t.pos])
}

func (t *tokenizer) run() ([]Token, error) {
	for t.pos < len(t.src) {
		t.skipWhitespace()
		if t.pos >= len(t.src) {
			break
		}
		b := t.src[t.pos]

		if t.inTag {
			switch {
			case b == '/' && t.peekAt(1) == '>':
				t.pos += 2
				t.inTag = false
				t.tokens = append(t.tokens, Token{Kind: TokenSelfCloseEnd})
			case b == '>':
				t.pos++
				t.inTag = false
				t.tokens = append(t.tokens, Token{Kind: TokenTagEnd})
			case b == '=':
				t.pos++
				t.tokens = append(t.tokens, Token{Kind: TokenAttrEquals})
			case b == '"':
				val, err := t.readQuotedString()
				if err != nil {
					return nil, err
				}
				t.tokens = append(t.tokens, Token{Kind: TokenAttrValue, Text: val})
			case b == '{':
				expr, err := t.readBraceExpression()
				if err != nil {
					return nil, err
				}
				t.tokens = append(t.tokens, Token{Kind: TokenAttrExpr, Text: expr})
			case isNameStart(b):
				name := t.readIdent()
				t.tokens = append(t.tokens, Token{Kind: TokenAttrName, Text: name})
			default:
				return nil, t.errorf("unexpected character %q in tag", string(b))
			}
			continue
		}

		switch {
		case b == '<' && t.peekAt(1) == '/':
			t.pos += 2
			name := t.readIdent()
			t.skipWhitespace()
			if t.pos >= len(t.src) || t.src[t.pos] != '>' {
				return nil, t.errorf("expected '>' in closing tag")
			}
			t.pos++
			t.tokens = append(t.tokens, Token{Kind: TokenCloseTag, Text: name})
		case b == '<' && isNameStart(t.peekAt(1)):
			t.pos++
			name := t.readIdent()
			t.inTag = true
			t.tokens = append(t.tokens, Token{Kind: TokenOpenTag, Text: name})
		case b == '"':
			text, err := t.readQuotedString()
			if err != nil {
				return nil, err
			}
			t.tokens = append(t.tokens, Token{Kind: TokenText, Text: text})
		case b == '{':
			expr, err := t.readBraceExpression()
			if err != nil {
				return nil, err
			}
			t.tokens = append(t.tokens, Token{Kind: TokenExpr, Text: expr})
		case b == '<':
			return nil, t.errorf("unexpected character '<' in markup body")
		default:
			if text := t.readTextRun(); text != "" {
				t.tokens = append(t.tokens, Token{Kind: TokenText, Text: text})
			}
		}
	}
	return t.tokens, nil
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameChar(b byte) bool {
	return isNameStart(b) || b == '-' || (b >= '0' && b <= '9')
}
