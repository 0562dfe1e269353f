package lexer

import "fmt"

type TokenKind int

const (
	// TokenOpenTag is `<name` — the opening tag name.
	TokenOpenTag TokenKind = iota
	// TokenCloseTag is `</name>`.
	TokenCloseTag
	// TokenSelfCloseEnd is `/>`.
	TokenSelfCloseEnd
	// TokenTagEnd is `>`.
	TokenTagEnd
	// TokenAttrName is an attribute name such as `class` or `href`.
	TokenAttrName
	// TokenAttrEquals is `=`.
	TokenAttrEquals
	// TokenAttrValue is a quoted attribute value, without the quotes.
	TokenAttrValue
	// TokenAttrExpr is a brace attribute expression, without the outer braces.
	TokenAttrExpr
	// TokenText is a child text run: either a quoted literal (without
	// quotes) or a bare run terminated by the next `<` or `{`.
	TokenText
	// TokenExpr is a `{expr}` child, brace-matched, without the outer braces.
	TokenExpr
)

// Token is one lexical unit of markup. Tokens own their text slice: joining
// all token texts reconstructs the input modulo the structural markers.
type Token struct {
	Kind TokenKind
	Text string
}

func (k TokenKind) String() string {
	switch k {
	case TokenOpenTag:
		return "open_tag"
	case TokenCloseTag:
		return "close_tag"
	case TokenSelfCloseEnd:
		return "/>"
	case TokenTagEnd:
		return ">"
	case TokenAttrName:
		return "attr_name"
	case TokenAttrEquals:
		return "="
	case TokenAttrValue:
		return "attr_value"
	case TokenAttrExpr:
		return "attr_expr"
	case TokenText:
		return "text"
	case TokenExpr:
		return "expr"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}
