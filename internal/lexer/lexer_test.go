package lexer

import "testing"

func tok(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Tokenize(src, "<test>")
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", src, err)
	}
	return tokens
}

func assertTokens(t *testing.T, got, want []Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = {%v %q}, want {%v %q}", i, got[i].Kind, got[i].Text, want[i].Kind, want[i].Text)
		}
	}
}

func TestTokenizeSimpleElement(t *testing.T) {
	got := tok(t, `<div class="foo">"hello"</div>`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "div"},
		{Kind: TokenAttrName, Text: "class"},
		{Kind: TokenAttrEquals},
		{Kind: TokenAttrValue, Text: "foo"},
		{Kind: TokenTagEnd},
		{Kind: TokenText, Text: "hello"},
		{Kind: TokenCloseTag, Text: "div"},
	})
}

func TestTokenizeSelfClosing(t *testing.T) {
	got := tok(t, `<br />`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "br"},
		{Kind: TokenSelfCloseEnd},
	})
}

func TestTokenizeExpressionChild(t *testing.T) {
	got := tok(t, `<div>{items()}</div>`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "div"},
		{Kind: TokenTagEnd},
		{Kind: TokenExpr, Text: "items()"},
		{Kind: TokenCloseTag, Text: "div"},
	})
}

func TestTokenizeNestedBraces(t *testing.T) {
	got := tok(t, `<div>{ map(|x| { x + 1 }) }</div>`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "div"},
		{Kind: TokenTagEnd},
		{Kind: TokenExpr, Text: "map(|x| { x + 1 })"},
		{Kind: TokenCloseTag, Text: "div"},
	})
}

func TestTokenizeMultipleAttrs(t *testing.T) {
	got := tok(t, `<a href="/" id="home" />`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "a"},
		{Kind: TokenAttrName, Text: "href"},
		{Kind: TokenAttrEquals},
		{Kind: TokenAttrValue, Text: "/"},
		{Kind: TokenAttrName, Text: "id"},
		{Kind: TokenAttrEquals},
		{Kind: TokenAttrValue, Text: "home"},
		{Kind: TokenSelfCloseEnd},
	})
}

func TestTokenizeAttrExpression(t *testing.T) {
	got := tok(t, `<button onclick={handle} />`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "button"},
		{Kind: TokenAttrName, Text: "onclick"},
		{Kind: TokenAttrEquals},
		{Kind: TokenAttrExpr, Text: "handle"},
		{Kind: TokenSelfCloseEnd},
	})
}

func TestTokenizeNestedElements(t *testing.T) {
	got := tok(t, `<div><span>"x"</span></div>`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "div"},
		{Kind: TokenTagEnd},
		{Kind: TokenOpenTag, Text: "span"},
		{Kind: TokenTagEnd},
		{Kind: TokenText, Text: "x"},
		{Kind: TokenCloseTag, Text: "span"},
		{Kind: TokenCloseTag, Text: "div"},
	})
}

func TestTokenizeBareText(t *testing.T) {
	got := tok(t, `<p>hello world</p>`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "p"},
		{Kind: TokenTagEnd},
		{Kind: TokenText, Text: "hello world"},
		{Kind: TokenCloseTag, Text: "p"},
	})
}

func TestTokenizeStringInExpressionSkipped(t *testing.T) {
	got := tok(t, `<div>{format("{}", n)}</div>`)
	assertTokens(t, got, []Token{
		{Kind: TokenOpenTag, Text: "div"},
		{Kind: TokenTagEnd},
		{Kind: TokenExpr, Text: `format("{}", n)`},
		{Kind: TokenCloseTag, Text: "div"},
	})
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated string", `<div>"oops`},
		{"unterminated brace", `<div>{expr`},
		{"bad closing tag", `<div></div`},
		{"unexpected char in tag", `<div @foo>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Tokenize(tt.src, "<test>"); err == nil {
				t.Errorf("Tokenize(%q) succeeded, want error", tt.src)
			}
		})
	}
}
