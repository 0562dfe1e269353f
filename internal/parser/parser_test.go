package parser

import (
	"strings"
	"testing"

	"rsxc/internal/ast"
	"rsxc/internal/lexer"
)

func parseSrc(t *testing.T, src string) []ast.Node {
	t.Helper()
	tokens, err := lexer.Tokenize(src, "<test>")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	nodes, err := Parse(tokens, "<test>")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return nodes
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	tokens, err := lexer.Tokenize(src, "<test>")
	if err != nil {
		return err
	}
	_, err = Parse(tokens, "<test>")
	if err == nil {
		t.Fatalf("parse of %q succeeded, want error", src)
	}
	return err
}

func TestParseSimpleElement(t *testing.T) {
	nodes := parseSrc(t, `<div class="main">"hello"</div>`)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	el, ok := nodes[0].(*ast.Element)
	if !ok {
		t.Fatalf("node is %T, want *ast.Element", nodes[0])
	}
	if el.Tag != "div" || el.SelfClosing {
		t.Errorf("el = %+v", el)
	}
	if len(el.Attrs) != 1 || el.Attrs[0].Name != "class" || el.Attrs[0].Value != "main" || el.Attrs[0].Kind != ast.AttrLiteral {
		t.Errorf("attrs = %+v", el.Attrs)
	}
	if len(el.Children) != 1 {
		t.Fatalf("children = %+v", el.Children)
	}
	if text, ok := el.Children[0].(*ast.Text); !ok || text.Value != "hello" {
		t.Errorf("child = %+v", el.Children[0])
	}
}

func TestParseSelfClosing(t *testing.T) {
	nodes := parseSrc(t, `<input type="text" />`)
	el := nodes[0].(*ast.Element)
	if !el.SelfClosing {
		t.Error("not self-closing")
	}
	if len(el.Children) != 0 {
		t.Errorf("self-closing element has children: %+v", el.Children)
	}
}

func TestParseAttrExpr(t *testing.T) {
	nodes := parseSrc(t, `<button onclick={handle} />`)
	el := nodes[0].(*ast.Element)
	if el.Attrs[0].Kind != ast.AttrExpr || el.Attrs[0].Value != "handle" {
		t.Errorf("attr = %+v", el.Attrs[0])
	}
}

func TestParseExpressionChild(t *testing.T) {
	nodes := parseSrc(t, `<div>{items()}</div>`)
	el := nodes[0].(*ast.Element)
	if expr, ok := el.Children[0].(*ast.Expr); !ok || expr.Src != "items()" {
		t.Errorf("child = %+v", el.Children[0])
	}
}

func TestParseMultipleTopLevel(t *testing.T) {
	nodes := parseSrc(t, `<div>"a"</div><p>"b"</p>`)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
}

func TestParseTernary(t *testing.T) {
	nodes := parseSrc(t, `<div>{logged_in ? <span>"yes"</span> : <span>"no"</span>}</div>`)
	el := nodes[0].(*ast.Element)
	tern, ok := el.Children[0].(*ast.Ternary)
	if !ok {
		t.Fatalf("child is %T, want *ast.Ternary", el.Children[0])
	}
	if tern.Cond != "logged_in" {
		t.Errorf("cond = %q", tern.Cond)
	}
	if len(tern.IfTrue) != 1 || len(tern.IfFalse) != 1 {
		t.Errorf("branches = %+v / %+v", tern.IfTrue, tern.IfFalse)
	}
}

func TestParseTernaryTextBranches(t *testing.T) {
	nodes := parseSrc(t, `<div>{ok ? "on" : "off"}</div>`)
	el := nodes[0].(*ast.Element)
	tern := el.Children[0].(*ast.Ternary)
	if text, ok := tern.IfTrue[0].(*ast.Text); !ok || text.Value != "on" {
		t.Errorf("if_true = %+v", tern.IfTrue)
	}
}

func TestParseCondAnd(t *testing.T) {
	nodes := parseSrc(t, `<div>{show_help && <p>"help text"</p>}</div>`)
	el := nodes[0].(*ast.Element)
	cond, ok := el.Children[0].(*ast.CondAnd)
	if !ok {
		t.Fatalf("child is %T, want *ast.CondAnd", el.Children[0])
	}
	if cond.Cond != "show_help" {
		t.Errorf("cond = %q", cond.Cond)
	}
}

func TestParseNestedConditional(t *testing.T) {
	nodes := parseSrc(t, `<div>{a ? <div>{b && <p>"deep"</p>}</div> : <span>"no"</span>}</div>`)
	el := nodes[0].(*ast.Element)
	tern := el.Children[0].(*ast.Ternary)
	inner := tern.IfTrue[0].(*ast.Element)
	if _, ok := inner.Children[0].(*ast.CondAnd); !ok {
		t.Errorf("nested child = %+v", inner.Children[0])
	}
}

func TestParseNonMarkupConditionalStaysExpr(t *testing.T) {
	nodes := parseSrc(t, `<div>{a && b}</div>`)
	el := nodes[0].(*ast.Element)
	if expr, ok := el.Children[0].(*ast.Expr); !ok || expr.Src != "a && b" {
		t.Errorf("child = %+v, want plain expr", el.Children[0])
	}
}

func TestParseQuestionInsideParensStaysExpr(t *testing.T) {
	nodes := parseSrc(t, `<div>{lookup(a ? 1 : 2)}</div>`)
	el := nodes[0].(*ast.Element)
	if _, ok := el.Children[0].(*ast.Expr); !ok {
		t.Errorf("child = %+v, want plain expr", el.Children[0])
	}
}

func TestParseInvalidTernaryMissingColon(t *testing.T) {
	err := parseErr(t, `<div>{ok ? <p>"yes"</p>}</div>`)
	if !strings.Contains(err.Error(), "ternary") {
		t.Errorf("error = %v, want mention of ternary", err)
	}
}

func TestParseInvalidConditionalMissingBody(t *testing.T) {
	err := parseErr(t, `<div>{flag &&}</div>`)
	if !strings.Contains(err.Error(), "conditional") {
		t.Errorf("error = %v, want mention of conditional", err)
	}
}

func TestParseMismatchedCloseTag(t *testing.T) {
	err := parseErr(t, `<div>"x"</span>`)
	if !strings.Contains(err.Error(), "mismatched") {
		t.Errorf("error = %v", err)
	}
}

func TestParseStrayCloseTag(t *testing.T) {
	parseErr(t, `<div/></div>`)
}
