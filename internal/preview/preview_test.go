package preview

import (
	"strings"
	"testing"

	"rsxc/internal/ast"
	"rsxc/internal/lexer"
	"rsxc/internal/parser"
)

func parseMarkup(t *testing.T, src string) []ast.Node {
	t.Helper()
	tokens, err := lexer.Tokenize(src, "preview_test.rsx")
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := parser.Parse(tokens, "preview_test.rsx")
	if err != nil {
		t.Fatal(err)
	}
	return nodes
}

func renderString(t *testing.T, nodes []ast.Node) string {
	t.Helper()
	var b strings.Builder
	if err := WriteHTML(&b, nodes); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestRenderElement(t *testing.T) {
	nodes := parseMarkup(t, `<div class="box"><span>"hi"</span></div>`)
	got := renderString(t, nodes)
	if !strings.Contains(got, `<div class="box">`) {
		t.Errorf("missing div: %s", got)
	}
	if !strings.Contains(got, "<span>hi</span>") {
		t.Errorf("missing span: %s", got)
	}
}

func TestRenderExprPlaceholder(t *testing.T) {
	nodes := parseMarkup(t, `<p>{user_name()}</p>`)
	got := renderString(t, nodes)
	if !strings.Contains(got, `class="rsx-expr"`) {
		t.Errorf("expression placeholder missing: %s", got)
	}
	if !strings.Contains(got, "{user_name()}") {
		t.Errorf("expression source not shown: %s", got)
	}
}

func TestRenderEventBinding(t *testing.T) {
	nodes := parseMarkup(t, `<button onclick={on_click}>"go"</button>`)
	got := renderString(t, nodes)
	if !strings.Contains(got, `data-rsx-onclick="on_click"`) {
		t.Errorf("event binding missing: %s", got)
	}
}

func TestRenderConditionalsOptimistic(t *testing.T) {
	nodes := parseMarkup(t, `<div>{logged_in && <span>"welcome"</span>}</div>`)
	got := renderString(t, nodes)
	if !strings.Contains(got, "<span>welcome</span>") {
		t.Errorf("conditional body not previewed: %s", got)
	}
}

func TestRenderTernaryTrueBranch(t *testing.T) {
	nodes := parseMarkup(t, `<div>{dark ? <b>"on"</b> : <i>"off"</i>}</div>`)
	got := renderString(t, nodes)
	if !strings.Contains(got, "<b>on</b>") {
		t.Errorf("true branch missing: %s", got)
	}
	if strings.Contains(got, "<i>off</i>") {
		t.Errorf("false branch rendered: %s", got)
	}
}

func TestRenderStylesheet(t *testing.T) {
	nodes := parseMarkup(t, `<Stylesheet href="/styles/app.css" />`)
	got := renderString(t, nodes)
	if !strings.Contains(got, `rel="stylesheet"`) || !strings.Contains(got, `href="/styles/app.css"`) {
		t.Errorf("stylesheet link wrong: %s", got)
	}
}

func TestRenderUnknownTagFallsBack(t *testing.T) {
	nodes := parseMarkup(t, `<article>"text"</article>`)
	got := renderString(t, nodes)
	if !strings.Contains(got, "<article>text</article>") {
		t.Errorf("generic element missing: %s", got)
	}
}

func TestPageWrapsDocument(t *testing.T) {
	nodes := parseMarkup(t, `<div>"hello"</div>`)
	var b strings.Builder
	if err := Page("demo", nodes).Render(&b); err != nil {
		t.Fatal(err)
	}
	got := b.String()
	for _, want := range []string{"<!doctype html>", "<title>demo</title>", "<body>", "<div>hello</div>"} {
		if !strings.Contains(got, want) {
			t.Errorf("document missing %q: %s", want, got)
		}
	}
}
