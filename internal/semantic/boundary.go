// Package semantic validates a scanned file before any code is generated:
// server/client API boundaries, top-level misuse, and component resolution.
package semantic

import (
	"fmt"
	"sort"
	"strings"

	"rsxc/internal/diag"
	"rsxc/internal/scanner"
)

// Violation is one boundary error found during validation.
type Violation struct {
	Line    int
	Col     int
	Pattern string
	FnType  string
	FnName  string
	Message string
	Help    string
}

type pattern struct {
	needle  string
	display string
}

// Client/browser-only APIs, forbidden in `-> Html` and `-> Fragment`.
var clientOnly = []pattern{
	{"dom::query(", "dom::query"},
	{"dom::log(", "dom::log"},
	{".set_text(", ".set_text"},
	{".get_value(", ".get_value"},
	{".set_attr(", ".set_attr"},
	{".add_class(", ".add_class"},
	{".remove_class(", ".remove_class"},
	{"use_state(", "use_state"},
	{"state::get_i32(", "state::get_i32"},
	{"state::set_i32(", "state::set_i32"},
	{"state::get_f32(", "state::get_f32"},
	{"state::set_f32(", "state::set_f32"},
	{"state::get_str(", "state::get_str"},
	{"state::set_str(", "state::set_str"},
	{"state::fmt_i32(", "state::fmt_i32"},
	{"state::fmt_f32(", "state::fmt_f32"},
	{"dom::create(", "dom::create"},
	{"dom::append(", "dom::append"},
	{"dom::remove(", "dom::remove"},
	{"dom::set_html(", "dom::set_html"},
	{".toggle_class(", ".toggle_class"},
	{".get_attr(", ".get_attr"},
	{".remove_attr(", ".remove_attr"},
	{"dom::query_all_count(", "dom::query_all_count"},
	{"dom::query_all_get(", "dom::query_all_get"},
	{"use_ref(", "use_ref"},
	{"use_ref_el(", "use_ref_el"},
	{"ref::get_i32(", "ref::get_i32"},
	{"ref::set_i32(", "ref::set_i32"},
	{"ref::get_f32(", "ref::get_f32"},
	{"ref::set_f32(", "ref::set_f32"},
	{"use_effect(", "use_effect"},
	{"use_memo_i32(", "use_memo_i32"},
	{"use_memo_f32(", "use_memo_f32"},
}

// Server-only APIs, forbidden in `-> Client` and `-> Component`.
var serverOnly = []pattern{
	{"Response::", "Response::"},
	{"HtmlDocument::", "HtmlDocument::"},
	{"Metadata::new", "Metadata::new"},
	{"StatusCode::", "StatusCode::"},
	{"Headers::", "Headers::"},
}

// Component-only APIs, forbidden in `-> Client`.
var componentOnly = []pattern{
	{"use_state(", "use_state"},
	{"use_ref(", "use_ref"},
	{"use_ref_el(", "use_ref_el"},
	{"use_effect(", "use_effect"},
	{"use_memo_i32(", "use_memo_i32"},
	{"use_memo_f32(", "use_memo_f32"},
}

type violationKind int

const (
	clientInServer violationKind = iota
	serverInClient
	componentOnlyInClient
	topLevelForbidden
)

// ValidateBoundaries checks that no function uses APIs from the wrong side
// of the server/client boundary. Runs after scanning, before parsing.
func ValidateBoundaries(functions []scanner.Function, source string) []Violation {
	var violations []Violation
	for _, fn := range functions {
		body := source[fn.BodySpan.Start:fn.BodySpan.End]
		switch fn.Kind {
		case scanner.Html, scanner.Fragment:
			scanBody(body, clientOnly, fn.BodySpan.Start, source, fn.Kind.String(), fn.Name, clientInServer, &violations)
		case scanner.Client:
			scanBody(body, serverOnly, fn.BodySpan.Start, source, "Client", fn.Name, serverInClient, &violations)
			scanBody(body, componentOnly, fn.BodySpan.Start, source, "Client", fn.Name, componentOnlyInClient, &violations)
		case scanner.Component:
			scanBody(body, serverOnly, fn.BodySpan.Start, source, "Component", fn.Name, serverInClient, &violations)
		}
	}
	return violations
}

// ValidateTopLevel checks that no code outside any function body uses the
// client/state runtime APIs.
func ValidateTopLevel(functions []scanner.Function, source string) []Violation {
	var violations []Violation

	type span struct{ start, end int }
	var spans []span
	for _, fn := range functions {
		fnStart := findFnKeywordStart(source, fn.ReturnTypeSpan.Start)
		fnEnd := fn.BodySpan.End + 1
		if fnEnd > len(source) {
			fnEnd = len(source)
		}
		spans = append(spans, span{fnStart, fnEnd})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var gaps []span
	cursor := 0
	for _, s := range spans {
		if cursor < s.start {
			gaps = append(gaps, span{cursor, s.start})
		}
		if s.end > cursor {
			cursor = s.end
		}
	}
	if cursor < len(source) {
		gaps = append(gaps, span{cursor, len(source)})
	}

	for _, g := range gaps {
		scanBody(source[g.start:g.end], clientOnly, g.start, source, "top-level", "", topLevelForbidden, &violations)
	}
	return violations
}

// CombineViolations renders all violations into a single terminal error,
// positioned at the first one.
func CombineViolations(file string, violations []Violation) *diag.Error {
	if len(violations) == 0 {
		return nil
	}
	var parts []string
	for _, v := range violations {
		e := &diag.Error{File: file, Line: v.Line, Col: v.Col, Message: v.Message, Help: v.Help}
		parts = append(parts, e.Render())
	}
	first := violations[0]
	return &diag.Error{
		File:    file,
		Line:    first.Line,
		Col:     first.Col,
		Message: strings.Join(parts, "\n\n"),
	}
}

// findFnKeywordStart walks backward from the return marker to where the
// `fn ` or `pub fn ` declaration starts.
func findFnKeywordStart(source string, pos int) int {
	for i := pos; i > 0; i-- {
		if i >= 3 && source[i-3:i] == "fn " {
			fnStart := i - 3
			if fnStart >= 4 && source[fnStart-4:fnStart] == "pub " {
				return fnStart - 4
			}
			return fnStart
		}
	}
	return 0
}

func scanBody(body string, patterns []pattern, bodyOffset int, source, fnType, fnName string, kind violationKind, violations *[]Violation) {
	n := len(body)
	i := 0
	for i < n {
		if body[i] == '"' {
			i = skipString(body, i)
			continue
		}
		if i+1 < n && body[i] == '/' && body[i+1] == '/' {
			i = skipLineComment(body, i)
			continue
		}
		if i+1 < n && body[i] == '/' && body[i+1] == '*' {
			i = skipBlockComment(body, i)
			continue
		}

		matched := false
		for _, p := range patterns {
			if i+len(p.needle) <= n && body[i:i+len(p.needle)] == p.needle {
				line, col := diag.LineCol(source, bodyOffset+i)
				msg, help := buildMessage(p.display, fnType, fnName, kind)
				*violations = append(*violations, Violation{
					Line:    line,
					Col:     col,
					Pattern: p.display,
					FnType:  fnType,
					FnName:  fnName,
					Message: msg,
					Help:    help,
				})
				i += len(p.needle)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		i++
	}
}

func buildMessage(display, fnType, fnName string, kind violationKind) (string, string) {
	namePart := ""
	if fnName != "" {
		namePart = fmt.Sprintf(" `%s`", fnName)
	}
	switch kind {
	case clientInServer:
		msg := fmt.Sprintf("client-only API `%s` used in server function%s (-> %s)", display, namePart, fnType)
		help := fmt.Sprintf("`%s` only works in `-> Client` or `-> Component` functions. Move this code to a Client function, or use server-side alternatives.", display)
		return msg, help
	case serverInClient:
		msg := fmt.Sprintf("server-only API `%s` used in client function%s (-> %s)", display, namePart, fnType)
		help := fmt.Sprintf("`%s` only works in server functions (-> Html, -> Fragment). Client functions run in the browser and cannot use server APIs.", display)
		return msg, help
	case componentOnlyInClient:
		msg := fmt.Sprintf("`%s` can only be used in `-> Component` functions, not `-> Client`", display)
		help := fmt.Sprintf("`%s` initializes component slots and requires a Component function. Change `-> Client` to `-> Component`, or use the `state::` accessors from a Client function.", display)
		return msg, help
	default:
		msg := fmt.Sprintf("`%s` cannot be used at the top level of a source file", display)
		help := fmt.Sprintf("`%s` is a runtime API that must be called inside a function body. Move it inside a `-> Component` or `-> Client` function.", display)
		return msg, help
	}
}

func skipString(s string, start int) int {
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

func skipLineComment(s string, start int) int {
	i := start + 2
	for i < len(s) && s[i] != '\n' {
		i++
	}
	if i < len(s) {
		return i + 1
	}
	return i
}

func skipBlockComment(s string, start int) int {
	i := start + 2
	for i+1 < len(s) {
		if s[i] == '*' && s[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return len(s)
}
