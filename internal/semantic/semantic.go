package semantic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rsxc/internal/ast"
	"rsxc/internal/diag"
	"rsxc/internal/scanner"
)

// ComponentInfo describes one Fragment component available to a file:
// its snake_case name and the parameters of the backing function.
type ComponentInfo struct {
	Name   string
	Params []scanner.Param
}

type useStmt struct {
	segments []string
	symbols  []string
}

// CollectFragmentComponents gathers every Fragment component visible in the
// file: local Fragment functions plus Fragment functions pulled in through
// `use` statements. The result feeds both validation and component resolution.
func CollectFragmentComponents(source, file string, functions []scanner.Function) []ComponentInfo {
	var components []ComponentInfo

	for _, f := range functions {
		if f.Kind == scanner.Fragment && f.Name != "" {
			components = append(components, ComponentInfo{Name: f.Name, Params: f.Params})
		}
	}

	for _, stmt := range parseUseStatements(source) {
		moduleFile := resolveModuleFile(file, stmt.segments)
		if moduleFile == "" {
			continue
		}
		moduleSrc, err := os.ReadFile(moduleFile)
		if err != nil {
			continue
		}
		for _, mf := range scanner.Scan(string(moduleSrc)) {
			if mf.Kind != scanner.Fragment || mf.Name == "" {
				continue
			}
			if !containsString(stmt.symbols, mf.Name) {
				continue
			}
			exists := false
			for _, c := range components {
				if c.Name == mf.Name {
					exists = true
					break
				}
			}
			if !exists {
				components = append(components, ComponentInfo{Name: mf.Name, Params: mf.Params})
			}
		}
	}
	return components
}

// ValidateComponentResolution enforces that every component tag resolves to a
// Fragment function with matching props, and that event bindings name real
// Client handlers. componentNames holds snake_case names of reactive
// Component functions, which resolve to client mount points instead.
func ValidateComponentResolution(
	source, file string,
	functions []scanner.Function,
	parsedBodies [][]ast.Node,
	componentMap []ComponentInfo,
	componentNames []string,
) error {
	localSymbols := collectLocalSymbols(functions)
	importedSymbols := collectImportedSymbols(source, file)
	clientSymbols := collectClientSymbols(functions)

	for idx, fn := range functions {
		if fn.Kind != scanner.Html && fn.Kind != scanner.Fragment {
			continue
		}
		if idx >= len(parsedBodies) || parsedBodies[idx] == nil {
			continue
		}
		nodes := parsedBodies[idx]

		if err := validateEventBindings(source, file, fn.BodySpan, nodes, clientSymbols); err != nil {
			return err
		}

		var tags []string
		collectComponentTags(nodes, &tags)

		for _, tag := range tags {
			snake := PascalToSnake(tag)

			inMap := false
			for _, c := range componentMap {
				if c.Name == snake {
					inMap = true
					break
				}
			}
			if inMap || containsString(componentNames, snake) {
				continue
			}

			kind, resolved := findSymbolKind(localSymbols, snake)
			if !resolved {
				kind, resolved = findSymbolKind(importedSymbols, snake)
			}
			offset := findComponentTagOffset(source, fn.BodySpan, tag)
			line, col := diag.LineCol(source, offset)
			if resolved {
				if kind != scanner.Fragment {
					return diag.Errorf(file, line, col,
						"component `%s` must return Fragment (found %s)", tag, kind)
				}
				continue
			}
			return diag.Errorf(file, line, col,
				"unresolved component `%s`; expected a function returning Fragment", tag)
		}

		if err := validateComponentProps(source, file, fn.BodySpan, nodes, componentMap); err != nil {
			return err
		}
	}
	return nil
}

func validateComponentProps(source, file string, body scanner.Span, nodes []ast.Node, componentMap []ComponentInfo) error {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Element:
			if IsComponentTag(n.Tag) && !IsSpecialTag(n.Tag) {
				snake := PascalToSnake(n.Tag)
				var params []scanner.Param
				found := false
				for _, c := range componentMap {
					if c.Name == snake {
						params = c.Params
						found = true
						break
					}
				}
				if found {
					for _, attr := range n.Attrs {
						if !paramNamed(params, attr.Name) {
							line, col := diag.LineCol(source, findAttrOffset(source, body, attr.Name))
							return diag.Errorf(file, line, col,
								"unknown prop `%s` on component `%s`", attr.Name, n.Tag)
						}
					}
					for _, p := range params {
						if p.Name == "children" {
							continue
						}
						hasAttr := false
						for _, a := range n.Attrs {
							if a.Name == p.Name {
								hasAttr = true
								break
							}
						}
						if !hasAttr {
							line, col := diag.LineCol(source, findComponentTagOffset(source, body, n.Tag))
							return diag.Errorf(file, line, col,
								"missing required prop `%s` on component `%s`", p.Name, n.Tag)
						}
					}
					if len(n.Children) > 0 && !paramNamed(params, "children") {
						line, col := diag.LineCol(source, findComponentTagOffset(source, body, n.Tag))
						return diag.Errorf(file, line, col,
							"component `%s` does not accept children; add a `children: Vec<HtmlNode>` parameter", n.Tag)
					}
				}
			}
			if err := validateComponentProps(source, file, body, n.Children, componentMap); err != nil {
				return err
			}
		case *ast.CondAnd:
			if err := validateComponentProps(source, file, body, n.Body, componentMap); err != nil {
				return err
			}
		case *ast.Ternary:
			if err := validateComponentProps(source, file, body, n.IfTrue, componentMap); err != nil {
				return err
			}
			if err := validateComponentProps(source, file, body, n.IfFalse, componentMap); err != nil {
				return err
			}
		}
	}
	return nil
}

type clientSymbol struct {
	name  string
	arity int
}

func collectClientSymbols(functions []scanner.Function) []clientSymbol {
	var symbols []clientSymbol
	for _, f := range functions {
		if f.Kind == scanner.Client && f.Name != "" {
			symbols = append(symbols, clientSymbol{f.Name, len(f.Params)})
		}
	}
	return symbols
}

func validateEventBindings(source, file string, body scanner.Span, nodes []ast.Node, clientSymbols []clientSymbol) error {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Element:
			isComponent := IsComponentTag(n.Tag) && !IsSpecialTag(n.Tag)
			for _, attr := range n.Attrs {
				isEvent := strings.HasPrefix(attr.Name, "on") && len(attr.Name) > 2
				switch {
				case attr.Kind == ast.AttrExpr && !isEvent && !isComponent:
					return attrError(source, file, body, attr.Name,
						"only event attributes support expression values; use a quoted string for non-event attrs")
				case attr.Kind == ast.AttrLiteral && isEvent:
					if strings.Contains(attr.Value, "__rsx.") || strings.Contains(attr.Value, "window.__rsx") {
						return attrError(source, file, body, attr.Name,
							"legacy __rsx inline handlers are removed; use event bindings like onclick={on_click}")
					}
					return attrError(source, file, body, attr.Name,
						"event attributes must use expression syntax like onclick={on_click}")
				case attr.Kind == ast.AttrExpr && isEvent && !isComponent:
					if !isIdentifier(attr.Value) {
						return attrError(source, file, body, attr.Name,
							"event handler expression must be a top-level Client function identifier")
					}
					found := false
					arity := 0
					for _, s := range clientSymbols {
						if s.name == strings.TrimSpace(attr.Value) {
							found = true
							arity = s.arity
							break
						}
					}
					if !found {
						return attrError(source, file, body, attr.Name,
							fmt.Sprintf("event handler `%s` not found as a top-level Client function", attr.Value))
					}
					if arity > 1 {
						return attrError(source, file, body, attr.Name,
							fmt.Sprintf("event handler `%s` has %d params; only 0 or 1 are supported", attr.Value, arity))
					}
				}
			}
			if err := validateEventBindings(source, file, body, n.Children, clientSymbols); err != nil {
				return err
			}
		case *ast.CondAnd:
			if err := validateEventBindings(source, file, body, n.Body, clientSymbols); err != nil {
				return err
			}
		case *ast.Ternary:
			if err := validateEventBindings(source, file, body, n.IfTrue, clientSymbols); err != nil {
				return err
			}
			if err := validateEventBindings(source, file, body, n.IfFalse, clientSymbols); err != nil {
				return err
			}
		}
	}
	return nil
}

func attrError(source, file string, body scanner.Span, attrName, message string) error {
	line, col := diag.LineCol(source, findAttrOffset(source, body, attrName))
	return &diag.Error{File: file, Line: line, Col: col, Message: message}
}

func findAttrOffset(source string, body scanner.Span, attrName string) int {
	if body.End <= body.Start || body.End > len(source) {
		return 0
	}
	idx := strings.Index(source[body.Start:body.End], attrName+"=")
	if idx < 0 {
		return body.Start
	}
	return body.Start + idx
}

func findComponentTagOffset(source string, body scanner.Span, tag string) int {
	if body.End <= body.Start || body.End > len(source) {
		return 0
	}
	idx := strings.Index(source[body.Start:body.End], "<"+tag)
	if idx < 0 {
		return body.Start
	}
	return body.Start + idx
}

func isIdentifier(expr string) bool {
	s := strings.TrimSpace(expr)
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		if i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}

type localSymbol struct {
	name string
	kind scanner.ReturnKind
}

func collectLocalSymbols(functions []scanner.Function) []localSymbol {
	var symbols []localSymbol
	for _, f := range functions {
		if f.Name != "" {
			symbols = append(symbols, localSymbol{f.Name, f.Kind})
		}
	}
	return symbols
}

func findSymbolKind(symbols []localSymbol, name string) (scanner.ReturnKind, bool) {
	for _, s := range symbols {
		if s.name == name {
			return s.kind, true
		}
	}
	return 0, false
}

func collectComponentTags(nodes []ast.Node, out *[]string) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Element:
			if IsComponentTag(n.Tag) && !IsSpecialTag(n.Tag) {
				*out = append(*out, n.Tag)
			}
			collectComponentTags(n.Children, out)
		case *ast.CondAnd:
			collectComponentTags(n.Body, out)
		case *ast.Ternary:
			collectComponentTags(n.IfTrue, out)
			collectComponentTags(n.IfFalse, out)
		}
	}
}

// IsComponentTag reports whether a tag names a user component rather than a
// plain HTML element.
func IsComponentTag(tag string) bool {
	return tag != "" && tag[0] >= 'A' && tag[0] <= 'Z'
}

// IsSpecialTag reports whether a tag is one of the built-in document helpers
// that look like components but lower to document-builder calls.
func IsSpecialTag(tag string) bool {
	return tag == "Style" || tag == "Head" || tag == "Stylesheet"
}

// PascalToSnake converts a PascalCase component tag to the snake_case name of
// its backing function: TodoList -> todo_list.
func PascalToSnake(name string) string {
	var out strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out.WriteByte('_')
			}
			out.WriteByte(c + 32)
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}

func paramNamed(params []scanner.Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func parseUseStatements(source string) []useStmt {
	var result []useStmt
	for _, raw := range strings.Split(source, ";") {
		stmt := strings.TrimSpace(raw)
		if !strings.HasPrefix(stmt, "use ") {
			continue
		}
		path := strings.TrimSpace(stmt[4:])
		if path == "" {
			continue
		}
		if open := strings.Index(path, "{"); open >= 0 {
			close := strings.Index(path[open:], "}")
			if close < 0 {
				continue
			}
			close += open
			modulePart := strings.TrimSuffix(strings.TrimSpace(path[:open]), "::")
			var symbols []string
			for _, sym := range strings.Split(path[open+1:close], ",") {
				sym = strings.TrimSpace(sym)
				if sym == "" || sym == "*" || sym == "self" {
					continue
				}
				symbols = append(symbols, sym)
			}
			if len(symbols) == 0 {
				continue
			}
			segments := splitSegments(modulePart)
			if len(segments) > 0 {
				result = append(result, useStmt{segments, symbols})
			}
			continue
		}

		parts := splitSegments(path)
		if len(parts) < 2 {
			continue
		}
		symbol := parts[len(parts)-1]
		if symbol == "*" || symbol == "self" {
			continue
		}
		result = append(result, useStmt{parts[:len(parts)-1], []string{symbol}})
	}
	return result
}

func splitSegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "::") {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func collectImportedSymbols(source, file string) []localSymbol {
	var imported []localSymbol
	for _, stmt := range parseUseStatements(source) {
		moduleFile := resolveModuleFile(file, stmt.segments)
		if moduleFile == "" {
			continue
		}
		moduleSrc, err := os.ReadFile(moduleFile)
		if err != nil {
			continue
		}
		moduleSymbols := collectLocalSymbols(scanner.Scan(string(moduleSrc)))
		for _, sym := range stmt.symbols {
			if kind, ok := findSymbolKind(moduleSymbols, sym); ok {
				imported = append(imported, localSymbol{sym, kind})
			}
		}
	}
	return imported
}

// resolveModuleFile maps `use` path segments to a source file on disk,
// anchored at the nearest enclosing src/ directory.
func resolveModuleFile(sourceFile string, segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	root := findSrcRoot(sourceFile)
	start := 0
	switch segments[0] {
	case "crate":
		start = 1
	case "self":
		root = filepath.Dir(sourceFile)
		start = 1
	case "super":
		root = filepath.Dir(filepath.Dir(sourceFile))
		start = 1
	}
	if root == "" {
		return ""
	}

	current := root
	for _, seg := range segments[start:] {
		current = resolveSegment(current, seg)
		if current == "" {
			return ""
		}
	}

	if info, err := os.Stat(current); err == nil && !info.IsDir() {
		return current
	}
	for _, name := range []string{"mod.rsx", "mod.rs"} {
		candidate := filepath.Join(current, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func resolveSegment(parent, segment string) string {
	dir := parent
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		dir = filepath.Dir(parent)
	}

	for _, ext := range []string{".rsx", ".rs"} {
		direct := filepath.Join(dir, segment+ext)
		if _, err := os.Stat(direct); err == nil {
			return direct
		}
	}
	nested := filepath.Join(dir, segment)
	if info, err := os.Stat(nested); err == nil && info.IsDir() {
		for _, name := range []string{"mod.rsx", "mod.rs"} {
			candidate := filepath.Join(nested, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		return nested
	}
	return ""
}

func findSrcRoot(path string) string {
	current := filepath.Dir(path)
	for {
		if filepath.Base(current) == "src" {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}
