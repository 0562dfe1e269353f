// Package scanner finds markup-bearing functions in host-language source.
//
// It works on raw bytes: a literal `->` followed by one of the four return
// markers flags a function, and brace matching (string- and comment-aware)
// recovers the body span. No host-language grammar is involved.
package scanner

// ReturnKind classifies a matched function by its return marker.
type ReturnKind int

const (
	Html ReturnKind = iota
	Fragment
	Client
	Component
)

func (k ReturnKind) String() string {
	switch k {
	case Html:
		return "Html"
	case Fragment:
		return "Fragment"
	case Client:
		return "Client"
	case Component:
		return "Component"
	default:
		return "unknown"
	}
}

// Span is a half-open byte range [Start, End) into the scanned source.
type Span struct {
	Start int
	End   int
}

// Param is one `name: type` pair from a function signature.
type Param struct {
	Name string
	Type string
}

// Function is one matched function.
type Function struct {
	Kind ReturnKind
	// ReturnTypeSpan covers exactly the marker identifier.
	ReturnTypeSpan Span
	// BodySpan covers the body content, excluding the outer braces.
	BodySpan Span
	// Name is empty when the backward signature walk fails.
	Name string
	// Params is populated for Fragment/Client/Component functions.
	Params []Param
}

// BodySplit divides a Component body into its logic prelude and the markup
// inside a top-level `return ( ... )`.
type BodySplit struct {
	Logic Span
	Rsx   Span
}

// Scan returns all marker-returning functions in source order. Spans are
// non-overlapping: scanning resumes after each matched body.
func Scan(source string) []Function {
	var results []Function
	n := len(source)
	i := 0
	for i < n {
		if source[i] == '"' {
			i = skipString(source, i)
			continue
		}
		if i+1 < n && source[i] == '/' && source[i+1] == '/' {
			i = skipLineComment(source, i)
			continue
		}
		if i+1 < n && source[i] == '/' && source[i+1] == '*' {
			i = skipBlockComment(source, i)
			continue
		}

		if i+1 < n && source[i] == '-' && source[i+1] == '>' {
			arrowStart := i
			wsEnd := skipWhitespace(source, i+2)
			if kind, retEnd, ok := matchReturnType(source, wsEnd); ok {
				braceStart := skipWhitespace(source, retEnd)
				if braceStart < n && source[braceStart] == '{' {
					if braceEnd, ok := findMatchingBrace(source, braceStart); ok {
						var name string
						var params []Param
						if kind == Html {
							name = extractName(source, arrowStart)
						} else {
							name, params = extractSignature(source, arrowStart)
						}
						results = append(results, Function{
							Kind:           kind,
							ReturnTypeSpan: Span{wsEnd, retEnd},
							BodySpan:       Span{braceStart + 1, braceEnd},
							Name:           name,
							Params:         params,
						})
						i = braceEnd + 1
						continue
					}
				}
			}
		}
		i++
	}
	return results
}

// SplitComponentBody looks for a bare `return` keyword at brace depth 0
// followed by a parenthesized markup block. Absent split means the body is
// imperative-only.
func SplitComponentBody(source string, body Span) (BodySplit, bool) {
	text := source[body.Start:body.End]
	n := len(text)
	i := 0
	depth := 0
	for i < n {
		if text[i] == '"' {
			i = skipString(text, i)
			continue
		}
		if i+1 < n && text[i] == '/' && text[i+1] == '/' {
			i = skipLineComment(text, i)
			continue
		}
		if i+1 < n && text[i] == '/' && text[i+1] == '*' {
			i = skipBlockComment(text, i)
			continue
		}
		if text[i] == '{' {
			depth++
		}
		if text[i] == '}' {
			depth--
		}

		if depth == 0 && i+6 <= n && text[i:i+6] == "return" {
			// Keyword boundary on both sides.
			if i > 0 && isIdentChar(text[i-1]) {
				i++
				continue
			}
			if i+6 < n && isIdentChar(text[i+6]) {
				i++
				continue
			}
			j := skipWhitespace(text, i+6)
			if j < n && text[j] == '(' {
				if close, ok := findMatchingParen(text, j); ok {
					return BodySplit{
						Logic: Span{body.Start, body.Start + i},
						Rsx:   Span{body.Start + j + 1, body.Start + close},
					}, true
				}
			}
		}
		i++
	}
	return BodySplit{}, false
}

func matchReturnType(source string, pos int) (ReturnKind, int, bool) {
	markers := []struct {
		text string
		kind ReturnKind
	}{
		{"Html", Html},
		{"Fragment", Fragment},
		{"Client", Client},
		{"Component", Component},
	}
	for _, m := range markers {
		end := pos + len(m.text)
		if end <= len(source) && source[pos:end] == m.text {
			// Reject strict superstrings like HtmlDocument.
			if end >= len(source) || !isIdentChar(source[end]) {
				return m.kind, end, true
			}
		}
	}
	return 0, 0, false
}

// findMatchingBrace returns the offset of the `}` matching the `{` at start.
func findMatchingBrace(source string, start int) (int, bool) {
	depth := 1
	i := start + 1
	n := len(source)
	for i < n {
		switch {
		case source[i] == '"':
			i = skipString(source, i)
			continue
		case i+1 < n && source[i] == '/' && source[i+1] == '/':
			i = skipLineComment(source, i)
			continue
		case i+1 < n && source[i] == '/' && source[i+1] == '*':
			i = skipBlockComment(source, i)
			continue
		case source[i] == '{':
			depth++
		case source[i] == '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

func findMatchingParen(source string, start int) (int, bool) {
	depth := 1
	i := start + 1
	n := len(source)
	for i < n {
		switch {
		case source[i] == '"':
			i = skipString(source, i)
			continue
		case i+1 < n && source[i] == '/' && source[i+1] == '/':
			i = skipLineComment(source, i)
			continue
		case i+1 < n && source[i] == '/' && source[i+1] == '*':
			i = skipBlockComment(source, i)
			continue
		case source[i] == '(':
			depth++
		case source[i] == ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// extractSignature walks backward from the arrow through the parameter
// parens to recover the function name and parameter list.
func extractSignature(source string, arrowPos int) (string, []Param) {
	pos := arrowPos
	for pos > 0 && isSpace(source[pos-1]) {
		pos--
	}
	if pos == 0 || source[pos-1] != ')' {
		return "", nil
	}
	closeParen := pos - 1
	depth := 1
	openParen := closeParen
	for openParen > 0 {
		openParen--
		switch source[openParen] {
		case ')':
			depth++
		case '(':
			depth--
		}
		if depth == 0 {
			break
		}
	}
	if depth != 0 {
		return "", nil
	}
	params := parseParams(source[openParen+1 : closeParen])
	name := identBefore(source, openParen)
	return name, params
}

// extractName recovers only the function name (Html functions keep no params).
func extractName(source string, arrowPos int) string {
	name, _ := extractSignature(source, arrowPos)
	return name
}

func identBefore(source string, pos int) string {
	end := pos
	for end > 0 && (source[end-1] == ' ' || source[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && isIdentChar(source[start-1]) {
		start--
	}
	return source[start:end]
}

// parseParams splits `target: &str, count: i32` on top-level commas, then
// each entry on its first colon.
func parseParams(s string) []Param {
	var result []Param
	depth := 0
	start := 0
	flush := func(part string) {
		part = trim(part)
		if part == "" {
			return
		}
		for k := 0; k < len(part); k++ {
			if part[k] == ':' {
				name := trim(part[:k])
				ty := trim(part[k+1:])
				if name != "" && ty != "" {
					result = append(result, Param{Name: name, Type: ty})
				}
				return
			}
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case ',':
			if depth == 0 {
				flush(s[start:i])
				start = i + 1
			}
		}
	}
	flush(s[start:])
	return result
}

func trim(s string) string {
	start := 0
	for start < len(s) && isSpace(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func skipWhitespace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
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
