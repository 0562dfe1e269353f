// Package compiler turns .rsx sources (HTML-in-Rust) into their output
// artifacts: a server-side Rust source, and for files with client code a
// freestanding wasm module plus its bridging script.
package compiler

import (
	"path/filepath"
	"strings"

	"rsxc/internal/ast"
	"rsxc/internal/diag"
	"rsxc/internal/lexer"
	"rsxc/internal/parser"
	"rsxc/internal/scanner"
	"rsxc/internal/semantic"
)

// ClientOutput bundles the browser-side artifacts of one file.
type ClientOutput struct {
	// WasmSource is the generated no_std Rust source for the wasm target.
	WasmSource string
	// GlueScript is the JavaScript module that loads and hosts the binary.
	GlueScript string
}

// SourceOutput is the result of compiling one source string.
type SourceOutput struct {
	ServerSource string
	// Client is nil when the file has no Client or Component functions.
	Client   *ClientOutput
	Warnings []diag.Warning
}

// CompileSource compiles a source string and returns only the server output.
func CompileSource(source, file string) (string, error) {
	out, err := CompileSourceFull(source, file)
	if err != nil {
		return "", err
	}
	return out.ServerSource, nil
}

// CompileSourceFull runs the whole pipeline on one source string: scan,
// validate, parse markup, resolve components, splice the server output, and
// generate client artifacts when the file has Client or Component functions.
func CompileSourceFull(source, file string) (*SourceOutput, error) {
	functions := scanner.Scan(source)

	// Boundary and top-level misuse checks run before any parsing.
	violations := semantic.ValidateBoundaries(functions, source)
	violations = append(violations, semantic.ValidateTopLevel(functions, source)...)
	if err := semantic.CombineViolations(file, violations); err != nil {
		return nil, err
	}

	if len(functions) == 0 {
		return &SourceOutput{ServerSource: source}, nil
	}

	var clientFns, componentFns []scanner.Function
	for _, f := range functions {
		switch f.Kind {
		case scanner.Client:
			clientFns = append(clientFns, f)
		case scanner.Component:
			componentFns = append(componentFns, f)
		}
	}

	// First pass: parse every Html/Fragment body.
	parsedBodies := make([][]ast.Node, len(functions))
	for i, f := range functions {
		if f.Kind == scanner.Client || f.Kind == scanner.Component {
			continue
		}
		body := strings.TrimSpace(source[f.BodySpan.Start:f.BodySpan.End])
		tokens, err := lexer.Tokenize(body, file)
		if err != nil {
			return nil, err
		}
		nodes, err := parser.Parse(tokens, file)
		if err != nil {
			return nil, err
		}
		parsedBodies[i] = nodes
	}

	componentMap := semantic.CollectFragmentComponents(source, file, functions)

	// Parse the returned markup of each Component function. Imperative-only
	// components keep a nil entry.
	componentMarkup := make([][]ast.Node, len(componentFns))
	var reactiveNames []string
	for i, f := range componentFns {
		split, ok := scanner.SplitComponentBody(source, f.BodySpan)
		if !ok {
			continue
		}
		markup := strings.TrimSpace(source[split.Rsx.Start:split.Rsx.End])
		tokens, err := lexer.Tokenize(markup, file)
		if err != nil {
			return nil, err
		}
		nodes, err := parser.Parse(tokens, file)
		if err != nil {
			return nil, err
		}
		componentMarkup[i] = nodes
		if f.Name != "" {
			reactiveNames = append(reactiveNames, f.Name)
		}
	}

	if err := semantic.ValidateComponentResolution(source, file, functions, parsedBodies, componentMap, reactiveNames); err != nil {
		return nil, err
	}

	for i, f := range functions {
		if (f.Kind == scanner.Html || f.Kind == scanner.Fragment) && parsedBodies[i] != nil {
			parsedBodies[i] = ResolveComponents(parsedBodies[i], componentMap, reactiveNames)
		}
	}

	hasClientCode := len(clientFns) > 0 || len(componentFns) > 0
	stem := fileStem(file)
	glueURL := ""
	if hasClientCode {
		glueURL = "/wasm/" + stem + "_glue.js"
	}

	// Second pass: splice compiled bodies into the surrounding source.
	// Client and Component functions are cut out entirely.
	var out strings.Builder
	out.Grow(len(source) * 2)
	lastPos := 0

	for i, f := range functions {
		if f.Kind == scanner.Client || f.Kind == scanner.Component {
			fnStart := findFnStart(source, f.ReturnTypeSpan.Start)
			out.WriteString(source[lastPos:fnStart])
			lastPos = f.BodySpan.End + 1
			if lastPos < len(source) && source[lastPos] == '\n' {
				lastPos++
			}
			continue
		}

		out.WriteString(source[lastPos:f.ReturnTypeSpan.Start])
		switch f.Kind {
		case scanner.Html:
			out.WriteString("HtmlDocument")
		case scanner.Fragment:
			out.WriteString("Vec<HtmlNode>")
		}
		out.WriteString(source[f.ReturnTypeSpan.End:f.BodySpan.Start])

		var compiled string
		if f.Kind == scanner.Html {
			compiled = GenerateHtmlFn(parsedBodies[i], glueURL)
		} else {
			compiled = GenerateFragmentFn(parsedBodies[i])
		}
		out.WriteString("\n    ")
		out.WriteString(compiled)

		lastPos = f.BodySpan.End
	}
	out.WriteString(source[lastPos:])

	result := &SourceOutput{ServerSource: out.String()}

	if hasClientCode {
		wasmURL := "/wasm/" + stem + "_client.wasm"
		wasmSrc, warnMsgs := GenerateClientModule(clientFns, componentFns, source, componentMarkup)
		glue := GenerateGlueScript(clientFns, componentFns, source, wasmURL, componentMarkup)
		for _, m := range warnMsgs {
			result.Warnings = append(result.Warnings, diag.Warning{File: file, Line: 1, Col: 1, Message: m})
		}
		result.Client = &ClientOutput{WasmSource: wasmSrc, GlueScript: glue}
	}

	return result, nil
}

// fileStem returns the output name stem for a source path, used in the
// public /wasm/ URLs.
func fileStem(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "module"
	}
	return base
}

// findFnStart walks backward from the return marker to the start of the
// `fn` or `pub fn` declaration so the whole function can be cut out.
func findFnStart(source string, pos int) int {
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
