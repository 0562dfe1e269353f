package compiler

import (
	"strings"

	"rsxc/internal/ast"
	"rsxc/internal/scanner"
	"rsxc/internal/semantic"
)

// GenerateHtmlFn lowers the body of an `-> Html` function into an
// HtmlDocument builder chain. When glueURL is non-empty the chain ends with a
// `.script_module(...)` referencing the bridging script for this file.
func GenerateHtmlFn(nodes []ast.Node, glueURL string) string {
	var out strings.Builder
	out.WriteString("HtmlDocument::new()\n")

	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Element:
			switch {
			case n.Tag == "Style" && !n.SelfClosing:
				if len(n.Children) > 0 {
					if expr, ok := n.Children[0].(*ast.Expr); ok {
						out.WriteString("        .inline_style(")
						out.WriteString(expr.Src)
						out.WriteString(")\n")
					}
				}
			case n.Tag == "Head" && !n.SelfClosing:
				for _, child := range n.Children {
					out.WriteString("        .head_node(\n            ")
					writeNode(&out, child)
					out.WriteString("\n        )\n")
				}
			case n.Tag == "Stylesheet" && n.SelfClosing:
				if href, ok := findLiteralAttr(n.Attrs, "href"); ok {
					out.WriteString("        .stylesheet(\"")
					out.WriteString(href)
					out.WriteString("\")\n")
				}
			default:
				out.WriteString("        .body_node(\n            ")
				writeNode(&out, node)
				out.WriteString("\n        )\n")
			}
		case *ast.CondAnd:
			out.WriteString("        .body_nodes(")
			writeCondAndVec(&out, n.Cond, n.Body)
			out.WriteString(")\n")
		case *ast.Ternary:
			if len(n.IfTrue) == 1 && len(n.IfFalse) == 1 {
				out.WriteString("        .body_node(\n            ")
				writeTernarySingle(&out, n.Cond, n.IfTrue[0], n.IfFalse[0])
				out.WriteString("\n        )\n")
			} else {
				out.WriteString("        .body_nodes(")
				writeTernaryVec(&out, n.Cond, n.IfTrue, n.IfFalse)
				out.WriteString(")\n")
			}
		case *ast.Expr:
			out.WriteString("        .body_nodes((")
			out.WriteString(n.Src)
			out.WriteString(").into_children())\n")
		default:
			out.WriteString("        .body_node(\n            ")
			writeNode(&out, node)
			out.WriteString("\n        )\n")
		}
	}

	if glueURL != "" {
		out.WriteString("        .script_module(\"")
		out.WriteString(glueURL)
		out.WriteString("\")\n")
	}

	return out.String()
}

// GenerateFragmentFn lowers the body of an `-> Fragment` function into an
// accumulator block whose final expression is the node vector.
func GenerateFragmentFn(nodes []ast.Node) string {
	var out strings.Builder
	out.WriteString("let mut __rsx_nodes = Vec::new();\n")

	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Expr:
			out.WriteString("    __rsx_nodes.extend((")
			out.WriteString(n.Src)
			out.WriteString(").into_children());\n")
		case *ast.CondAnd:
			out.WriteString("    if ")
			out.WriteString(n.Cond)
			out.WriteString(" {\n")
			for _, child := range n.Body {
				out.WriteString("        __rsx_nodes.push(")
				writeNode(&out, child)
				out.WriteString(");\n")
			}
			out.WriteString("    }\n")
		case *ast.Ternary:
			if len(n.IfTrue) == 1 && len(n.IfFalse) == 1 {
				out.WriteString("    __rsx_nodes.push(if ")
				out.WriteString(n.Cond)
				out.WriteString(" { ")
				writeNode(&out, n.IfTrue[0])
				out.WriteString(" } else { ")
				writeNode(&out, n.IfFalse[0])
				out.WriteString(" });\n")
			} else {
				out.WriteString("    if ")
				out.WriteString(n.Cond)
				out.WriteString(" {\n")
				for _, child := range n.IfTrue {
					out.WriteString("        __rsx_nodes.push(")
					writeNode(&out, child)
					out.WriteString(");\n")
				}
				out.WriteString("    } else {\n")
				for _, child := range n.IfFalse {
					out.WriteString("        __rsx_nodes.push(")
					writeNode(&out, child)
					out.WriteString(");\n")
				}
				out.WriteString("    }\n")
			}
		default:
			out.WriteString("    __rsx_nodes.push(\n        ")
			writeNode(&out, node)
			out.WriteString("\n    );\n")
		}
	}

	out.WriteString("    __rsx_nodes")
	return out.String()
}

// GenerateChildrenExpr builds a block expression producing the child node
// vector passed to a component's `children` parameter.
func GenerateChildrenExpr(nodes []ast.Node) string {
	var out strings.Builder
	out.WriteString("{ let mut __c = Vec::new(); ")
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Expr:
			out.WriteString("__c.extend((")
			out.WriteString(n.Src)
			out.WriteString(").into_children()); ")
		case *ast.CondAnd:
			out.WriteString("if ")
			out.WriteString(n.Cond)
			out.WriteString(" { ")
			for _, child := range n.Body {
				out.WriteString("__c.push(")
				writeNode(&out, child)
				out.WriteString("); ")
			}
			out.WriteString("} ")
		case *ast.Ternary:
			out.WriteString("if ")
			out.WriteString(n.Cond)
			out.WriteString(" { ")
			for _, child := range n.IfTrue {
				out.WriteString("__c.push(")
				writeNode(&out, child)
				out.WriteString("); ")
			}
			out.WriteString("} else { ")
			for _, child := range n.IfFalse {
				out.WriteString("__c.push(")
				writeNode(&out, child)
				out.WriteString("); ")
			}
			out.WriteString("} ")
		default:
			out.WriteString("__c.push(")
			writeNode(&out, node)
			out.WriteString("); ")
		}
	}
	out.WriteString("__c }")
	return out.String()
}

func findLiteralAttr(attrs []ast.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name == name && attr.Kind == ast.AttrLiteral {
			return attr.Value, true
		}
	}
	return "", false
}

func writeNode(out *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.Element:
		writeElement(out, n)
	case *ast.Text:
		out.WriteString("text(\"")
		out.WriteString(n.Value)
		out.WriteString("\")")
	case *ast.Expr:
		out.WriteString("(")
		out.WriteString(n.Src)
		out.WriteString(").into_children()")
	case *ast.CondAnd:
		writeCondAndVec(out, n.Cond, n.Body)
	case *ast.Ternary:
		if len(n.IfTrue) == 1 && len(n.IfFalse) == 1 {
			writeTernarySingle(out, n.Cond, n.IfTrue[0], n.IfFalse[0])
		} else {
			writeTernaryVec(out, n.Cond, n.IfTrue, n.IfFalse)
		}
	}
}

func writeCondAndVec(out *strings.Builder, cond string, body []ast.Node) {
	out.WriteString("{ let mut __c = Vec::new(); if ")
	out.WriteString(cond)
	out.WriteString(" { ")
	for _, node := range body {
		out.WriteString("__c.push(")
		writeNode(out, node)
		out.WriteString("); ")
	}
	out.WriteString("} __c }")
}

func writeTernarySingle(out *strings.Builder, cond string, ifTrue, ifFalse ast.Node) {
	out.WriteString("if ")
	out.WriteString(cond)
	out.WriteString(" { ")
	writeNode(out, ifTrue)
	out.WriteString(" } else { ")
	writeNode(out, ifFalse)
	out.WriteString(" }")
}

func writeTernaryVec(out *strings.Builder, cond string, ifTrue, ifFalse []ast.Node) {
	out.WriteString("if ")
	out.WriteString(cond)
	out.WriteString(" { let mut __t = Vec::new(); ")
	for _, node := range ifTrue {
		out.WriteString("__t.push(")
		writeNode(out, node)
		out.WriteString("); ")
	}
	out.WriteString("__t } else { let mut __f = Vec::new(); ")
	for _, node := range ifFalse {
		out.WriteString("__f.push(")
		writeNode(out, node)
		out.WriteString("); ")
	}
	out.WriteString("__f }")
}

func writeElement(out *strings.Builder, el *ast.Element) {
	out.WriteString(el.Tag)
	out.WriteString("()")

	for _, attr := range el.Attrs {
		switch attr.Kind {
		case ast.AttrLiteral:
			switch attr.Name {
			case "class":
				out.WriteString(".class(\"")
				out.WriteString(attr.Value)
				out.WriteString("\")")
			case "id":
				out.WriteString(".id(\"")
				out.WriteString(attr.Value)
				out.WriteString("\")")
			default:
				out.WriteString(".attr(\"")
				out.WriteString(attr.Name)
				out.WriteString("\", \"")
				out.WriteString(attr.Value)
				out.WriteString("\")")
			}
		case ast.AttrExpr:
			// Event handlers become data attributes for client-side binding.
			if isEventAttr(attr.Name) {
				out.WriteString(".attr(\"data-rsx-")
				out.WriteString(attr.Name)
				out.WriteString("\", \"")
				out.WriteString(attr.Value)
				out.WriteString("\")")
			}
		}
	}

	for _, child := range el.Children {
		switch n := child.(type) {
		case *ast.Text:
			out.WriteString(".text(\"")
			out.WriteString(n.Value)
			out.WriteString("\")")
		case *ast.Expr:
			out.WriteString(".children((")
			out.WriteString(n.Src)
			out.WriteString(").into_children())")
		case *ast.Element:
			out.WriteString(".child(")
			writeElement(out, n)
			out.WriteString(")")
		case *ast.CondAnd:
			out.WriteString(".children(")
			writeCondAndVec(out, n.Cond, n.Body)
			out.WriteString(")")
		case *ast.Ternary:
			if len(n.IfTrue) == 1 && len(n.IfFalse) == 1 {
				out.WriteString(".child(")
				writeTernarySingle(out, n.Cond, n.IfTrue[0], n.IfFalse[0])
				out.WriteString(")")
			} else {
				out.WriteString(".children(")
				writeTernaryVec(out, n.Cond, n.IfTrue, n.IfFalse)
				out.WriteString(")")
			}
		}
	}

	out.WriteString(".into_node()")
}

func isEventAttr(name string) bool {
	return strings.HasPrefix(name, "on") && len(name) > 2
}

// ResolveComponents rewrites component tags into plain expressions: Fragment
// components become positional function calls, reactive components become
// inert mount-point divs picked up by the bridging script.
func ResolveComponents(nodes []ast.Node, components []semantic.ComponentInfo, reactiveNames []string) []ast.Node {
	var out []ast.Node
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Element:
			if semantic.IsComponentTag(n.Tag) && !semantic.IsSpecialTag(n.Tag) {
				snake := semantic.PascalToSnake(n.Tag)

				if containsName(reactiveNames, snake) {
					mount := "div().attr(\"data-rsx-component\", \"" + snake + "\").into_node()"
					out = append(out, &ast.Expr{Src: mount})
					continue
				}

				if params, ok := lookupComponent(components, snake); ok {
					call := buildComponentCall(snake, params, n.Attrs, n.Children, components, reactiveNames)
					out = append(out, &ast.Expr{Src: call})
					continue
				}
			}
			out = append(out, &ast.Element{
				Tag:         n.Tag,
				Attrs:       n.Attrs,
				Children:    ResolveComponents(n.Children, components, reactiveNames),
				SelfClosing: n.SelfClosing,
			})
		case *ast.CondAnd:
			out = append(out, &ast.CondAnd{
				Cond: n.Cond,
				Body: ResolveComponents(n.Body, components, reactiveNames),
			})
		case *ast.Ternary:
			out = append(out, &ast.Ternary{
				Cond:    n.Cond,
				IfTrue:  ResolveComponents(n.IfTrue, components, reactiveNames),
				IfFalse: ResolveComponents(n.IfFalse, components, reactiveNames),
			})
		default:
			out = append(out, node)
		}
	}
	return out
}

// buildComponentCall maps tag attributes onto the backing function's params
// in declaration order. The `children` param receives the built child list.
func buildComponentCall(
	fnName string,
	params []scanner.Param,
	attrs []ast.Attr,
	children []ast.Node,
	components []semantic.ComponentInfo,
	reactiveNames []string,
) string {
	var call strings.Builder
	call.WriteString(fnName)
	call.WriteByte('(')

	first := true
	for _, param := range params {
		if !first {
			call.WriteString(", ")
		}
		first = false

		if param.Name == "children" {
			if len(children) == 0 {
				call.WriteString("Vec::new()")
			} else {
				resolved := ResolveComponents(children, components, reactiveNames)
				call.WriteString(GenerateChildrenExpr(resolved))
			}
			continue
		}

		for _, attr := range attrs {
			if attr.Name != param.Name {
				continue
			}
			if attr.Kind == ast.AttrLiteral {
				call.WriteByte('"')
				call.WriteString(attr.Value)
				call.WriteByte('"')
			} else {
				call.WriteString(attr.Value)
			}
			break
		}
	}

	call.WriteByte(')')
	return call.String()
}

func lookupComponent(components []semantic.ComponentInfo, name string) ([]scanner.Param, bool) {
	for _, c := range components {
		if c.Name == name {
			return c.Params, true
		}
	}
	return nil, false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
