// Package preview renders parsed markup to static HTML so a page can be
// inspected without compiling the host source. Dynamic expressions render
// as placeholders; event bindings become the same data attributes the
// server backend emits.
package preview

import (
	"io"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"rsxc/internal/ast"
)

// Render lowers markup nodes to a single gomponents node.
func Render(nodes []ast.Node) g.Node {
	lowered := make([]g.Node, 0, len(nodes))
	for _, n := range nodes {
		lowered = append(lowered, lowerNode(n))
	}
	return g.Group(lowered)
}

// Page wraps rendered markup in a full document.
func Page(title string, nodes []ast.Node) g.Node {
	return h.Doctype(
		h.HTML(
			h.Head(h.TitleEl(g.Text(title))),
			h.Body(Render(nodes)),
		),
	)
}

// WriteHTML renders markup nodes to w.
func WriteHTML(w io.Writer, nodes []ast.Node) error {
	return Render(nodes).Render(w)
}

func lowerNode(n ast.Node) g.Node {
	switch t := n.(type) {
	case *ast.Text:
		return g.Text(t.Value)
	case *ast.Expr:
		// Static preview cannot evaluate host expressions; show the slot.
		return h.Span(h.Class("rsx-expr"), g.Text("{"+t.Src+"}"))
	case *ast.CondAnd:
		// Optimistic preview: conditional content shown.
		return Render(t.Body)
	case *ast.Ternary:
		return Render(t.IfTrue)
	case *ast.Element:
		return lowerElement(t)
	default:
		return g.Text("")
	}
}

func lowerElement(el *ast.Element) g.Node {
	switch el.Tag {
	case "Style":
		return h.StyleEl(styleChildren(el.Children)...)
	case "Stylesheet":
		href := literalAttr(el.Attrs, "href")
		return h.Link(h.Rel("stylesheet"), h.Href(href))
	case "Head":
		return h.Head(childNodes(el.Children)...)
	}

	args := make([]g.Node, 0, len(el.Attrs)+len(el.Children))
	for _, a := range el.Attrs {
		args = append(args, lowerAttr(a))
	}
	for _, c := range el.Children {
		args = append(args, lowerNode(c))
	}

	if fn := elementFunc(el.Tag); fn != nil {
		return fn(args...)
	}
	return g.El(el.Tag, args...)
}

func childNodes(children []ast.Node) []g.Node {
	out := make([]g.Node, 0, len(children))
	for _, c := range children {
		out = append(out, lowerNode(c))
	}
	return out
}

func styleChildren(children []ast.Node) []g.Node {
	out := make([]g.Node, 0, len(children))
	for _, c := range children {
		if t, ok := c.(*ast.Text); ok {
			out = append(out, g.Raw(t.Value))
		}
	}
	return out
}

func lowerAttr(a ast.Attr) g.Node {
	if a.Kind == ast.AttrExpr {
		if strings.HasPrefix(a.Name, "on") {
			// Same contract as the server backend: the bridging script
			// binds handlers through data attributes.
			return g.Attr("data-rsx-on"+a.Name[2:], a.Value)
		}
		return g.Attr(a.Name, "{"+a.Value+"}")
	}
	if fn := attrFunc(a.Name); fn != nil {
		return fn(a.Value)
	}
	return g.Attr(a.Name, a.Value)
}

func literalAttr(attrs []ast.Attr, name string) string {
	for _, a := range attrs {
		if a.Name == name && a.Kind == ast.AttrLiteral {
			return a.Value
		}
	}
	return ""
}

func elementFunc(tag string) func(...g.Node) g.Node {
	switch tag {
	case "a":
		return h.A
	case "button":
		return h.Button
	case "div":
		return h.Div
	case "footer":
		return h.Footer
	case "form":
		return h.Form
	case "h1":
		return h.H1
	case "h2":
		return h.H2
	case "h3":
		return h.H3
	case "h4":
		return h.H4
	case "h5":
		return h.H5
	case "h6":
		return h.H6
	case "header":
		return h.Header
	case "img":
		return h.Img
	case "input":
		return h.Input
	case "label":
		return h.Label
	case "li":
		return h.Li
	case "main":
		return h.Main
	case "nav":
		return h.Nav
	case "p":
		return h.P
	case "section":
		return h.Section
	case "span":
		return h.Span
	case "table":
		return h.Table
	case "td":
		return h.Td
	case "th":
		return h.Th
	case "tr":
		return h.Tr
	case "ul":
		return h.Ul
	default:
		return nil
	}
}

func attrFunc(name string) func(string) g.Node {
	switch name {
	case "class":
		return h.Class
	case "href":
		return h.Href
	case "id":
		return h.ID
	case "placeholder":
		return h.Placeholder
	case "src":
		return h.Src
	case "style":
		return h.Style
	case "type":
		return h.Type
	default:
		return nil
	}
}
