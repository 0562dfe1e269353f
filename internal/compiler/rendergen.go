package compiler

import (
	"fmt"
	"strings"

	"rsxc/internal/ast"
)

// RenderOutput is the incremental-render code generated for one Component's
// markup body: mount code that builds the DOM subtree once, and update code
// that refreshes dynamic expression slots on every render.
type RenderOutput struct {
	MountCode  string
	UpdateCode string
	// RefSlotsUsed counts the ref slots consumed for dynamic node handles.
	RefSlotsUsed int

	NeedsCreate     bool
	NeedsCreateText bool
	NeedsAppend     bool
	NeedsAddClass   bool
	NeedsSetAttr    bool
	NeedsSetText    bool
	NeedsMountPoint bool
	NeedsIsMounted  bool
	NeedsRefGetI32  bool
	NeedsRefSetI32  bool
	NeedsFmtI32     bool
	NeedsFmtF32     bool
}

type renderWalker struct {
	mount         strings.Builder
	update        strings.Builder
	nodeCounter   int
	dynSlots      int
	refSlotOffset int
	out           *RenderOutput
}

// GenerateComponentRender walks a Component's parsed markup and emits
// mount/update code. refSlotOffset is the first free ref slot after the
// function's own ref declarations; dynamic expression handles are stored
// from there upward.
func GenerateComponentRender(nodes []ast.Node, componentID, refSlotOffset int) RenderOutput {
	out := RenderOutput{NeedsMountPoint: true, NeedsIsMounted: true}
	w := renderWalker{refSlotOffset: refSlotOffset, out: &out}

	fmt.Fprintf(&w.mount, "let __rsx_mp = __rsx_component_mount_point(%d);\n", componentID)
	for _, node := range nodes {
		w.walkNode(node, "__rsx_mp")
	}

	out.MountCode = w.mount.String()
	out.UpdateCode = w.update.String()
	out.RefSlotsUsed = w.dynSlots
	return out
}

func (w *renderWalker) walkNode(node ast.Node, parentVar string) {
	switch n := node.(type) {
	case *ast.Element:
		w.walkElement(n, parentVar)
	case *ast.Text:
		w.walkText(n.Value, parentVar)
	case *ast.Expr:
		w.walkExpr(n.Src, parentVar)
	case *ast.CondAnd, *ast.Ternary:
		// Conditional markup inside reactive components is not rendered
		// incrementally yet; skip.
	}
}

func (w *renderWalker) walkElement(el *ast.Element, parentVar string) {
	n := w.nodeCounter
	w.nodeCounter++
	v := fmt.Sprintf("__rn%d", n)

	fmt.Fprintf(&w.mount, "let %s = __rsx_dom_create(\"%s\".as_ptr() as i32, %d);\n", v, el.Tag, len(el.Tag))
	w.out.NeedsCreate = true

	for _, attr := range el.Attrs {
		switch attr.Kind {
		case ast.AttrLiteral:
			if attr.Name == "class" {
				for _, cls := range strings.Split(attr.Value, " ") {
					if cls == "" {
						continue
					}
					fmt.Fprintf(&w.mount, "__rsx_dom_add_class(%s, \"%s\".as_ptr() as i32, %d);\n", v, cls, len(cls))
					w.out.NeedsAddClass = true
				}
			} else {
				w.emitSetAttr(v, attr.Name, attr.Value)
			}
		case ast.AttrExpr:
			if isEventAttr(attr.Name) {
				w.emitSetAttr(v, "data-rsx-"+attr.Name, attr.Value)
			}
			// Non-event expression attrs are not supported here yet.
		}
	}

	for _, child := range el.Children {
		w.walkNode(child, v)
	}

	fmt.Fprintf(&w.mount, "__rsx_dom_append(%s, %s);\n", parentVar, v)
	w.out.NeedsAppend = true
}

func (w *renderWalker) walkText(text, parentVar string) {
	n := w.nodeCounter
	w.nodeCounter++
	v := fmt.Sprintf("__rt%d", n)

	fmt.Fprintf(&w.mount, "let %s = __rsx_dom_create_text(\"%s\".as_ptr() as i32, %d);\n", v, text, len(text))
	w.out.NeedsCreateText = true

	fmt.Fprintf(&w.mount, "__rsx_dom_append(%s, %s);\n", parentVar, v)
	w.out.NeedsAppend = true
}

// walkExpr mounts an empty text placeholder, parks its handle in a ref slot,
// and emits update code that rewrites the text every render.
func (w *renderWalker) walkExpr(expr, parentVar string) {
	slot := w.dynSlots
	w.dynSlots++
	refSlot := w.refSlotOffset + slot

	n := w.nodeCounter
	w.nodeCounter++
	v := fmt.Sprintf("__rd%d", n)

	fmt.Fprintf(&w.mount, "let %s = __rsx_dom_create_text(\"\".as_ptr() as i32, 0);\n", v)
	w.out.NeedsCreateText = true

	fmt.Fprintf(&w.mount, "__rsx_dom_append(%s, %s);\n", parentVar, v)
	w.out.NeedsAppend = true

	fmt.Fprintf(&w.mount, "__rsx_ref_set_i32(%d, %s);\n", refSlot, v)
	w.out.NeedsRefSetI32 = true

	dynVar := fmt.Sprintf("__dyn%d", slot)
	fmt.Fprintf(&w.update, "let %s = __rsx_ref_get_i32(%d);\n", dynVar, refSlot)
	w.out.NeedsRefGetI32 = true

	w.emitExprUpdate(dynVar, expr, slot)
}

func (w *renderWalker) emitExprUpdate(handleVar, expr string, slot int) {
	expr = strings.TrimSpace(expr)

	if inner, ok := extractFmtCall(expr, "state::fmt_i32("); ok {
		w.emitFmtUpdate(handleVar, "__rsx_state_fmt_i32", inner, slot)
		w.out.NeedsFmtI32 = true
		return
	}
	if inner, ok := extractFmtCall(expr, "state::fmt_f32("); ok {
		w.emitFmtUpdate(handleVar, "__rsx_state_fmt_f32", inner, slot)
		w.out.NeedsFmtF32 = true
		return
	}

	if len(expr) >= 2 && strings.HasPrefix(expr, "\"") && strings.HasSuffix(expr, "\"") {
		inner := expr[1 : len(expr)-1]
		fmt.Fprintf(&w.update, "__rsx_dom_set_text(%s, \"%s\".as_ptr() as i32, %d);\n", handleVar, inner, len(inner))
		w.out.NeedsSetText = true
		return
	}

	// General expression; assume it evaluates to a &str.
	fmt.Fprintf(&w.update, "__rsx_dom_set_text(%s, (%s).as_ptr() as i32, (%s).len() as i32);\n", handleVar, expr, expr)
	w.out.NeedsSetText = true
}

func (w *renderWalker) emitFmtUpdate(handleVar, fmtFn, arg string, slot int) {
	fb := fmt.Sprintf("__rfb%d", slot)
	fl := fmt.Sprintf("__rfl%d", slot)
	fmt.Fprintf(&w.update, "let %s = __rsx_alloc(20);\n", fb)
	fmt.Fprintf(&w.update, "let %s = %s(%s, %s, 20);\n", fl, fmtFn, arg, fb)
	fmt.Fprintf(&w.update, "__rsx_dom_set_text(%s, %s, %s);\n", handleVar, fb, fl)
	w.out.NeedsSetText = true
}

func (w *renderWalker) emitSetAttr(v, name, value string) {
	fmt.Fprintf(&w.mount, "__rsx_dom_set_attr(%s, \"%s\".as_ptr() as i32, %d, \"%s\".as_ptr() as i32, %d);\n",
		v, name, len(name), value, len(value))
	w.out.NeedsSetAttr = true
}

// extractFmtCall pulls the argument out of a `state::fmt_*(arg)` expression.
func extractFmtCall(expr, prefix string) (string, bool) {
	if !strings.HasPrefix(expr, prefix) {
		return "", false
	}
	start := len(prefix)
	depth := 1
	for i := start; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(expr[start:i]), true
			}
		}
	}
	return "", false
}
