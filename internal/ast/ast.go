// Package ast defines the markup AST shared by both code generation backends.
//
// The node set is closed: every consuming pass switches exhaustively over the
// concrete types. The tree is owned top-down, built once by the parser, and is
// only replaced whole-subtree at a time (component resolution).
package ast

// Node is a markup AST node.
type Node interface{ node() }

// Element is `<tag attr=...>children</tag>` or `<tag ... />`.
// A self-closing element never has children.
type Element struct {
	Tag         string
	Attrs       []Attr
	Children    []Node
	SelfClosing bool
}

// Text is a literal text child.
type Text struct {
	Value string
}

// Expr is an opaque host-language expression child.
type Expr struct {
	Src string
}

// CondAnd is `{cond && <markup>}` — the body renders only when cond is true.
type CondAnd struct {
	Cond string
	Body []Node
}

// Ternary is `{cond ? <a> : <b>}`.
type Ternary struct {
	Cond    string
	IfTrue  []Node
	IfFalse []Node
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Expr) node()    {}
func (*CondAnd) node() {}
func (*Ternary) node() {}

// AttrKind distinguishes literal and expression attribute values.
type AttrKind int

const (
	// AttrLiteral is a double-quoted value.
	AttrLiteral AttrKind = iota
	// AttrExpr is a `{expr}` value.
	AttrExpr
)

// Attr is one attribute on an Element.
type Attr struct {
	Name  string
	Kind  AttrKind
	Value string
}
