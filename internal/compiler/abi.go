package compiler

import "rsxc/internal/scanner"

// AbiType is a scalar type at the module boundary.
type AbiType int

const (
	AbiI32 AbiType = iota
	AbiI64
	AbiF32
	AbiF64
)

func (t AbiType) String() string {
	switch t {
	case AbiI32:
		return "i32"
	case AbiI64:
		return "i64"
	case AbiF32:
		return "f32"
	case AbiF64:
		return "f64"
	}
	return "i32"
}

// AbiKind describes how a declared parameter or return type crosses the
// module boundary.
type AbiKind int

const (
	// AbiDirect passes a scalar through unchanged.
	AbiDirect AbiKind = iota
	// AbiStringPair flattens a string into (ptr i32, len i32).
	AbiStringPair
	// AbiVoid carries no value.
	AbiVoid
)

// AbiParam is one flattened parameter of an exported wrapper.
type AbiParam struct {
	Name     string
	DeclType string
	Kind     AbiKind
	Scalar   AbiType
}

// AbiSignature is the flattened boundary signature of a handler function.
type AbiSignature struct {
	Name   string
	Params []AbiParam
	Ret    AbiKind
}

// LowerType maps a declared source type to its boundary representation.
// Unknown types are treated as opaque i32 handles.
func LowerType(ty string) (AbiKind, AbiType) {
	switch ty {
	case "i32", "u32", "bool":
		return AbiDirect, AbiI32
	case "i64", "u64":
		return AbiDirect, AbiI64
	case "f32":
		return AbiDirect, AbiF32
	case "f64":
		return AbiDirect, AbiF64
	case "&str", "String":
		return AbiStringPair, AbiI32
	case "()":
		return AbiVoid, AbiI32
	}
	return AbiDirect, AbiI32
}

// BuildSignature flattens a handler function's parameter list. Handlers never
// return a value across the boundary.
func BuildSignature(name string, params []scanner.Param) AbiSignature {
	sig := AbiSignature{Name: name, Ret: AbiVoid}
	for _, p := range params {
		kind, scalar := LowerType(p.Type)
		sig.Params = append(sig.Params, AbiParam{
			Name:     p.Name,
			DeclType: p.Type,
			Kind:     kind,
			Scalar:   scalar,
		})
	}
	return sig
}
