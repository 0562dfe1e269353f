//go:build cgo
// +build cgo

package wasmbuild

import "github.com/bytecodealliance/wasmtime-go"

// Validate checks that the compiled binary is a well-formed wasm module.
func Validate(wasm []byte) error {
	engine := wasmtime.NewEngine()
	return wasmtime.ModuleValidate(engine, wasm)
}
