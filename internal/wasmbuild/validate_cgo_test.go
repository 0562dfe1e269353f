//go:build cgo
// +build cgo

package wasmbuild

func hasWasmtime() bool { return true }
