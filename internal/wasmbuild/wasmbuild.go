// Package wasmbuild compiles generated client Rust sources to wasm
// binaries by shelling out to rustc, and validates the result with the
// wasmtime runtime when built with cgo.
package wasmbuild

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"rsxc/internal/diag"
)

// Build compiles a generated client source to a wasm binary:
//
//	rustc --target wasm32-unknown-unknown --crate-type cdylib -O --edition 2024 -o output.wasm input.rs
//
// The output directory is created if needed. When the toolchain lacks the
// wasm target the error carries the rustup command that installs it.
func Build(clientRS, outputWasm string) error {
	if dir := filepath.Dir(outputWasm); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return diag.Errorf(outputWasm, 0, 0, "failed to create wasm output directory: %v", err)
		}
	}

	cmd := exec.Command("rustc",
		"--target", "wasm32-unknown-unknown",
		"--crate-type", "cdylib",
		"-O",
		"--edition", "2024",
		"-o", outputWasm,
		clientRS,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return diag.Errorf(clientRS, 0, 0,
				"failed to run rustc: %v\n\n  Make sure rustc is installed and in your PATH.", err)
		}
		msg := stderr.String()
		if strings.Contains(msg, "wasm32-unknown-unknown") && strings.Contains(msg, "target") {
			return diag.Errorf(clientRS, 0, 0,
				"wasm32-unknown-unknown target not installed.\n\n  Install it with: rustup target add wasm32-unknown-unknown")
		}
		return diag.Errorf(clientRS, 0, 0, "rustc failed:\n%s", msg)
	}

	wasm, err := os.ReadFile(outputWasm)
	if err != nil {
		return diag.Errorf(outputWasm, 0, 0, "failed to read wasm output: %v", err)
	}
	if err := Validate(wasm); err != nil {
		return diag.Errorf(outputWasm, 0, 0, "generated wasm failed validation: %v", err)
	}
	return nil
}

// CheckTarget reports whether the wasm32-unknown-unknown target is
// installed, using `rustup target list --installed`.
func CheckTarget() bool {
	out, err := exec.Command("rustup", "target", "list", "--installed").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "wasm32-unknown-unknown")
}
