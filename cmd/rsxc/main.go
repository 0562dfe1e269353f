package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rsxc/internal/compiler"
	"rsxc/internal/lexer"
	"rsxc/internal/parser"
	"rsxc/internal/preview"
	"rsxc/internal/project"
	"rsxc/internal/scanner"
	"rsxc/internal/wasmbuild"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "build":
		buildCmd(os.Args[2:])
	case "dir":
		dirCmd(os.Args[2:])
	case "preview":
		previewCmd(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  rsxc build <file.rsx> [-o <dir>] [--wasm]")
	fmt.Fprintln(os.Stderr, "  rsxc dir [<source-dir>] [--wasm]")
	fmt.Fprintln(os.Stderr, "  rsxc preview <file.rsx> [-o <file.html>]")
}

// buildCmd compiles a single file and writes its outputs next to it (or
// into -o).
func buildCmd(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "output directory (defaults to the input file's directory)")
	buildWasm := fs.Bool("wasm", false, "compile client functions to a .wasm binary with rustc")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "an input file is required")
		os.Exit(1)
	}
	entry := fs.Arg(0)

	source, err := os.ReadFile(entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	result, err := compiler.CompileSourceFull(string(source), entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.File, w.Message)
	}

	outDir := *out
	if outDir == "" {
		outDir = filepath.Dir(entry)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	stem := strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry))
	serverPath := filepath.Join(outDir, stem+".rs")
	if err := os.WriteFile(serverPath, []byte(result.ServerSource), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(serverPath)

	if result.Client == nil {
		return
	}
	clientPath := filepath.Join(outDir, stem+"_client.rs")
	if err := os.WriteFile(clientPath, []byte(result.Client.WasmSource), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(clientPath)
	gluePath := filepath.Join(outDir, stem+"_glue.js")
	if err := os.WriteFile(gluePath, []byte(result.Client.GlueScript), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(gluePath)

	if *buildWasm {
		if !wasmbuild.CheckTarget() {
			fmt.Fprintln(os.Stderr, "the wasm32-unknown-unknown target is not installed; run: rustup target add wasm32-unknown-unknown")
			os.Exit(1)
		}
		wasmPath := filepath.Join(outDir, stem+"_client.wasm")
		if err := wasmbuild.Build(clientPath, wasmPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(wasmPath)
	}
}

// dirCmd compiles a whole source tree into its dist directory, reading
// rsxc.toml for the dist and entrypoint settings.
func dirCmd(args []string) {
	fs := flag.NewFlagSet("dir", flag.ExitOnError)
	buildWasm := fs.Bool("wasm", false, "compile client functions to .wasm binaries with rustc")
	_ = fs.Parse(args)

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	sourceDir := filepath.Join(root, project.ReadEntrypointConfig(root))
	distName := project.ReadDistConfig(root)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	results, err := project.CompileDir(sourceDir, distName, project.Options{
		BuildWasm: *buildWasm,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("compiled %d files into %s\n", len(results), filepath.Join(sourceDir, distName))
}

// previewCmd renders a file's page markup to static HTML for a quick
// look without the host toolchain.
func previewCmd(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	out := fs.String("o", "", "output HTML file (defaults to stdout)")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "an input file is required")
		os.Exit(1)
	}
	entry := fs.Arg(0)

	source, err := os.ReadFile(entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	functions := scanner.Scan(string(source))
	var rendered bool
	for _, fn := range functions {
		if fn.Kind != scanner.Html {
			continue
		}
		body := strings.TrimSpace(string(source)[fn.BodySpan.Start:fn.BodySpan.End])
		tokens, err := lexer.Tokenize(body, entry)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		nodes, err := parser.Parse(tokens, entry)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		page := preview.Page(fn.Name, nodes)

		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close()
			w = f
		}
		if err := page.Render(w); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		rendered = true
		break
	}
	if !rendered {
		fmt.Fprintf(os.Stderr, "%s: no function returning Html found\n", entry)
		os.Exit(1)
	}
}
