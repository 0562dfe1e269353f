// Package project drives whole-directory builds: it discovers .rsx files,
// compiles them concurrently, mirrors the tree into the dist directory,
// and copies static assets to dist/public/.
package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"rsxc/internal/compiler"
	"rsxc/internal/diag"
	"rsxc/internal/wasmbuild"
)

// Result describes one compiled source file.
type Result struct {
	SourcePath string
	OutputPath string
	Warnings   []diag.Warning
	// HasClient reports whether the file produced wasm/glue artifacts.
	HasClient bool
}

// Options tune a directory build.
type Options struct {
	// BuildWasm compiles generated client sources to .wasm binaries with
	// the native toolchain. Off, the client .rs and glue are still written.
	BuildWasm bool
	// Logger receives per-file progress and warnings. Nil uses slog.Default.
	Logger *slog.Logger
}

// CompileDir compiles every .rsx file under sourceDir into
// sourceDir/distName, mirroring relative paths. Host .rs sources are
// copied through; static assets land under dist/public/. Each file
// compiles independently, so files run concurrently with one worker per
// CPU.
func CompileDir(sourceDir, distName string, opts Options) ([]Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	distDir := filepath.Join(sourceDir, distName)

	// Clean build: drop the previous dist tree.
	if _, err := os.Stat(distDir); err == nil {
		if err := os.RemoveAll(distDir); err != nil {
			return nil, fmt.Errorf("failed to remove old dist directory: %w", err)
		}
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dist directory: %w", err)
	}

	publicSrc := filepath.Join(sourceDir, "public")
	if info, err := os.Stat(publicSrc); err == nil && info.IsDir() {
		if err := copyDirRecursive(publicSrc, filepath.Join(distDir, "public")); err != nil {
			return nil, err
		}
	}

	sources, err := discoverFiles(sourceDir, distName)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []Result
	)
	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())

	for _, path := range sources.rsx {
		path := path
		group.Go(func() error {
			res, err := CompileFile(path, sourceDir, distDir, opts)
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(sourceDir, path)
			log.Info("compiled", "file", rel, "client", res.HasClient)
			for _, w := range res.Warnings {
				log.Warn(w.Message, "file", w.File, "line", w.Line)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, path := range sources.host {
		if err := copyMirrored(path, sourceDir, distDir); err != nil {
			return nil, err
		}
	}
	for _, path := range sources.assets {
		if err := copyAssetToPublic(path, sourceDir, distDir); err != nil {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].SourcePath < results[j].SourcePath })
	return results, nil
}

// CompileFile compiles one .rsx file, writing output into distDir at the
// path mirroring its location under sourceRoot.
func CompileFile(path, sourceRoot, distDir string, opts Options) (Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, err := compiler.CompileSourceFull(string(source), path)
	if err != nil {
		return Result{}, err
	}

	rel, err := filepath.Rel(sourceRoot, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	outPath := filepath.Join(distDir, rel)
	outPath = strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".rs"

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(out.ServerSource), 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	result := Result{
		SourcePath: path,
		OutputPath: outPath,
		Warnings:   out.Warnings,
	}
	if out.Client == nil {
		return result, nil
	}
	result.HasClient = true

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	// Client source sits next to the server output.
	clientRS := filepath.Join(filepath.Dir(outPath), stem+"_client.rs")
	if err := os.WriteFile(clientRS, []byte(out.Client.WasmSource), 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write client source: %w", err)
	}

	// Glue script is served statically from dist/public/wasm/.
	wasmDir := filepath.Join(distDir, "public", "wasm")
	if err := os.MkdirAll(wasmDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create wasm directory: %w", err)
	}
	gluePath := filepath.Join(wasmDir, stem+"_glue.js")
	if err := os.WriteFile(gluePath, []byte(out.Client.GlueScript), 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write glue script: %w", err)
	}

	if opts.BuildWasm {
		wasmPath := filepath.Join(wasmDir, stem+"_client.wasm")
		if err := wasmbuild.Build(clientRS, wasmPath); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

type discovered struct {
	rsx    []string
	host   []string
	assets []string
}

func discoverFiles(sourceDir, distName string) (discovered, error) {
	var found discovered
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// The dist tree and public/ at the source root are outputs.
			if parent := filepath.Dir(path); parent == sourceDir {
				if d.Name() == distName || d.Name() == "public" {
					return filepath.SkipDir
				}
			}
			return nil
		}
		switch {
		case strings.HasSuffix(path, ".rsx"):
			found.rsx = append(found.rsx, path)
		case strings.HasSuffix(path, ".rs"):
			found.host = append(found.host, path)
		case isStaticAsset(strings.TrimPrefix(filepath.Ext(path), ".")):
			found.assets = append(found.assets, path)
		}
		return nil
	})
	return found, err
}

// isStaticAsset reports whether a file extension belongs under
// dist/public/.
func isStaticAsset(ext string) bool {
	switch ext {
	case "css", "svg", "png", "jpg", "jpeg", "gif", "webp", "avif", "ico",
		"woff", "woff2", "ttf", "otf":
		return true
	}
	return false
}

func copyMirrored(path, sourceRoot, distDir string) error {
	rel, err := filepath.Rel(sourceRoot, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return copyFileTo(path, filepath.Join(distDir, rel))
}

func copyAssetToPublic(path, sourceRoot, distDir string) error {
	rel, err := filepath.Rel(sourceRoot, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return copyFileTo(path, filepath.Join(distDir, "public", rel))
}

func copyFileTo(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func copyDirRecursive(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return copyFileTo(path, filepath.Join(dst, rel))
	})
}
