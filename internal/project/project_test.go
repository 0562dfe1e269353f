package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadDistConfigDefault(t *testing.T) {
	dir := t.TempDir()
	if got := ReadDistConfig(dir); got != DefaultDist {
		t.Errorf("expected default dist %q, got %q", DefaultDist, got)
	}
}

func TestReadDistConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rsxc.toml"), `[web]
dist = "build"
entrypoint = "site"
`)
	if got := ReadDistConfig(dir); got != "build" {
		t.Errorf("expected dist build, got %q", got)
	}
	if got := ReadEntrypointConfig(dir); got != "site" {
		t.Errorf("expected entrypoint site, got %q", got)
	}
}

func TestReadConfigIgnoresOtherSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rsxc.toml"), `[server]
dist = "wrong"

[web]
dist = "out" # build output
`)
	if got := ReadDistConfig(dir); got != "out" {
		t.Errorf("expected dist out, got %q", got)
	}
}

func TestIsStaticAsset(t *testing.T) {
	for _, ext := range []string{"css", "svg", "png", "woff2", "ico"} {
		if !isStaticAsset(ext) {
			t.Errorf("%s should be a static asset", ext)
		}
	}
	for _, ext := range []string{"rs", "rsx", "toml", "html", "js"} {
		if isStaticAsset(ext) {
			t.Errorf("%s should not be a static asset", ext)
		}
	}
}

func TestCompileDirMirrorsTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.rsx"), `pub fn page(_req: &Request) -> Html {
    <h1>"hello"</h1>
}
`)
	writeFile(t, filepath.Join(dir, "blog", "post.rsx"), `pub fn page(_req: &Request) -> Html {
    <p>"post"</p>
}
`)

	results, err := CompileDir(dir, ".rsx", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	out, err := os.ReadFile(filepath.Join(dir, ".rsx", "index.rs"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "HtmlDocument::new()") {
		t.Error("compiled output missing builder chain")
	}
	if _, err := os.Stat(filepath.Join(dir, ".rsx", "blog", "post.rs")); err != nil {
		t.Error("nested source not mirrored into dist")
	}
}

func TestCompileDirWritesClientArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page.rsx"), `pub fn page(_req: &Request) -> Html {
    <button onclick={on_click}>"Click"</button>
    <p id="out">"Hi"</p>
}

pub fn on_click(target: &str) -> Client {
    let el = dom::query("#out");
    el.set_text("clicked");
}
`)

	results, err := CompileDir(dir, ".rsx", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || !results[0].HasClient {
		t.Fatal("expected one client-bearing result")
	}

	client, err := os.ReadFile(filepath.Join(dir, ".rsx", "page_client.rs"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(client), `#![no_std]`) {
		t.Error("client source missing no_std attribute")
	}

	glue, err := os.ReadFile(filepath.Join(dir, ".rsx", "public", "wasm", "page_glue.js"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(glue), "/wasm/page_client.wasm") {
		t.Error("glue script missing wasm URL")
	}
}

func TestCompileDirCopiesHostSourcesAndAssets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.rsx"), `pub fn page(_req: &Request) -> Html {
    <h1>"hi"</h1>
}
`)
	writeFile(t, filepath.Join(dir, "helpers.rs"), "pub fn helper() {}\n")
	writeFile(t, filepath.Join(dir, "styles", "main.css"), "body { margin: 0; }\n")

	if _, err := CompileDir(dir, ".rsx", Options{}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".rsx", "helpers.rs")); err != nil {
		t.Error("host source not copied into dist")
	}
	asset, err := os.ReadFile(filepath.Join(dir, ".rsx", "public", "styles", "main.css"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(asset), "margin: 0") {
		t.Error("asset content not copied")
	}
}

func TestCompileDirCopiesPublicDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.rsx"), `pub fn page(_req: &Request) -> Html {
    <h1>"hi"</h1>
}
`)
	writeFile(t, filepath.Join(dir, "public", "favicon.ico"), "icon")

	if _, err := CompileDir(dir, ".rsx", Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".rsx", "public", "favicon.ico")); err != nil {
		t.Error("public directory not copied into dist")
	}
}

func TestCompileDirSkipsStaleDist(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.rsx"), `pub fn page(_req: &Request) -> Html {
    <h1>"hi"</h1>
}
`)
	writeFile(t, filepath.Join(dir, ".rsx", "stale.rs"), "stale")

	if _, err := CompileDir(dir, ".rsx", Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".rsx", "stale.rs")); err == nil {
		t.Error("stale dist content survived a rebuild")
	}
}

func TestCompileDirReportsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.rsx"), `let (n, set_n) = use_state(0);

pub fn page(_req: &Request) -> Html {
    <h1>"hi"</h1>
}
`)

	_, err := CompileDir(dir, ".rsx", Options{})
	if err == nil {
		t.Fatal("expected a top-level placement error")
	}
	if !strings.Contains(err.Error(), "top level") {
		t.Errorf("unexpected error: %v", err)
	}
}
