package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Config values come from rsxc.toml in the project root. Only the small
// `[web]` table is read; anything else is ignored.
const (
	DefaultDist       = ".rsx"
	DefaultEntrypoint = "."
)

// ReadDistConfig returns the `[web] dist` value from rsxc.toml in dir,
// or DefaultDist when the file or key is absent.
func ReadDistConfig(dir string) string {
	return readWebKey(dir, "dist", DefaultDist)
}

// ReadEntrypointConfig returns the `[web] entrypoint` value from rsxc.toml
// in dir, or DefaultEntrypoint when the file or key is absent.
func ReadEntrypointConfig(dir string) string {
	return readWebKey(dir, "entrypoint", DefaultEntrypoint)
}

func readWebKey(dir, key, fallback string) string {
	content, err := os.ReadFile(filepath.Join(dir, "rsxc.toml"))
	if err != nil {
		return fallback
	}
	if v, ok := lookupTableKey(string(content), "web", key); ok {
		return v
	}
	return fallback
}

// lookupTableKey scans a minimal TOML subset: `[section]` headers and
// `key = "value"` lines. Quotes around the value are optional.
func lookupTableKey(content, section, key string) (string, bool) {
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inSection = strings.TrimSpace(line[1:len(line)-1]) == section
			continue
		}
		if !inSection {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) != key {
			continue
		}
		v = strings.TrimSpace(v)
		if i := strings.Index(v, " #"); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
		v = strings.Trim(v, `"`)
		return v, true
	}
	return "", false
}
