package assets

import (
	"os"
	"path/filepath"
	"testing"
)

const bundlerManifest = `{
  "src/main.ts": {"file": "assets/main.a1b2.js", "css": ["assets/main.c3d4.css"], "isEntry": true},
  "src/admin.ts": {"file": "assets/admin.e5f6.js", "isEntry": true},
  "_shared.js": {"file": "assets/shared.0909.js"}
}`

func TestManifestResolve(t *testing.T) {
	m := NewManifest()
	m.Set("main.js", Chunk{File: "main.abc123.js"})
	m.Set("styles.css", Chunk{File: "styles.def456.css"})

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"found entry", "main.js", "main.abc123.js"},
		{"found entry css", "styles.css", "styles.def456.css"},
		{"missing entry returns original", "unknown.js", "unknown.js"},
		{"empty string returns empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.source); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.source, got, tt.expected)
			}
		})
	}
}

func TestParseFlat(t *testing.T) {
	m, err := Parse([]byte(`{"main.js": "main.abc123.js", "styles.css": "styles.def456.css"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if got := m.Resolve("main.js"); got != "main.abc123.js" {
		t.Errorf("Resolve(main.js) = %q", got)
	}
	if len(m.Entries()) != 0 {
		t.Errorf("Entries() = %v, want none", m.Entries())
	}
}

func TestParseBundler(t *testing.T) {
	m, err := Parse([]byte(bundlerManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := m.Resolve("src/main.ts"); got != "assets/main.a1b2.js" {
		t.Errorf("Resolve(src/main.ts) = %q", got)
	}
	if got := m.Styles("src/main.ts"); len(got) != 1 || got[0] != "assets/main.c3d4.css" {
		t.Errorf("Styles(src/main.ts) = %v", got)
	}
	if got := m.Styles("src/admin.ts"); len(got) != 0 {
		t.Errorf("Styles(src/admin.ts) = %v, want none", got)
	}

	entries := m.Entries()
	if len(entries) != 2 || entries[0] != "src/admin.ts" || entries[1] != "src/main.ts" {
		t.Errorf("Entries() = %v", entries)
	}
}

func TestStylesReturnsCopy(t *testing.T) {
	m, _ := Parse([]byte(bundlerManifest))
	css := m.Styles("src/main.ts")
	css[0] = "changed"
	if m.Styles("src/main.ts")[0] != "assets/main.c3d4.css" {
		t.Error("Styles() should return a copy")
	}
}

func TestParseInvalid(t *testing.T) {
	for _, data := range []string{"not json", `{"a": 42}`, `["a"]`} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%q) should fail", data)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(bundlerManifest), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !m.Has("_shared.js") {
		t.Error("Has(_shared.js) = false, want true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/manifest.json"); err == nil {
		t.Error("Load() should return error for missing file")
	}
}

func TestResolver(t *testing.T) {
	m, _ := Parse([]byte(bundlerManifest))
	r := NewResolver(m, "/")

	if got := r.Asset("src/main.ts"); got != "/assets/main.a1b2.js" {
		t.Errorf("Asset() = %q", got)
	}
	if got := r.Asset("favicon.svg"); got != "/favicon.svg" {
		t.Errorf("Asset(favicon.svg) = %q, want /favicon.svg", got)
	}
	if got := r.Styles("src/main.ts"); len(got) != 1 || got[0] != "/assets/main.c3d4.css" {
		t.Errorf("Styles() = %v", got)
	}
}

func TestPassthroughResolver(t *testing.T) {
	r := NewPassthroughResolver("/")

	tests := []struct {
		source   string
		expected string
	}{
		{"src/main.ts", "/src/main.ts"},
		{"images/logo.png", "/images/logo.png"},
	}
	for _, tt := range tests {
		if got := r.Asset(tt.source); got != tt.expected {
			t.Errorf("Asset(%q) = %q, want %q", tt.source, got, tt.expected)
		}
	}
	if got := r.Styles("src/main.ts"); got != nil {
		t.Errorf("Styles() = %v, want nil", got)
	}
}
