// Package assets resolves fingerprinted client build files.
//
// The client build writes a manifest mapping source entries to the files it
// emitted. Two layouts are accepted. The flat form maps names to files:
//
//	{"main.js": "main.a1b2c3d4.js", "styles.css": "styles.e5f6g7h8.css"}
//
// The bundler form maps entries to chunks, with the stylesheets each chunk
// imports:
//
//	{"src/main.ts": {"file": "assets/main.a1b2c3d4.js", "css": ["assets/main.e5f6.css"], "isEntry": true}}
//
// Pages reference assets by source name and render the resolved URL:
//
//	manifest, _ := assets.Load("dist/client/.vite/manifest.json")
//	resolver := assets.NewResolver(manifest, "/")
//	resolver.Asset("src/main.ts") // "/assets/main.a1b2c3d4.js"
package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
)

// Chunk is one emitted file and the stylesheets it pulls in.
type Chunk struct {
	File    string   `json:"file"`
	CSS     []string `json:"css,omitempty"`
	IsEntry bool     `json:"isEntry,omitempty"`
}

// Manifest maps source names to emitted chunks. It is safe for concurrent
// use.
type Manifest struct {
	mu     sync.RWMutex
	chunks map[string]Chunk
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{chunks: make(map[string]Chunk)}
}

// Load reads a manifest file in either layout.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a manifest in either layout.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	m := NewManifest()
	for name, value := range raw {
		var file string
		if err := json.Unmarshal(value, &file); err == nil {
			m.chunks[name] = Chunk{File: file}
			continue
		}
		var chunk Chunk
		if err := json.Unmarshal(value, &chunk); err != nil {
			return nil, fmt.Errorf("parse manifest entry %q: %w", name, err)
		}
		m.chunks[name] = chunk
	}
	return m, nil
}

// Resolve returns the emitted file for source, or source unchanged when
// the manifest has no entry for it.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.chunks[source]; ok && c.File != "" {
		return c.File
	}
	return source
}

// Styles returns the stylesheets imported by source.
func (m *Manifest) Styles(source string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.chunks[source].CSS)
}

// Has reports whether the manifest has an entry for source.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[source]
	return ok
}

// Set adds or replaces an entry.
func (m *Manifest) Set(source string, c Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[source] = c
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Entries returns the sorted source names of all entry chunks.
func (m *Manifest) Entries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name, c := range m.chunks {
		if c.IsEntry {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
