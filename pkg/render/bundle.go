package render

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/movieflair/movieflair/pkg/head"
)

// Template markers. They are part of the shell file format and must match
// byte for byte.
const (
	HeadMarker = "<!--app-head-->"
	BodyMarker = "<!--app-html-->"
)

// ContentTypeHTML is the content type of every rendered document.
const ContentTypeHTML = "text/html; charset=utf-8"

// Entry is the application render entry point. It is called once per render
// with a context carrying the request Location and the head collector, and
// returns the tree to render.
type Entry func(ctx context.Context) templ.Component

// Bundle is the shell template and the entry point resolved for one request.
type Bundle struct {
	HTML  string
	Entry Entry
}

// HasMarkers reports whether the shell contains both injection markers.
func (b *Bundle) HasMarkers() bool {
	return b != nil && strings.Contains(b.HTML, HeadMarker) && strings.Contains(b.HTML, BodyMarker)
}

// InjectHead replaces the first head marker in html with the collected
// head metadata. Without a marker html is returned unchanged.
func InjectHead(html string, f head.Fields) string {
	return strings.Replace(html, HeadMarker, f.String(), 1)
}

// SplitBody splits html around the first body marker. Without a marker the
// whole document is returned as before and found is false.
func SplitBody(html string) (before, after string, found bool) {
	return strings.Cut(html, BodyMarker)
}

// splitShell returns the document part written before the body, with the
// head injected, and the tail written after it. The raw template is split
// first so head content can never act as the body marker.
func splitShell(html string, f head.Fields) (before, after string) {
	before, after, _ = SplitBody(html)
	return InjectHead(before, f), after
}
