package head

import (
	"context"
	"strings"
	"sync"
)

// Fields is the rendered head metadata, one HTML fragment per tag kind.
// A kind that was never declared is the empty string.
type Fields struct {
	Title  string
	Meta   string
	Link   string
	Script string
}

// String concatenates the fragments in injection order.
func (f Fields) String() string {
	return f.Title + f.Meta + f.Link + f.Script
}

// Collector accumulates head metadata declared during one render.
// It is safe for concurrent use; a nil *Collector ignores writes and
// reports empty Fields.
type Collector struct {
	mu       sync.Mutex
	title    string
	hasTitle bool
	meta     []MetaTag
	links    []LinkTag
	scripts  []ScriptTag
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetTitle sets the page title. The last declaration wins, so nested
// components can refine the title of their layout.
func (c *Collector) SetTitle(title string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	c.hasTitle = true
}

// AddMeta records a meta tag. A later tag with the same name or property
// replaces the earlier one.
func (c *Collector) AddMeta(m MetaTag) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.meta {
		if (m.Name != "" && existing.Name == m.Name) || (m.Property != "" && existing.Property == m.Property) {
			c.meta[i] = m
			return
		}
	}
	c.meta = append(c.meta, m)
}

// AddLink records a link tag.
func (c *Collector) AddLink(l LinkTag) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, l)
}

// AddScript records a script tag.
func (c *Collector) AddScript(s ScriptTag) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts = append(c.scripts, s)
}

// Fields renders everything collected so far.
func (c *Collector) Fields() Fields {
	if c == nil {
		return Fields{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var f Fields
	if c.hasTitle {
		f.Title = titleElement(c.title)
	}
	f.Meta = joinTags(c.meta)
	f.Link = joinTags(c.links)
	f.Script = joinTags(c.scripts)
	return f
}

func joinTags[T interface{ String() string }](tags []T) string {
	if len(tags) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tags {
		b.WriteString(t.String())
	}
	return b.String()
}

type collectorKey struct{}

// WithCollector returns a context that carries c.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

// FromContext returns the collector carried by ctx, or nil.
func FromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}
