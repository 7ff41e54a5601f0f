package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/movieflair/movieflair/internal/catalog"
)

// Namespace is the sitemap protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// EntrySource lists the catalog pages to include.
type EntrySource interface {
	ListEntries(ctx context.Context) ([]catalog.Entry, error)
}

// URL is one <url> element.
type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Builder generates the sitemap from fixed routes and the catalog.
type Builder struct {
	// BaseURL is the public origin, such as "https://www.movieflair.de".
	BaseURL string

	// StaticRoutes are listed first, in order.
	StaticRoutes []string

	// Source provides catalog pages. Nil lists static routes only.
	Source EntrySource
}

// Generate implements Generator.
func (b *Builder) Generate(ctx context.Context) ([]byte, error) {
	base := strings.TrimRight(b.BaseURL, "/")
	set := urlset{Xmlns: Namespace}

	for _, route := range b.StaticRoutes {
		priority := 0.8
		if route == "/" {
			priority = 1.0
		}
		set.URLs = append(set.URLs, URL{
			Loc:        base + route,
			ChangeFreq: "daily",
			Priority:   priority,
		})
	}

	if b.Source != nil {
		entries, err := b.Source.ListEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("list catalog: %w", err)
		}
		for _, e := range entries {
			path, ok := EntryPath(e)
			if !ok {
				continue
			}
			u := URL{Loc: base + path, ChangeFreq: "weekly", Priority: 0.6}
			if e.Kind != catalog.KindListe {
				u.Priority = 0.7
			}
			if !e.UpdatedAt.IsZero() {
				u.LastMod = e.UpdatedAt.UTC().Format(time.DateOnly)
			}
			set.URLs = append(set.URLs, u)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return buf.Bytes(), nil
}

// EntryPath returns the site path of a catalog entry. Entries without the
// fields their route needs are skipped.
func EntryPath(e catalog.Entry) (string, bool) {
	slug := url.PathEscape(e.Slug)
	id := url.PathEscape(e.ID)
	switch e.Kind {
	case catalog.KindFilm, catalog.KindSerie:
		if id == "" || slug == "" {
			return "", false
		}
		return "/" + string(e.Kind) + "/" + id + "/" + slug, true
	case catalog.KindListe:
		if slug == "" {
			return "", false
		}
		return "/liste/" + slug, true
	default:
		return "", false
	}
}
