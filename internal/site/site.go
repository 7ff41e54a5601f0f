// Package site is the application tree rendered by the server: a small set
// of MovieFlair pages that declare their head metadata and stream their
// markup.
package site

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/movieflair/movieflair/pkg/assets"
	"github.com/movieflair/movieflair/pkg/head"
	"github.com/movieflair/movieflair/pkg/render"
)

// ModulePath is the name the entry is registered under in the dev loader.
const ModulePath = "site"

// DefaultEntryScript is the client entry in the asset manifest.
const DefaultEntryScript = "src/main.tsx"

// Options configures the tree.
type Options struct {
	// BaseURL is the public origin used for canonical links.
	BaseURL string

	// Assets resolves client build files. Nil serves sources from "/".
	Assets assets.Resolver

	// EntryScript is the client entry source name.
	EntryScript string
}

// New returns the render entry for the site.
func New(opts Options) render.Entry {
	if opts.Assets == nil {
		opts.Assets = assets.NewPassthroughResolver("/")
	}
	if opts.EntryScript == "" {
		opts.EntryScript = DefaultEntryScript
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return func(ctx context.Context) templ.Component {
		loc, ok := render.LocationFromContext(ctx)
		if !ok {
			loc = render.ParseLocation("/")
		}
		return layout(opts, loc, route(loc.Path))
	}
}

// Module returns a dev loader factory for the site.
func Module(opts Options) func() (render.Entry, error) {
	return func() (render.Entry, error) {
		return New(opts), nil
	}
}

func layout(opts Options, loc render.Location, p page) templ.Component {
	parts := []templ.Component{
		head.Title(p.title),
		head.Description(p.description),
		head.Meta(head.MetaTag{Property: "og:title", Content: p.title}),
		head.Meta(head.MetaTag{Property: "og:type", Content: p.ogType}),
		head.Link(head.LinkTag{Rel: "canonical", Href: opts.BaseURL + loc.Path}),
	}
	if p.noIndex {
		parts = append(parts, head.Meta(head.MetaTag{Name: "robots", Content: "noindex"}))
	}
	for _, css := range opts.Assets.Styles(opts.EntryScript) {
		parts = append(parts, head.Link(head.LinkTag{Rel: "stylesheet", Href: css}))
	}
	parts = append(parts,
		head.Script(head.ScriptTag{Src: opts.Assets.Asset(opts.EntryScript), Module: true}),
		navigation(loc.Path),
		render.Boundary(),
		p.body,
		footer(),
	)
	return templ.Join(parts...)
}
