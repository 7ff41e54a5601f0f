// Package resolve produces the shell template and the entry point used to
// render one request.
//
// Two resolvers exist and the mode is fixed at startup:
//
//   - Dev reads the shell on every request, runs it through the dev
//     loader's HTML transform, and loads the entry module through the loader
//     so edits are picked up without a restart.
//   - Prod reads the prebuilt shell and uses an entry registered at startup.
//
// Neither resolver ever substitutes a synthetic shell: an unreadable shell
// is an error wrapping ErrShellUnavailable.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/movieflair/movieflair/pkg/render"
)

var (
	// ErrShellUnavailable is wrapped by errors reading the shell template.
	ErrShellUnavailable = errors.New("resolve: shell template unavailable")

	// ErrEntryUnavailable is wrapped by errors obtaining the entry point.
	ErrEntryUnavailable = errors.New("resolve: entry point unavailable")
)

// Resolver returns the bundle to render for url.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*render.Bundle, error)
}

// Mode selects the resolver.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode parses a mode name. "dev" and "prod" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return ModeDevelopment, nil
	case "production", "prod":
		return ModeProduction, nil
	default:
		return "", fmt.Errorf("resolve: unknown mode %q", s)
	}
}

// IsDevelopment reports whether m is development mode.
func (m Mode) IsDevelopment() bool {
	return m == ModeDevelopment
}

// DevLoader is the development module loader.
type DevLoader interface {
	// LoadModule returns the current entry point registered at path.
	LoadModule(ctx context.Context, path string) (render.Entry, error)

	// TransformHTML prepares the raw shell for development, such as adding
	// the live-reload client.
	TransformHTML(ctx context.Context, url, html string) (string, error)

	// FixStacktrace rewrites err so stack traces point at source files.
	FixStacktrace(err error) error
}

// Dev resolves bundles through a DevLoader.
type Dev struct {
	Shell       ShellSource
	Loader      DevLoader
	EntryModule string
}

// Resolve implements Resolver.
func (d *Dev) Resolve(ctx context.Context, url string) (*render.Bundle, error) {
	raw, err := d.Shell.ReadShell(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShellUnavailable, err)
	}

	html, err := d.Loader.TransformHTML(ctx, url, raw)
	if err != nil {
		return nil, d.Loader.FixStacktrace(fmt.Errorf("transform shell: %w", err))
	}

	entry, err := d.Loader.LoadModule(ctx, d.EntryModule)
	if err != nil {
		return nil, d.Loader.FixStacktrace(fmt.Errorf("%w: load %s: %w", ErrEntryUnavailable, d.EntryModule, err))
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: module %s has no render function", ErrEntryUnavailable, d.EntryModule)
	}

	return &render.Bundle{HTML: html, Entry: entry}, nil
}

// Prod resolves bundles from the prebuilt shell and a fixed entry.
type Prod struct {
	Shell ShellSource
	Entry render.Entry
}

// Resolve implements Resolver.
func (p *Prod) Resolve(ctx context.Context, _ string) (*render.Bundle, error) {
	if p.Entry == nil {
		return nil, fmt.Errorf("%w: no entry registered", ErrEntryUnavailable)
	}
	html, err := p.Shell.ReadShell(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShellUnavailable, err)
	}
	return &render.Bundle{HTML: html, Entry: p.Entry}, nil
}
