package dev

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/movieflair/movieflair/pkg/render"
)

// ErrModuleNotFound is returned by LoadModule for an unregistered path.
var ErrModuleNotFound = errors.New("dev: module not registered")

// Factory builds a module's entry point. It runs again after every
// invalidation, so it may reread content from disk.
type Factory func() (render.Entry, error)

// LoadError is a failed module load.
type LoadError struct {
	Module string
	Err    error

	// Stack is set when the factory panicked.
	Stack string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load module %s: %v", e.Module, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type loaded struct {
	entry   render.Entry
	version uint64
}

// Loader is the development module loader. Modules are registered once at
// startup; the file watcher invalidates them on change and the next request
// rebuilds the entry.
//
// Loader implements resolve.DevLoader.
type Loader struct {
	root   string
	logger *slog.Logger

	mu      sync.Mutex
	modules map[string]Factory
	cache   map[string]loaded
	version uint64
}

// NewLoader creates a loader. root is the project directory; it is trimmed
// from stack traces.
func NewLoader(root string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		root:    root,
		logger:  logger,
		modules: make(map[string]Factory),
		cache:   make(map[string]loaded),
		version: 1,
	}
}

// Register adds or replaces the module at path.
func (l *Loader) Register(path string, f Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modules[path] = f
	delete(l.cache, path)
}

// Version returns the current module version.
func (l *Loader) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Invalidate drops every loaded module and returns the new version.
func (l *Loader) Invalidate() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.version++
	clear(l.cache)
	l.logger.Debug("modules invalidated", "version", l.version)
	return l.version
}

// LoadModule returns the entry of the module at path, building it if it was
// invalidated since the last load.
func (l *Loader) LoadModule(ctx context.Context, path string) (render.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	factory, ok := l.modules[path]
	cached, hit := l.cache[path]
	version := l.version
	l.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, path)
	}
	if hit && cached.version == version {
		return cached.entry, nil
	}

	entry, err := build(path, factory)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	// A concurrent invalidation wins; the entry is still returned for this
	// request but not cached.
	if l.version == version {
		l.cache[path] = loaded{entry: entry, version: version}
	}
	l.mu.Unlock()

	return entry, nil
}

func build(path string, factory Factory) (entry render.Entry, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &LoadError{Module: path, Err: fmt.Errorf("panic: %v", v), Stack: string(debug.Stack())}
		}
	}()
	entry, err = factory()
	if err != nil {
		return nil, &LoadError{Module: path, Err: err}
	}
	return entry, nil
}

// TransformHTML adds the live-reload client to the shell and tags the
// document with the module version.
func (l *Loader) TransformHTML(ctx context.Context, _ string, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html = tagVersion(html, l.Version())

	if i := strings.LastIndex(strings.ToLower(html), "</body>"); i >= 0 {
		return html[:i] + DevClientScript + html[i:], nil
	}
	return html + DevClientScript, nil
}

// tagVersion sets a data attribute on the first <html> element.
func tagVersion(html string, version uint64) string {
	lower := strings.ToLower(html)
	i := strings.Index(lower, "<html")
	if i < 0 {
		return html
	}
	end := i + len("<html")
	if end < len(html) && html[end] != '>' && html[end] != ' ' && html[end] != '\n' && html[end] != '\t' {
		return html
	}
	attr := ` data-movieflair-version="` + strconv.FormatUint(version, 10) + `"`
	return html[:end] + attr + html[end:]
}
