package dev

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeGo ChangeType = iota
	ChangeCSS
	ChangeAsset
	ChangeTemplate
)

// String returns the change type name for logs.
func (t ChangeType) String() string {
	switch t {
	case ChangeGo:
		return "go"
	case ChangeCSS:
		return "css"
	case ChangeTemplate:
		return "template"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch. Directories are
	// watched recursively.
	Paths []string

	// Ignore patterns to skip (globs).
	Ignore []string

	// Debounce is the quiet period after the last event before changes
	// are reported.
	Debounce time.Duration

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"*_test.go",
	".git",
	"node_modules",
	"dist",
	"tmp",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher reports file changes under the configured paths.
type Watcher struct {
	config   WatcherConfig
	logger   *slog.Logger
	onChange func(Change)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		config: config,
		logger: logger,
	}
}

// OnChange sets the callback for file changes. Within one debounce window
// the callback runs once per change type.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, p := range w.config.Paths {
		w.addRecursive(fsw, p)
	}

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	pending := make(map[string]Change)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if c, ok := w.handleEvent(fsw, event); ok {
				pending[c.Path] = c
				timer.Reset(w.config.Debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-timer.C:
			w.report(pending)
			pending = make(map[string]Change)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// addRecursive watches root and, if it is a directory, every directory
// below it that is not ignored.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) {
	info, err := os.Stat(root)
	if err != nil {
		w.logger.Debug("watch path unavailable", "path", root, "error", err)
		return
	}
	if !info.IsDir() {
		if err := fsw.Add(root); err != nil {
			w.logger.Warn("cannot watch file", "path", root, "error", err)
		}
		return
	}

	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			w.logger.Warn("cannot watch directory", "path", p, "error", err)
		}
		return nil
	})
}

// handleEvent turns an fsnotify event into a Change. New directories are
// added to the watch set.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) (Change, bool) {
	if event.Op == fsnotify.Chmod || w.shouldIgnore(event.Name) {
		return Change{}, false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(fsw, event.Name)
			return Change{}, false
		}
	}
	return Change{Path: event.Name, Type: classifyChange(event.Name)}, true
}

// report runs the callback for the first change of each type.
func (w *Watcher) report(pending map[string]Change) {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	if callback == nil || len(pending) == 0 {
		return
	}

	reported := make(map[ChangeType]bool)
	for _, change := range pending {
		if !reported[change.Type] {
			reported[change.Type] = true
			callback(change)
		}
	}
}

// shouldIgnore checks if a path should be ignored. Patterns only see the
// part of the path below the watch root, so a project checked out under
// /tmp or a dist directory still reports changes.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	rel := w.relativeToRoot(fullPath)
	name := filepath.Base(rel)
	normalized := filepath.ToSlash(rel)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		// Direct match
		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else {
				if matched, _ := filepath.Match(pattern, name); matched {
					return true
				}
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

// relativeToRoot returns p relative to the deepest watch root containing
// it. A watched file, or a path outside every root, yields its base name.
func (w *Watcher) relativeToRoot(p string) string {
	best, bestLen := "", -1
	for _, root := range w.config.Paths {
		root = filepath.Clean(root)
		rel, err := filepath.Rel(root, filepath.Clean(p))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > bestLen {
			best, bestLen = rel, len(root)
		}
	}
	if best == "" || best == "." {
		return filepath.Base(p)
	}
	return best
}

func pathHasSegment(path, segment string) bool {
	if segment == "" {
		return false
	}
	parts := splitPathSegments(path)
	for _, part := range parts {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}

// classifyChange determines the type of change based on file extension.
func classifyChange(path string) ChangeType {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".go":
		return ChangeGo
	case ".css", ".scss", ".sass", ".less":
		return ChangeCSS
	case ".templ", ".html", ".tmpl":
		return ChangeTemplate
	default:
		return ChangeAsset
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
