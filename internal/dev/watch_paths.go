package dev

import (
	"path/filepath"

	"github.com/movieflair/movieflair/internal/config"
)

// CollectWatchPaths returns a normalized list of watch paths for the project.
func CollectWatchPaths(cfg *config.Config) []string {
	projectDir := cfg.Dir()
	paths := []string{
		cfg.DevShellPath(),
		cfg.PublicPath(),
	}
	for _, path := range cfg.Dev.Watch {
		paths = append(paths, resolvePath(projectDir, path))
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}

// LiveReload connects a watcher to the loader and the reload server:
// stylesheet edits are pushed to the browser directly, every other change
// invalidates the loaded modules and reloads the page.
func LiveReload(w *Watcher, l *Loader, rs *ReloadServer) {
	w.OnChange(func(c Change) {
		l.logger.Info("file changed", "path", c.Path, "type", c.Type)
		if c.Type == ChangeCSS {
			rs.NotifyCSS(filepath.Base(c.Path))
			return
		}
		rs.NotifyReload(l.Invalidate())
	})
}
