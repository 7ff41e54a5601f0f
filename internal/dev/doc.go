// Package dev provides the development mode module loader and live reload.
//
// This package implements:
//   - Loader: a registry of entry modules that rebuilds an entry after
//     invalidation, adds the live-reload client to the shell, and rewrites
//     stack traces to point at source files
//   - Watcher: fsnotify-based monitoring of the shell, templates, and
//     static assets
//   - ReloadServer: notifies browsers of changes via WebSocket
//
// Go code changes still need a process restart; the loader picks up
// everything its module factories read at build time, such as the shell
// and content files.
//
// # Usage
//
//	loader := dev.NewLoader(root, logger)
//	loader.Register("site", site.Module)
//
//	reload := dev.NewReloadServer(logger)
//	watcher := dev.NewWatcher(dev.WatcherConfig{Paths: dev.CollectWatchPaths(cfg)})
//	dev.LiveReload(watcher, loader, reload)
//	go watcher.Start(ctx)
//
// # Live Reload Protocol
//
// The browser connects to /_movieflair/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload", "version": 3}  // Triggers full page reload
//	{"type": "css", "file": "a.css"}  // Triggers stylesheet reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
