package movieflair

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// StaticOptions configures static file serving.
type StaticOptions struct {
	// Dir is the directory files are served from. Empty disables static
	// serving.
	Dir string

	// Prefix is the URL prefix of static files (default "/").
	Prefix string

	// Hidden lists files under Dir that are never served, relative to Dir.
	// The shell template belongs here: it must only reach clients through
	// the dispatcher.
	Hidden []string

	// Immutable enables long-lived caching of fingerprinted files. Off in
	// development.
	Immutable bool
}

type staticFiles struct {
	fs        http.FileSystem
	prefix    string
	hidden    map[string]struct{}
	immutable bool
}

func newStaticFiles(opts StaticOptions) *staticFiles {
	s := &staticFiles{
		prefix:    opts.Prefix,
		hidden:    make(map[string]struct{}, len(opts.Hidden)),
		immutable: opts.Immutable,
	}
	if opts.Dir != "" {
		s.fs = http.Dir(opts.Dir)
	}
	if s.prefix == "" {
		s.prefix = "/"
	}
	if !strings.HasSuffix(s.prefix, "/") {
		s.prefix += "/"
	}
	for _, name := range opts.Hidden {
		s.hidden[path.Clean(filepath.ToSlash(name))] = struct{}{}
	}
	return s
}

// serve writes the file for r if there is one and reports whether it did.
func (s *staticFiles) serve(w http.ResponseWriter, r *http.Request) bool {
	rel, ok := s.relPath(r.URL.Path)
	if !ok {
		return false
	}

	f, err := s.fs.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	w.Header().Set("Cache-Control", s.cacheControl(rel))
	http.ServeContent(w, r, rel, info.ModTime(), f)
	return true
}

// relPath returns a sanitized path inside the static directory. It rejects
// traversal and absolute-path tricks so requests cannot escape the
// directory.
func (s *staticFiles) relPath(urlPath string) (string, bool) {
	if s.fs == nil || !strings.HasPrefix(urlPath, s.prefix) {
		return "", false
	}

	rel := strings.TrimPrefix(urlPath, s.prefix)
	if rel == "" {
		return "", false
	}

	// NUL can appear via %00.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}

	// "/static//etc/passwd" leaves "/etc/passwd".
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Dot segments are rejected before cleaning, which would otherwise
	// change the meaning of the path.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	if _, hidden := s.hidden[clean]; hidden {
		return "", false
	}
	// Build metadata such as .vite/manifest.json is not public.
	if strings.HasPrefix(clean, ".") || strings.Contains(clean, "/.") {
		return "", false
	}

	return clean, true
}

func (s *staticFiles) cacheControl(rel string) string {
	switch {
	case !s.immutable:
		return "no-cache"
	case isFingerprinted(rel):
		return "public, max-age=31536000, immutable"
	default:
		return "public, max-age=3600, must-revalidate"
	}
}

// isFingerprinted reports whether the file name carries a content hash,
// either as a dotted hex segment ("app.a1b2c3d4.css") or as a bundler
// suffix ("main-BxY12abc.js").
func isFingerprinted(filePath string) bool {
	base := path.Base(filePath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" || stem == "" {
		return false
	}

	if i := strings.LastIndexByte(stem, '.'); i >= 0 {
		if hash := stem[i+1:]; len(hash) >= 8 && isHex(hash) {
			return true
		}
	}
	if i := strings.LastIndexByte(stem, '-'); i > 0 {
		hash := stem[i+1:]
		return len(hash) == 8 && isHashAlphabet(hash) && strings.ContainsAny(hash, "0123456789")
	}
	return false
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func isHashAlphabet(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_') {
			return false
		}
	}
	return true
}
