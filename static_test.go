package movieflair

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
	return path
}

// pageStub answers every page request with "page".
var pageStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("page"))
})

func newStaticApp(static StaticOptions) *App {
	return New(Options{Pages: pageStub, Static: static, Logger: discardLogger()})
}

func get(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, "http://example.com"+target, nil))
	return rr
}

func TestStaticServing_PrefixHandling(t *testing.T) {
	publicDir := filepath.Join(t.TempDir(), "public")
	writeFile(t, publicDir, "app.js", "ok")

	app := newStaticApp(StaticOptions{Dir: publicDir, Prefix: "/static"})

	rr := get(app, http.MethodGet, "/static/app.js")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("GET /static/app.js = %d %q, want 200 ok", rr.Code, rr.Body.String())
	}

	rr = get(app, http.MethodGet, "/app.js")
	if rr.Body.String() != "page" {
		t.Fatalf("GET /app.js body = %q, want the page handler", rr.Body.String())
	}
}

func TestStaticServing_HeadAndMethods(t *testing.T) {
	publicDir := filepath.Join(t.TempDir(), "public")
	writeFile(t, publicDir, "app.js", "ok")

	app := newStaticApp(StaticOptions{Dir: publicDir})

	rr := get(app, http.MethodPost, "/app.js")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /app.js status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
	if got := rr.Header().Get("Allow"); got != "GET, HEAD" {
		t.Fatalf("Allow = %q", got)
	}

	rr = get(app, http.MethodHead, "/app.js")
	if rr.Code != http.StatusOK {
		t.Fatalf("HEAD /app.js status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("HEAD /app.js wrote a body")
	}
}

func TestStaticServing_BlocksDirectoryTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	publicDir := filepath.Join(tmpDir, "public")
	writeFile(t, publicDir, "ok.txt", "ok")
	writeFile(t, tmpDir, "secret.txt", "secret")

	app := newStaticApp(StaticOptions{Dir: publicDir, Prefix: "/"})

	if rr := get(app, http.MethodGet, "/ok.txt"); rr.Body.String() != "ok" {
		t.Fatalf("GET /ok.txt body = %q, want ok", rr.Body.String())
	}

	for _, p := range []string{"/../secret.txt", "/%2e%2e/secret.txt", "/..//secret.txt", "/./ok.txt"} {
		rr := get(app, http.MethodGet, p)
		if strings.Contains(rr.Body.String(), "secret") {
			t.Fatalf("GET %s unexpectedly served secret content", p)
		}
		if rr.Body.String() != "page" {
			t.Fatalf("GET %s body = %q, want the page handler", p, rr.Body.String())
		}
	}
}

func TestStaticServing_BlocksAbsolutePathEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("absolute-path escape is OS-specific on Windows")
	}

	tmpDir := t.TempDir()
	publicDir := filepath.Join(tmpDir, "public")
	writeFile(t, publicDir, "ok.txt", "ok")
	secret := writeFile(t, tmpDir, "abs-secret.txt", "abs-secret")

	app := newStaticApp(StaticOptions{Dir: publicDir, Prefix: "/static"})

	rr := get(app, http.MethodGet, "/static/"+filepath.ToSlash(secret))
	if strings.Contains(rr.Body.String(), "abs-secret") {
		t.Fatalf("unexpectedly served absolute-path content from %q", secret)
	}
}

func TestStaticServing_HiddenFiles(t *testing.T) {
	distDir := t.TempDir()
	writeFile(t, distDir, "index.html", "<!--app-head--><!--app-html-->")
	writeFile(t, distDir, ".vite/manifest.json", "{}")
	writeFile(t, distDir, "assets/main-BxY12abc.js", "js")

	app := newStaticApp(StaticOptions{Dir: distDir, Hidden: []string{"index.html"}, Immutable: true})

	for _, p := range []string{"/index.html", "/.vite/manifest.json"} {
		if rr := get(app, http.MethodGet, p); rr.Body.String() != "page" {
			t.Errorf("GET %s body = %q, want the page handler", p, rr.Body.String())
		}
	}
	if rr := get(app, http.MethodGet, "/assets/main-BxY12abc.js"); rr.Body.String() != "js" {
		t.Errorf("GET asset body = %q, want js", rr.Body.String())
	}
}

func TestStaticServing_CacheHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "assets/main-BxY12abc.js", "js")
	writeFile(t, dir, "app.a1b2c3d4.css", "css")
	writeFile(t, dir, "robots.txt", "txt")

	prod := newStaticApp(StaticOptions{Dir: dir, Immutable: true})
	tests := []struct {
		path string
		want string
	}{
		{"/assets/main-BxY12abc.js", "public, max-age=31536000, immutable"},
		{"/app.a1b2c3d4.css", "public, max-age=31536000, immutable"},
		{"/robots.txt", "public, max-age=3600, must-revalidate"},
	}
	for _, tt := range tests {
		if got := get(prod, http.MethodGet, tt.path).Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("GET %s Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
	}

	devApp := newStaticApp(StaticOptions{Dir: dir})
	if got := get(devApp, http.MethodGet, "/app.a1b2c3d4.css").Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("development Cache-Control = %q, want no-cache", got)
	}
}

func TestIsFingerprinted(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"app.a1b2c3d4.css", true},
		{"assets/main-BxY12abc.js", true},
		{"assets/index-Dk_3xYz9.css", true},
		{"app.css", false},
		{"app.min.css", false},
		{"my-component.js", false},
		{"video-trailer.mp4", false},
		{"foo-abcdefgh.js", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := isFingerprinted(tt.path); got != tt.want {
			t.Errorf("isFingerprinted(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
