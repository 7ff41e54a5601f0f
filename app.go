package movieflair

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/movieflair/movieflair/internal/dev"
)

// Well-known paths.
const (
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
	SitemapPath = "/sitemap.xml"
)

// Options configures an App.
type Options struct {
	// Pages serves every request that is not a static file or a fixed
	// endpoint. Required.
	Pages http.Handler

	// Sitemap serves /sitemap.xml. Nil leaves the path to Pages.
	Sitemap http.Handler

	// Metrics serves /metrics. Nil disables the endpoint.
	Metrics http.Handler

	// Reload is the development live-reload socket. Nil in production.
	Reload http.Handler

	// Static configures static file serving.
	Static StaticOptions

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// App is the server's http.Handler.
type App struct {
	router chi.Router
	static *staticFiles
	pages  http.Handler
	logger *slog.Logger
}

// New creates an App.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		static: newStaticFiles(opts.Static),
		pages:  opts.Pages,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)

	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, MetricsPath, opts.Metrics)
	}
	if opts.Sitemap != nil {
		r.Method(http.MethodGet, SitemapPath, opts.Sitemap)
		r.Method(http.MethodHead, SitemapPath, opts.Sitemap)
	}
	if opts.Reload != nil {
		r.Method(http.MethodGet, dev.ReloadPath, opts.Reload)
	}
	r.HandleFunc("/*", a.serve)

	a.router = r
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// serve handles everything without a fixed route: static files first,
// then pages.
func (a *App) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if a.static.serve(w, r) {
		return
	}
	if a.pages == nil {
		http.NotFound(w, r)
		return
	}
	a.pages.ServeHTTP(w, r)
}

// logRequests logs one line per request. The dev reload socket is skipped
// since it stays open for the life of the page.
func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == dev.ReloadPath {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		a.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
