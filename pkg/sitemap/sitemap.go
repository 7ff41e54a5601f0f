// Package sitemap serves /sitemap.xml.
//
// The handler always answers with well-formed sitemap XML: when generation
// fails or panics it returns 500 with an empty urlset instead of an error
// page, so crawlers and SEO tooling never see HTML where they expect XML.
package sitemap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// ContentType is the content type of every sitemap response.
const ContentType = "application/xml; charset=utf-8"

// MaxAge is how long clients and proxies may cache a sitemap.
const MaxAge = 24 * time.Hour

// EmptyDocument is the fallback body served on failure.
const EmptyDocument = `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`

// Generator produces a complete sitemap document.
type Generator interface {
	Generate(ctx context.Context) ([]byte, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context) ([]byte, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// strippedHeaders must not reach the client on a sitemap response.
var strippedHeaders = []string{"X-Powered-By", "Connection", "Keep-Alive", "Transfer-Encoding"}

// Handler serves the document produced by gen. A nil logger uses
// slog.Default().
func Handler(gen Generator, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, name := range strippedHeaders {
			h.Del(name)
		}
		h.Set("Content-Type", ContentType)

		body, err := safeGenerate(r.Context(), gen)
		if err != nil {
			logger.Error("sitemap generation failed", "error", err)
			h.Set("Cache-Control", "no-store")
			h.Set("Content-Length", strconv.Itoa(len(EmptyDocument)))
			w.WriteHeader(http.StatusInternalServerError)
			if r.Method != http.MethodHead {
				writeBody(w, []byte(EmptyDocument), logger)
			}
			return
		}

		h.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(MaxAge.Seconds())))
		h.Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			writeBody(w, body, logger)
		}
	})
}

func writeBody(w http.ResponseWriter, body []byte, logger *slog.Logger) {
	if _, err := w.Write(body); err != nil {
		logger.Debug("sitemap write failed", "error", err)
	}
}

// safeGenerate runs gen, converting a panic into an error.
func safeGenerate(ctx context.Context, gen Generator) (body []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("sitemap generator panicked: %v", v)
		}
	}()
	if gen == nil {
		return nil, fmt.Errorf("no sitemap generator configured")
	}
	return gen.Generate(ctx)
}
