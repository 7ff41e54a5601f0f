package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/movieflair/movieflair/pkg/head"
)

// Config configures a Renderer.
type Config struct {
	// FixStacktrace rewrites a render error before it is returned.
	// Development mode sets it to the dev loader's stack correction so
	// traces point at source files rather than generated code.
	FixStacktrace func(error) error

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Renderer streams server-side renders. It holds no per-request state and
// is safe for concurrent use.
type Renderer struct {
	fixStack func(error) error
	logger   *slog.Logger
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		fixStack: cfg.FixStacktrace,
		logger:   logger,
	}
}

// Render renders b for url and streams the document to w.
//
// On success the response is 200 with the head-injected template prefix,
// the rendered body, and the template tail, in that order. On failure the
// returned error is a *Error; if its HeadersSent is false nothing was
// written to w.
func (r *Renderer) Render(ctx context.Context, w http.ResponseWriter, url string, b *Bundle) error {
	if b == nil || b.Entry == nil {
		return r.fail(&Error{URL: url, Err: ErrNoEntry})
	}
	if !b.HasMarkers() {
		r.logger.Warn("shell template is missing an injection marker",
			"url", url,
			"head_marker", HeadMarker,
			"body_marker", BodyMarker,
		)
	}

	collector := head.NewCollector()
	sw := newStreamWriter(ctx, w)

	var tail string
	sw.onReady = func() error {
		var before string
		before, tail = splitShell(b.HTML, collector.Fields())

		w.Header().Set("Content-Type", ContentTypeHTML)
		w.WriteHeader(http.StatusOK)
		sw.headersSent = true

		_, err := io.WriteString(w, before)
		return err
	}

	renderCtx := WithLocation(ctx, ParseLocation(url))
	renderCtx = head.WithCollector(renderCtx, collector)
	renderCtx = withStream(renderCtx, sw)

	stack, err := renderTree(renderCtx, b.Entry, sw)
	if err == nil {
		err = sw.shellReady()
	}
	if err == nil {
		_, err = sw.Write([]byte(tail))
		sw.flush()
	}
	if err != nil {
		return r.fail(&Error{
			URL:         url,
			Err:         err,
			Stack:       stack,
			HeadersSent: sw.headersSent,
		})
	}
	return nil
}

// fail applies the stack correction hook, if any.
func (r *Renderer) fail(err *Error) error {
	if r.fixStack == nil {
		return err
	}
	return r.fixStack(err)
}

// renderTree calls the entry and renders its tree into w, converting a
// panic anywhere in the tree into an error with the captured stack.
func renderTree(ctx context.Context, entry Entry, w io.Writer) (stack string, err error) {
	defer func() {
		if v := recover(); v != nil {
			stack = string(debug.Stack())
			err = &PanicError{Value: v}
		}
	}()

	tree := entry(ctx)
	if tree == nil {
		return "", errors.New("entry returned no component")
	}
	return "", tree.Render(ctx, w)
}
