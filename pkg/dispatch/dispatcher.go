package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/movieflair/movieflair/pkg/classify"
	"github.com/movieflair/movieflair/pkg/render"
	"github.com/movieflair/movieflair/pkg/resolve"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRenderTimeout bounds the resolve and render stages of one request.
const DefaultRenderTimeout = 10 * time.Second

// Stage names a pipeline stage in errors, metrics, and spans.
type Stage string

const (
	StageShell   Stage = "shell"
	StageResolve Stage = "resolve"
	StageRender  Stage = "render"
)

// Error is a failed dispatch. It wraps the stage error unchanged so
// errors.Is and errors.As see through it.
type Error struct {
	Stage    Stage
	RenderID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorHandler reports a failed request. It is the single error exit of
// the pipeline; render.HeadersSent(err) tells whether a response was
// already started.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Config configures a Dispatcher.
type Config struct {
	// Classifier decides how each request is served. Required.
	Classifier *classify.Classifier

	// Shell is served unmodified to ClientOnly requests. Required.
	Shell resolve.ShellSource

	// Resolver supplies the bundle for server renders. Required.
	Resolver resolve.Resolver

	// Renderer streams server renders. Required.
	Renderer *render.Renderer

	// ErrorHandler receives every pipeline failure. If nil, failures are
	// logged and answered with a bare 500 when nothing was written yet.
	ErrorHandler ErrorHandler

	// RenderTimeout bounds resolve and render. Zero uses
	// DefaultRenderTimeout.
	RenderTimeout time.Duration

	// Registry registers the dispatch metrics. Nil disables metrics.
	Registry prometheus.Registerer

	// TracerProvider supplies the tracer. If nil, the global provider is
	// used.
	TracerProvider trace.TracerProvider

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Dispatcher is the http.Handler for page requests.
type Dispatcher struct {
	classifier *classify.Classifier
	shell      resolve.ShellSource
	resolver   resolve.Resolver
	renderer   *render.Renderer
	onError    ErrorHandler
	timeout    time.Duration
	metrics    *metrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// New creates a Dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	switch {
	case cfg.Classifier == nil:
		return nil, fmt.Errorf("dispatch: classifier is required")
	case cfg.Shell == nil:
		return nil, fmt.Errorf("dispatch: shell source is required")
	case cfg.Resolver == nil:
		return nil, fmt.Errorf("dispatch: resolver is required")
	case cfg.Renderer == nil:
		return nil, fmt.Errorf("dispatch: renderer is required")
	}

	d := &Dispatcher{
		classifier: cfg.Classifier,
		shell:      cfg.Shell,
		resolver:   cfg.Resolver,
		renderer:   cfg.Renderer,
		onError:    cfg.ErrorHandler,
		timeout:    cfg.RenderTimeout,
		tracer:     newTracer(cfg.TracerProvider),
		logger:     cfg.Logger,
	}
	if d.timeout <= 0 {
		d.timeout = DefaultRenderTimeout
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if cfg.Registry != nil {
		d.metrics = newMetrics(cfg.Registry)
	}
	if d.onError == nil {
		d.onError = d.fallbackError
	}
	return d, nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	renderID := uuid.NewString()
	ctx, span := d.tracer.Start(r.Context(), spanDispatch,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("movieflair.path", r.URL.Path),
			attribute.String("movieflair.render_id", renderID),
		),
	)
	defer span.End()
	r = r.WithContext(ctx)

	result := d.classify(ctx, r)
	span.SetAttributes(attribute.String("movieflair.decision", result.Decision.String()))

	d.logger.Debug("render decision",
		"path", r.URL.Path,
		"decision", result.Decision.String(),
		"automated", result.AutomatedClient,
		"important", result.ImportantRoute,
		"forced", result.Forced,
		"render_id", renderID,
	)

	start := time.Now()
	var err *Error
	if result.Decision == classify.ClientOnly {
		err = d.serveShell(ctx, w, r)
	} else {
		err = d.serverRender(ctx, w, r)
	}
	d.metrics.observe(result.Decision, time.Since(start))

	if err != nil {
		err.RenderID = renderID
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.metrics.recordError(err.Stage, err.Err)
		d.onError(w, r, err)
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (d *Dispatcher) classify(ctx context.Context, r *http.Request) classify.Result {
	_, span := d.tracer.Start(ctx, spanClassify)
	defer span.End()

	result := d.classifier.Classify(classify.RequestFromHTTP(r))
	span.SetAttributes(
		attribute.String("movieflair.decision", result.Decision.String()),
		attribute.Bool("movieflair.automated", result.AutomatedClient),
		attribute.Bool("movieflair.important", result.ImportantRoute),
		attribute.Bool("movieflair.forced", result.Forced),
	)
	return result
}

// serveShell answers with the client shell as is.
func (d *Dispatcher) serveShell(ctx context.Context, w http.ResponseWriter, r *http.Request) *Error {
	html, err := d.shell.ReadShell(ctx)
	if err != nil {
		return &Error{Stage: StageShell, Err: fmt.Errorf("%w: %w", resolve.ErrShellUnavailable, err)}
	}
	d.metrics.shellOnly()

	w.Header().Set("Content-Type", render.ContentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		if _, err := io.WriteString(w, html); err != nil {
			d.logger.Debug("shell write failed", "path", r.URL.Path, "error", err)
		}
	}
	return nil
}

// serverRender resolves the bundle and streams the render.
func (d *Dispatcher) serverRender(ctx context.Context, w http.ResponseWriter, r *http.Request) *Error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	url := r.URL.RequestURI()

	bundle, err := d.resolve(ctx, url)
	if err != nil {
		return &Error{Stage: StageResolve, Err: err}
	}

	rctx, span := d.tracer.Start(ctx, spanRender)
	defer span.End()
	if err := d.renderer.Render(rctx, w, url, bundle); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("movieflair.headers_sent", render.HeadersSent(err)))
		return &Error{Stage: StageRender, Err: err}
	}
	return nil
}

func (d *Dispatcher) resolve(ctx context.Context, url string) (*render.Bundle, error) {
	ctx, span := d.tracer.Start(ctx, spanResolve)
	defer span.End()

	bundle, err := d.resolver.Resolve(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return bundle, nil
}

// fallbackError is used when no ErrorHandler is configured.
func (d *Dispatcher) fallbackError(w http.ResponseWriter, r *http.Request, err error) {
	d.logger.Error("request failed", "path", r.URL.Path, "error", err)
	if render.HeadersSent(err) {
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
