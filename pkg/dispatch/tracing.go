package dispatch

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the dispatch tracer.
const TracerName = "github.com/movieflair/movieflair/pkg/dispatch"

const (
	spanDispatch = "movieflair.dispatch"
	spanClassify = "classify"
	spanResolve  = "resolve"
	spanRender   = "render"
)

// newTracer resolves the dispatch tracer. With a nil provider the global
// one is used, so configure it before building the dispatcher:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(TracerName)
}
