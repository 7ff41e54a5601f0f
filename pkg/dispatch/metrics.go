package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/movieflair/movieflair/pkg/classify"
	"github.com/movieflair/movieflair/pkg/render"
	"github.com/movieflair/movieflair/pkg/resolve"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace prefixes every dispatch metric.
const MetricsNamespace = "movieflair"

type metrics struct {
	decisions  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	shellsSent prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "render_decisions_total",
			Help:      "Total number of requests by render decision",
		}, []string{"decision"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Time from classification to the end of the response",
			Buckets:   prometheus.DefBuckets,
		}, []string{"decision"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "render_errors_total",
			Help:      "Total number of failed requests by stage and error type",
		}, []string{"stage", "error_type"}),

		shellsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "shell_only_responses_total",
			Help:      "Total number of requests answered with the client shell",
		}),
	}
}

// The methods below are no-ops on a nil receiver so the dispatcher can run
// without a registry.

func (m *metrics) observe(d classify.Decision, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(d.String()).Inc()
	m.duration.WithLabelValues(d.String()).Observe(elapsed.Seconds())
}

func (m *metrics) recordError(stage Stage, err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(string(stage), errorType(err)).Inc()
}

func (m *metrics) shellOnly() {
	if m == nil {
		return
	}
	m.shellsSent.Inc()
}

// errorType maps an error to a low-cardinality label.
func errorType(err error) string {
	var panicErr *render.PanicError
	switch {
	case errors.As(err, &panicErr):
		return "panic"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, resolve.ErrShellUnavailable):
		return "shell_unavailable"
	case errors.Is(err, resolve.ErrEntryUnavailable), errors.Is(err, render.ErrNoEntry):
		return "entry_unavailable"
	default:
		return "internal"
	}
}
