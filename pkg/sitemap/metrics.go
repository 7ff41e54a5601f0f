package sitemap

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts sitemap generations.
type Metrics struct {
	generations *prometheus.CounterVec
}

// NewMetrics registers the sitemap metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		generations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movieflair",
				Name:      "sitemap_generations_total",
				Help:      "Sitemap generations by result (ok, error, panic).",
			},
			[]string{"result"},
		),
	}
}

// Instrument wraps gen so every generation is counted.
func (m *Metrics) Instrument(gen Generator) Generator {
	return GeneratorFunc(func(ctx context.Context) (body []byte, err error) {
		defer func() {
			if v := recover(); v != nil {
				m.generations.WithLabelValues("panic").Inc()
				panic(v)
			}
			if err != nil {
				m.generations.WithLabelValues("error").Inc()
				return
			}
			m.generations.WithLabelValues("ok").Inc()
		}()
		return gen.Generate(ctx)
	})
}
