package live

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/loomui-dev/loom/pkg/loom"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	SessionsActive  prometheus.Gauge
	EventsTotal     prometheus.Counter
	TurnsTotal      prometheus.Counter
	FlushDuration   prometheus.Histogram
	PatchesTotal    prometheus.Counter
	PatchBytesTotal prometheus.Counter
	CellsObserved   prometheus.GaugeFunc
}

// NewMetrics registers the collectors with reg, or the default registerer
// when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "loom",
			Name:      "sessions_active",
			Help:      "Currently connected live sessions.",
		}),
		EventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "events_total",
			Help:      "Client events dispatched to handlers.",
		}),
		TurnsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "turns_total",
			Help:      "Scheduler turns flushed.",
		}),
		FlushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loom",
			Name:      "flush_duration_seconds",
			Help:      "Duration of one event dispatch plus flush.",
			Buckets:   prometheus.DefBuckets,
		}),
		PatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "patches_total",
			Help:      "DOM patches streamed to clients.",
		}),
		PatchBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "patch_bytes_total",
			Help:      "Encoded patch frame bytes streamed to clients.",
		}),
		CellsObserved: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "loom",
			Name:      "cells_observed",
			Help:      "Cells currently registered with the instrumentation registry.",
		}, func() float64 {
			return float64(loom.DefaultRegistry().Len())
		}),
	}
}
