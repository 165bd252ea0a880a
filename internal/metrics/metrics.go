// Package metrics exposes the Prometheus collectors for the ingestion loop
// and the query API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the process-wide collectors. All record methods are
// nil-safe so components can run without metrics in tests.
type Metrics struct {
	ingestCycles     prometheus.Counter
	ingestSkips      prometheus.Counter
	entityErrors     *prometheus.CounterVec
	forecastRequests prometheus.Counter
}

// New registers the collectors on the provided registerer. If reg is nil the
// default registerer is used; already-registered collectors are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	cycles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_cycles_total",
		Help: "Total number of completed ingestion cycles",
	})
	skips := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_cycles_skipped_total",
		Help: "Cycles skipped because the previous cycle was still running",
	})
	entityErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_entity_errors_total",
		Help: "Per-entity fetch or write failures during ingestion",
	}, []string{"kind"})
	forecasts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forecast_requests_total",
		Help: "Total number of forecast API requests served",
	})

	m := &Metrics{}
	var err error
	if m.ingestCycles, err = registerCounter(reg, cycles); err != nil {
		return nil, err
	}
	if m.ingestSkips, err = registerCounter(reg, skips); err != nil {
		return nil, err
	}
	if err := reg.Register(entityErrors); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			entityErrors = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	m.entityErrors = entityErrors
	if m.forecastRequests, err = registerCounter(reg, forecasts); err != nil {
		return nil, err
	}
	return m, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter), nil
		}
		return nil, err
	}
	return c, nil
}

// RecordCycle counts one completed ingestion cycle.
func (m *Metrics) RecordCycle() {
	if m == nil {
		return
	}
	m.ingestCycles.Inc()
}

// RecordCycleSkipped counts an overlapping cycle that was skipped.
func (m *Metrics) RecordCycleSkipped() {
	if m == nil {
		return
	}
	m.ingestSkips.Inc()
}

// RecordEntityError counts a per-entity ingestion failure. kind is
// "occupancy" or "charger".
func (m *Metrics) RecordEntityError(kind string) {
	if m == nil {
		return
	}
	m.entityErrors.WithLabelValues(kind).Inc()
}

// RecordForecastRequest counts one served forecast request.
func (m *Metrics) RecordForecastRequest() {
	if m == nil {
		return
	}
	m.forecastRequests.Inc()
}
