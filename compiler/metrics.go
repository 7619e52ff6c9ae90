package compiler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/c360studio/ontoc/model"
	"github.com/c360studio/ontoc/source"
)

// Metrics records compile counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	recordsLoaded   *prometheus.CounterVec
	compileErrors   *prometheus.CounterVec
	compileDuration prometheus.Histogram
	triplesEmitted  prometheus.Gauge
}

// NewMetrics creates the compile metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		recordsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ontoc_records_loaded_total",
				Help: "Total number of records loaded, by kind",
			},
			[]string{"kind"},
		),
		compileErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ontoc_compile_errors_total",
				Help: "Total number of failed compilations, by error kind",
			},
			[]string{"kind"},
		),
		compileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ontoc_compile_duration_seconds",
			Help:    "Duration of compilations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}),
		triplesEmitted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ontoc_triples_emitted",
			Help: "Number of triples in the last compiled graph",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordsLoaded counts the records of rs by kind.
func (m *Metrics) RecordsLoaded(rs *model.RecordSet) {
	if m == nil || rs == nil {
		return
	}
	for _, kind := range model.Kinds {
		m.recordsLoaded.WithLabelValues(string(kind)).Add(float64(rs.Count(kind)))
	}
}

// CompileFailed counts err under its error kind.
func (m *Metrics) CompileFailed(err error) {
	if m == nil || err == nil {
		return
	}
	m.compileErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// CompileSucceeded records the duration and size of a successful run.
func (m *Metrics) CompileSucceeded(d time.Duration, triples int) {
	if m == nil {
		return
	}
	m.compileDuration.Observe(d.Seconds())
	m.triplesEmitted.Set(float64(triples))
}

// WriteToTextfile writes the registry in the node exporter textfile format.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// ErrorKind classifies err for the compile_errors label.
func ErrorKind(err error) string {
	var (
		malformed    *model.MalformedRecordError
		duplicate    *model.DuplicateIdError
		unresolved   *model.UnresolvedReferenceError
		cyclic       *model.CyclicHierarchyError
		propertyType *model.InvalidPropertyTypeError
		conflict     *model.RestrictionConflictError
		unregistered *source.UnregisteredSourceError
	)
	switch {
	case errors.As(err, &malformed):
		return "malformed_record"
	case errors.As(err, &duplicate):
		return "duplicate_id"
	case errors.As(err, &unresolved):
		return "unresolved_reference"
	case errors.As(err, &cyclic):
		return "cyclic_hierarchy"
	case errors.As(err, &propertyType):
		return "invalid_property_type"
	case errors.As(err, &conflict):
		return "restriction_conflict"
	case errors.As(err, &unregistered):
		return "unregistered_source"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "other"
}
