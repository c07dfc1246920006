// Package metrics is the process-wide metrics seam.
//
// Core code records through the package-level helpers and never imports a
// concrete backend. Commands pick a backend at startup with SetBackend; until
// then a nop backend swallows everything.
package metrics

import (
	"sync"
	"time"
)

// Labels are metric dimensions, e.g. {"data_type": "nominal"}.
type Labels map[string]string

// Backend receives metric events.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Flusher is implemented by backends that buffer.
type Flusher interface {
	Flush() error
}

// Metric names recorded by the metadata engine.
const (
	ColumnsTotal             = "lux_columns_total"
	OverrideErrorsTotal      = "lux_override_errors_total"
	UnclassifiedColumnsTotal = "lux_unclassified_columns_total"
	MetadataDurationSeconds  = "lux_metadata_duration_seconds"
	SourceRowsTotal          = "lux_source_rows_total"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the process backend. nil restores the nop backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter forwards to the current backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram forwards to the current backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// ObserveSince records the seconds elapsed since start.
func ObserveSince(name string, start time.Time, labels Labels) {
	ObserveHistogram(name, time.Since(start).Seconds(), labels)
}

// Flush flushes the current backend if it buffers.
func Flush() error {
	if f, ok := current().(Flusher); ok {
		return f.Flush()
	}
	return nil
}
