// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics of a denormalization run.
//
// It exposes a narrow interface (Backend) focused on counters and timings, and
// a global, pluggable backend that defaults to a no-op implementation, so the
// Record* helpers are always safe to call even when no real backend is
// configured. Concrete metric systems live in subpackages (prompush, datadog).
//
// Steps are the units of work of a run: one per loaded table
// ("load:orders"), one per pipeline ("pipeline:customers"), and one per
// written file ("write:orders.json").
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal           = "denorm_step_total"
	StepDurationSeconds = "denorm_step_duration_seconds"
	RowsTotal           = "denorm_rows_total"
	BytesTotal          = "denorm_bytes_written_total"
)

// Row kinds counted by RecordRow.
const (
	KindLoaded    = "loaded"
	KindDocuments = "documents"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency and success/failure of one step.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments a row-level counter for the given job and kind
// (KindLoaded for source rows, KindDocuments for emitted documents).
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBytes adds the size of a written document file.
func RecordBytes(job, file string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BytesTotal, float64(delta), Labels{
		"job":  job,
		"file": file,
	})
}
