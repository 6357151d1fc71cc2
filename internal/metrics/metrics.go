// Package metrics counts what a build produced. Each build owns a private
// registry; it is written next to the workflow as a Prometheus textfile and
// served by the preview server.
package metrics

import (
	"net/http"

	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements jobs.Observer.
type Recorder struct {
	registry  *prometheus.Registry
	jobs      *prometheus.CounterVec
	artifacts prometheus.Counter
	degraded  *prometheus.CounterVec
	pages     prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grbflow_jobs_total",
				Help: "Jobs added to the workflow, by template and section.",
			},
			[]string{"template", "section"},
		),
		artifacts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grbflow_artifacts_total",
			Help: "Output artifacts declared by jobs.",
		}),
		degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grbflow_degraded_matches_total",
				Help: "Injection sets whose file match degraded to absent.",
			},
			[]string{"set"},
		),
		pages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grbflow_report_pages",
			Help: "Section pages in the report book.",
		}),
	}
	r.registry.MustRegister(r.jobs, r.artifacts, r.degraded, r.pages)
	return r
}

// JobCreated counts a job and its outputs.
func (r *Recorder) JobCreated(n *domain.JobNode) {
	r.jobs.WithLabelValues(n.Template, n.Section).Inc()
	r.artifacts.Add(float64(len(n.Outputs)))
}

// DegradedMatch counts an injection set that fell back to no overlay.
func (r *Recorder) DegradedMatch(set string) {
	r.degraded.WithLabelValues(set).Inc()
}

// SetPages records the number of emitted pages.
func (r *Recorder) SetPages(n int) {
	r.pages.Set(float64(n))
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current values to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
