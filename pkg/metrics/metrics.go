// Package metrics records check outcomes as Prometheus metrics for the
// node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/check"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/config"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
)

// Recorder collects per-file metrics. It implements check.Observer.
type Recorder struct {
	registry *prometheus.Registry

	files            *prometheus.CounterVec
	missingTags      *prometheus.GaugeVec
	availableTags    *prometheus.GaugeVec
	downloadBytes    *prometheus.GaugeVec
	downloadDuration *prometheus.HistogramVec
	lastRun          prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
// Every kind and status pair starts at zero.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	r := &Recorder{
		registry: reg,
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geodata_check_files_total",
				Help: "Checked data files by outcome",
			},
			[]string{"kind", "status"},
		),
		missingTags: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geodata_check_missing_tags",
				Help: "Required tags absent from a data file",
			},
			[]string{"file"},
		),
		availableTags: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geodata_check_available_tags",
				Help: "Distinct tags found in a data file",
			},
			[]string{"file"},
		),
		downloadBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geodata_check_download_bytes",
				Help: "Size of the downloaded data file",
			},
			[]string{"file"},
		),
		downloadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geodata_check_download_duration_seconds",
				Help:    "Time taken to download a data file",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"kind"},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "geodata_check_last_run_timestamp_seconds",
				Help: "Unix time the last check run finished",
			},
		),
	}
	for _, kind := range geodata.Kinds {
		for _, status := range check.Statuses {
			r.files.WithLabelValues(string(kind), status.String())
		}
	}
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// FileStarted is a no-op.
func (r *Recorder) FileStarted(config.FileSpec) {}

// DownloadStarted is a no-op.
func (r *Recorder) DownloadStarted(config.FileSpec) {}

// DownloadFinished records the file size and download time.
func (r *Recorder) DownloadFinished(spec config.FileSpec, _ string, size int64, elapsed time.Duration) {
	r.downloadBytes.WithLabelValues(spec.Name).Set(float64(size))
	r.downloadDuration.WithLabelValues(string(spec.Kind)).Observe(elapsed.Seconds())
}

// FileFinished counts the outcome and records tag gauges.
func (r *Recorder) FileFinished(res *check.Result) {
	r.files.WithLabelValues(string(res.Kind), res.Status.String()).Inc()
	r.missingTags.WithLabelValues(res.Filename).Set(float64(res.Missing.Len()))
	if res.Status == check.StatusOK || res.Status == check.StatusMissingTags {
		r.availableTags.WithLabelValues(res.Filename).Set(float64(res.Available))
	}
}

// WriteTextfile stamps the run time and atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	r.lastRun.Set(float64(time.Now().Unix()))
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
