// Package metrics provides Prometheus counters for ODP analysis runs.
//
// The toolkit is a batch tool with no network surface, so nothing is served:
// counters accumulate during a run and are dumped at the end via
// WriteSummary. A custom registry keeps default Go runtime metrics out of
// the dump.
package metrics

import (
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages the Prometheus metrics for a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Dataset metrics
	questionsLoaded prometheus.Counter
	recordsSkipped  *prometheus.CounterVec
	datasetSize     prometheus.Gauge

	// Scoring metrics
	responsesScored    prometheus.Counter
	responsesUnmatched prometheus.Counter

	// Experiment metrics
	perturbationsApplied *prometheus.CounterVec
	experimentsRun       prometheus.Counter
	metricDuration       *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "odp",
		subsystem:        "toolkit",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.questionsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "questions_loaded_total",
		Help:      "Total number of questions loaded from dataset files",
	})

	m.recordsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_skipped_total",
			Help:      "Total number of dataset records skipped, by reason",
		},
		[]string{"reason"},
	)

	m.datasetSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_size",
		Help:      "Number of questions in the active dataset",
	})

	m.responsesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "responses_scored_total",
		Help:      "Total number of model responses scored",
	})

	m.responsesUnmatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "responses_unmatched_total",
		Help:      "Total number of responses that named no option (scored as wrong)",
	})

	m.perturbationsApplied = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "perturbations_applied_total",
			Help:      "Total number of question perturbations applied, by kind",
		},
		[]string{"kind"},
	)

	m.experimentsRun = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "experiments_run_total",
		Help:      "Total number of experiments executed in this run",
	})

	m.metricDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "metric_duration_milliseconds",
			Help:      "Metric computation duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"metric"},
	)
}

// WriteSummary gathers the registry and writes one "name{labels} value" line
// per sample, sorted by name, to w.
func (m *Manager) WriteSummary(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			labels := ""
			for _, lp := range metric.GetLabel() {
				if labels != "" {
					labels += ","
				}
				labels += lp.GetName() + "=" + lp.GetValue()
			}
			if labels != "" {
				labels = "{" + labels + "}"
			}
			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				value = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				value = float64(metric.GetHistogram().GetSampleCount())
			}
			if _, err := fmt.Fprintf(w, "%s%s %g\n", fam.GetName(), labels, value); err != nil {
				return fmt.Errorf("%w: %w", ErrGatherFailed, err)
			}
		}
	}
	return nil
}

// Package-level helpers operating on the global manager.

// RecordQuestionLoaded increments the loaded-questions counter.
func RecordQuestionLoaded() {
	globalManager.questionsLoaded.Inc()
}

// RecordRecordSkipped increments the skipped-records counter for a reason.
func RecordRecordSkipped(reason string) {
	globalManager.recordsSkipped.WithLabelValues(reason).Inc()
}

// UpdateDatasetSize sets the active dataset size gauge.
func UpdateDatasetSize(n int) {
	globalManager.datasetSize.Set(float64(n))
}

// RecordResponseScored increments the scored-responses counter.
func RecordResponseScored() {
	globalManager.responsesScored.Inc()
}

// RecordResponseUnmatched increments the unmatched-responses counter.
func RecordResponseUnmatched() {
	globalManager.responsesUnmatched.Inc()
}

// RecordPerturbation increments the perturbation counter for a kind.
func RecordPerturbation(kind string) {
	globalManager.perturbationsApplied.WithLabelValues(kind).Inc()
}

// RecordExperimentRun increments the experiments counter.
func RecordExperimentRun() {
	globalManager.experimentsRun.Inc()
}

// ObserveMetricDuration records the computation duration of one metric.
func ObserveMetricDuration(metric string, ms float64) {
	globalManager.metricDuration.WithLabelValues(metric).Observe(ms)
}

// WriteSummary dumps the global manager's counters to w.
func WriteSummary(w io.Writer) error {
	return globalManager.WriteSummary(w)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
