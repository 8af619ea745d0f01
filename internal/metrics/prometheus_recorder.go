package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docpress"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	stageDuration   *prom.HistogramVec
	buildDuration   *prom.HistogramVec
	buildOutcome    *prom.CounterVec
	publishDuration *prom.HistogramVec
	publishResults  *prom.CounterVec
	workers         prom.Gauge
	indexedPages    prom.Gauge
	lastBuild       prom.Gauge
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total build duration by mode",
		Buckets:   prom.DefBuckets,
	}, []string{"mode"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.publishDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "publish_duration_seconds",
		Help:      "Render and publish duration of a single artifact",
		Buckets:   prom.ExponentialBuckets(0.001, 2, 12),
	}, []string{"kind"})
	pr.publishResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "publish_results_total",
		Help:      "Publish results by page kind and result",
	}, []string{"kind", "result"})
	pr.workers = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "publish_workers",
		Help:      "Worker pool size of the last build",
	})
	pr.indexedPages = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "indexed_pages",
		Help:      "Pages in the index of the last build",
	})
	pr.lastBuild = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_build_timestamp_seconds",
		Help:      "Unix time the last build finished",
	})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome,
		pr.publishDuration, pr.publishResults, pr.workers, pr.indexedPages, pr.lastBuild)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(mode string, d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(mode).Observe(d.Seconds())
	p.lastBuild.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObservePublishDuration(kind string, d time.Duration) {
	if p == nil {
		return
	}
	p.publishDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishResult(kind string, result ResultLabel) {
	if p == nil {
		return
	}
	p.publishResults.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.workers.Set(float64(n))
}

func (p *PrometheusRecorder) SetIndexedPages(n int) {
	if p == nil {
		return
	}
	p.indexedPages.Set(float64(n))
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// The file is written to a temporary name and renamed into place.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
