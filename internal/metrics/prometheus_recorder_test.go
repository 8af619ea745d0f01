package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("index", 150*time.Millisecond)
	pr.ObserveBuildDuration("full", 500*time.Millisecond)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.ObservePublishDuration("article", 2*time.Millisecond)
	pr.IncPublishResult("article", ResultSuccess)
	pr.IncPublishResult("article", ResultSuccess)
	pr.IncPublishResult("category", ResultEmpty)
	pr.SetWorkers(4)
	pr.SetIndexedPages(12)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				byName[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				byName[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.InDelta(t, 3, byName["docpress_publish_results_total"], 0)
	assert.InDelta(t, 1, byName["docpress_build_outcomes_total"], 0)
	assert.InDelta(t, 4, byName["docpress_publish_workers"], 0)
	assert.InDelta(t, 12, byName["docpress_indexed_pages"], 0)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncBuildOutcome(BuildOutcomeFailed)
		pr.SetWorkers(1)
	})
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncPublishResult("article", ResultFailed)

	path := filepath.Join(t.TempDir(), "docpress.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `docpress_publish_results_total{kind="article",result="failed"} 1`)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration("add", time.Second)
	r.IncPublishResult("article", ResultSuccess)
}
