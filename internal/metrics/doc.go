// Package metrics records build and publish metrics.
//
// Components receive a Recorder by injection and default to NoopRecorder,
// so nothing has to check whether metrics are enabled:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	svc := build.NewService(cfg, build.WithRecorder(rec))
//
// A docpress run is a short-lived process, so the Prometheus recorder is
// exported with WriteTextfile for the node_exporter textfile collector
// rather than served over HTTP.
package metrics
