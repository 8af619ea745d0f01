package metrics

import "time"

// ResultLabel enumerates per-artifact publish results.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultEmpty   ResultLabel = "empty"
	ResultFailed  ResultLabel = "failed"
)

// BuildOutcomeLabel enumerates whole-build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeWarning BuildOutcomeLabel = "warning"
	BuildOutcomeNoop    BuildOutcomeLabel = "noop"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
)

// Recorder defines observability hooks for builds and publish workers.
// Implementations must be safe for concurrent use: publish hooks are called
// from every worker.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(mode string, d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObservePublishDuration(kind string, d time.Duration)
	IncPublishResult(kind string, result ResultLabel)
	SetWorkers(n int)
	SetIndexedPages(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)   {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration)   {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)            {}
func (NoopRecorder) ObservePublishDuration(string, time.Duration) {}
func (NoopRecorder) IncPublishResult(string, ResultLabel)         {}
func (NoopRecorder) SetWorkers(int)                               {}
func (NoopRecorder) SetIndexedPages(int)                          {}
