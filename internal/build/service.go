// Package build runs the publish pipeline: validate the configuration,
// index the sources, pick the work set, prepare the deploy root, publish
// with the worker pool and finalize. All entry points (build, add, watch)
// go through Service.
package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docpress/internal/config"
	"git.home.luguber.info/inful/docpress/internal/deploy"
)

// Service executes builds.
type Service interface {
	Run(ctx context.Context, req Request) (*Report, error)
}

// Request is the input of one build.
type Request struct {
	// Config must be loaded; Run validates it.
	Config *config.Config
	// Mode is deploy.ModeFull or deploy.ModeIncremental.
	Mode deploy.Mode
	// Prune removes artifacts the index no longer owns.
	Prune bool
	// DryRun logs filesystem mutations instead of performing them.
	DryRun bool
}

// Status is the overall build outcome.
type Status string

const (
	// StatusSuccess: every artifact in the work set was published.
	StatusSuccess Status = "success"
	// StatusWarning: the build finished but some artifacts failed.
	StatusWarning Status = "warning"
	// StatusNoop: incremental build with nothing new.
	StatusNoop Status = "noop"
	// StatusFailed: a fatal error stopped the build.
	StatusFailed Status = "failed"
)

// Report summarizes one build.
type Report struct {
	BuildID      string
	Mode         deploy.Mode
	Status       Status
	DryRun       bool
	Indexed      int
	Work         int
	Published    int
	Failed       int
	Empty        int
	BackedUp     int
	StaleRemoved int
	Newest       string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	// Err is the fatal error, if any.
	Err error
}
