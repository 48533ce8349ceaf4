// Package orchestrate sequences the simulation pipeline: ensure the native
// artifact is built, execute it under a bound, and cascade to the fallback
// strategy on any failure. The client always receives one of two shapes: a
// schema-conformant result or a classified error.
package orchestrate

import (
	"context"
	"time"

	"github.com/particlelab/tracksim/internal/build"
	"github.com/particlelab/tracksim/internal/monitoring"
	"github.com/particlelab/tracksim/internal/schema"
	"github.com/particlelab/tracksim/internal/simulate"
	"github.com/particlelab/tracksim/internal/subproc"
)

// ArtifactBuilder is the slice of build.Builder the runner needs.
type ArtifactBuilder interface {
	EnsureBuilt(ctx context.Context) (build.Outcome, error)
}

// ExecFunc runs an executable under a wall-clock bound and returns its stdout.
type ExecFunc func(ctx context.Context, path string, args []string, timeout time.Duration) (string, error)

// Runner is the orchestration state machine. It holds no per-request state;
// the only cross-request state is the on-disk artifact, and concurrent stale
// rebuilds are an accepted idempotent race.
type Runner struct {
	Builder      ArtifactBuilder
	ArtifactPath string
	Exec         ExecFunc

	// FallbackCommand, when non-empty, is run through the bounded executor as
	// the fallback strategy. When empty the embedded generator is called
	// in-process instead.
	FallbackCommand []string

	NativeTimeout   time.Duration
	FallbackTimeout time.Duration

	// Generate is the embedded strategy. Defaults to simulate.GenerateRandom.
	Generate func() schema.SimulationResult

	nativeEnabled bool
}

const (
	// DefaultNativeTimeout bounds the compiled artifact's run.
	DefaultNativeTimeout = 30 * time.Second
	// DefaultFallbackTimeout bounds the fallback process; shorter, since the
	// fallback is expected to be cheap.
	DefaultFallbackTimeout = 10 * time.Second
)

// New constructs a Runner that attempts the native pipeline before falling
// back.
func New(builder ArtifactBuilder, artifactPath string) *Runner {
	return &Runner{
		Builder:         builder,
		ArtifactPath:    artifactPath,
		Exec:            subproc.Run,
		NativeTimeout:   DefaultNativeTimeout,
		FallbackTimeout: DefaultFallbackTimeout,
		Generate:        simulate.GenerateRandom,
		nativeEnabled:   true,
	}
}

// NewFallbackOnly constructs a Runner whose state machine reduces to
// FallingBack -> Done: no staleness check, no toolchain, no native execution.
// Used for deployments without a compiler toolchain; output is schema
// identical to the native path.
func NewFallbackOnly() *Runner {
	return &Runner{
		Exec:            subproc.Run,
		FallbackTimeout: DefaultFallbackTimeout,
		Generate:        simulate.GenerateRandom,
		nativeEnabled:   false,
	}
}

// NativeEnabled reports whether the runner attempts the native pipeline.
func (r *Runner) NativeEnabled() bool { return r.nativeEnabled }

// Run drives the state machine once. Every stage is attempted exactly once;
// the only unrecoverable outcome is the fallback itself failing.
func (r *Runner) Run(ctx context.Context) (schema.SimulationResult, error) {
	if !r.nativeEnabled {
		return r.fallBack(ctx, nil)
	}

	// Building
	outcome, err := r.Builder.EnsureBuilt(ctx)
	if err != nil {
		return r.fallBack(ctx, classify(StageBuild, err))
	}
	monitoring.Logf("build: artifact %s %s", r.ArtifactPath, outcome)

	// Executing
	stdout, err := r.Exec(ctx, r.ArtifactPath, nil, r.NativeTimeout)
	if err != nil {
		return r.fallBack(ctx, classify(StageExecute, err))
	}
	result, err := schema.Decode([]byte(stdout))
	if err != nil {
		return r.fallBack(ctx, &StageError{
			Stage:  StageExecute,
			Kind:   KindMalformedOutput,
			Detail: "artifact output failed schema validation",
			Err:    err,
		})
	}
	return result, nil
}

// fallBack runs the fallback strategy. cause is the failure that triggered
// the transition; it is logged before the fallback is attempted so recovery
// is never silent.
func (r *Runner) fallBack(ctx context.Context, cause *StageError) (schema.SimulationResult, error) {
	if cause != nil {
		monitoring.Logf("orchestrate: falling back after %s failure (%s): %s",
			cause.Stage, cause.Kind, DetailOf(cause))
	}

	if len(r.FallbackCommand) == 0 {
		if r.Generate == nil {
			return schema.SimulationResult{}, &StageError{
				Stage:  StageFallback,
				Kind:   KindBothStrategiesFailed,
				Detail: "no fallback strategy configured",
			}
		}
		return r.Generate(), nil
	}

	stdout, err := r.Exec(ctx, r.FallbackCommand[0], r.FallbackCommand[1:], r.FallbackTimeout)
	if err != nil {
		inner := classify(StageFallback, err)
		return schema.SimulationResult{}, &StageError{
			Stage:  StageFallback,
			Kind:   KindBothStrategiesFailed,
			Detail: "fallback " + string(inner.Kind) + ": " + DetailOf(inner),
		}
	}
	result, err := schema.Decode([]byte(stdout))
	if err != nil {
		return schema.SimulationResult{}, &StageError{
			Stage:  StageFallback,
			Kind:   KindBothStrategiesFailed,
			Detail: "fallback malformed_output: " + err.Error(),
		}
	}
	return result, nil
}
