package orchestrate

import (
	"errors"
	"fmt"

	"github.com/particlelab/tracksim/internal/build"
	"github.com/particlelab/tracksim/internal/subproc"
)

// Stage names the pipeline stage where a failure originated. Operators need
// to tell "toolchain absent" apart from "binary crashed" apart from "fallback
// also broken", so failures are classified by stage, never collapsed.
type Stage string

const (
	StageBuild    Stage = "build"
	StageExecute  Stage = "execute"
	StageFallback Stage = "fallback"
)

// Kind classifies orchestration failures.
type Kind string

const (
	KindSourceMissing        Kind = "source_missing"
	KindNoToolchain          Kind = "no_toolchain"
	KindCompileFailed        Kind = "compile_failed"
	KindNotFound             Kind = "not_found"
	KindTimeout              Kind = "timeout"
	KindNonZeroExit          Kind = "non_zero_exit"
	KindMalformedOutput      Kind = "malformed_output"
	KindBothStrategiesFailed Kind = "both_strategies_failed"
	KindInternal             Kind = "internal"
)

// StageError is a classified failure from one pipeline stage.
type StageError struct {
	Stage  Stage
	Kind   Kind
	Detail string
	Err    error
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("%s stage %s: %s", e.Stage, e.Kind, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StageError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from err, or KindInternal for errors that
// did not come out of the pipeline.
func KindOf(err error) Kind {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind
	}
	return KindInternal
}

// DetailOf extracts the human-readable detail from err.
func DetailOf(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		if stageErr.Err != nil {
			return fmt.Sprintf("%s: %s", stageErr.Detail, stageErr.Err.Error())
		}
		return stageErr.Detail
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// classify maps errors from the builder and the bounded executor onto the
// orchestration taxonomy.
func classify(stage Stage, err error) *StageError {
	var buildErr *build.Error
	if errors.As(err, &buildErr) {
		kind := KindInternal
		switch buildErr.Kind {
		case build.KindSourceMissing:
			kind = KindSourceMissing
		case build.KindNoToolchain:
			kind = KindNoToolchain
		case build.KindCompileFailed:
			kind = KindCompileFailed
		}
		return &StageError{Stage: stage, Kind: kind, Detail: buildErr.Detail, Err: buildErr.Err}
	}

	var timeoutErr *subproc.TimeoutError
	if errors.As(err, &timeoutErr) {
		return &StageError{Stage: stage, Kind: KindTimeout, Detail: timeoutErr.Error()}
	}
	var notFoundErr *subproc.NotFoundError
	if errors.As(err, &notFoundErr) {
		return &StageError{Stage: stage, Kind: KindNotFound, Detail: notFoundErr.Error()}
	}
	var exitErr *subproc.ExitError
	if errors.As(err, &exitErr) {
		return &StageError{Stage: stage, Kind: KindNonZeroExit, Detail: exitErr.Error()}
	}

	return &StageError{Stage: stage, Kind: KindInternal, Detail: "unexpected error", Err: err}
}
