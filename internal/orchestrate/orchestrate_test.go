package orchestrate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/particlelab/tracksim/internal/build"
	"github.com/particlelab/tracksim/internal/monitoring"
	"github.com/particlelab/tracksim/internal/schema"
	"github.com/particlelab/tracksim/internal/simulate"
	"github.com/particlelab/tracksim/internal/subproc"
)

type stubBuilder struct {
	calls   int
	outcome build.Outcome
	err     error
}

func (s *stubBuilder) EnsureBuilt(ctx context.Context) (build.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

// stubExec replays canned results keyed by executable path and records calls.
type stubExec struct {
	calls   []string
	results map[string]execResult
}

type execResult struct {
	stdout string
	err    error
}

func (s *stubExec) run(ctx context.Context, path string, args []string, timeout time.Duration) (string, error) {
	s.calls = append(s.calls, path)
	r := s.results[path]
	return r.stdout, r.err
}

func validJSON(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(simulate.Generate(11))
	require.NoError(t, err)
	return string(data)
}

func muteLogs(t *testing.T) *[]string {
	t.Helper()
	lines, restore := monitoring.Capture()
	t.Cleanup(restore)
	return lines
}

func TestRunNativeSuccess(t *testing.T) {
	muteLogs(t)
	out := validJSON(t)
	builder := &stubBuilder{outcome: build.OutcomeUpToDate}
	exec := &stubExec{results: map[string]execResult{
		"work/track": {stdout: out},
	}}
	r := New(builder, "work/track")
	r.Exec = exec.run

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, builder.calls)
	assert.Equal(t, []string{"work/track"}, exec.calls)

	want, decodeErr := schema.Decode([]byte(out))
	require.NoError(t, decodeErr)
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestRunBuildFailureFallsBackToEmbedded(t *testing.T) {
	lines := muteLogs(t)
	builder := &stubBuilder{err: &build.Error{Kind: build.KindNoToolchain, Detail: "no suitable compiler found"}}
	exec := &stubExec{results: map[string]execResult{}}
	r := New(builder, "work/track")
	r.Exec = exec.run

	result, err := r.Run(context.Background())

	require.NoError(t, err, "a missing toolchain must never surface to the caller")
	require.NoError(t, result.Validate())
	assert.Empty(t, exec.calls, "embedded fallback must not spawn a process")

	// Recovery must be observable: the transition is logged with stage and kind.
	joined := strings.Join(*lines, "\n")
	assert.Contains(t, joined, "falling back")
	assert.Contains(t, joined, string(KindNoToolchain))
	assert.Contains(t, joined, "no suitable compiler found")
}

func TestRunExecuteFailuresFallBack(t *testing.T) {
	tests := []struct {
		name     string
		execErr  error
		wantKind Kind
	}{
		{
			name:     "timeout",
			execErr:  &subproc.TimeoutError{Path: "work/track", Limit: time.Second},
			wantKind: KindTimeout,
		},
		{
			name:     "non-zero exit",
			execErr:  &subproc.ExitError{Path: "work/track", Code: 139, Stderr: "segfault"},
			wantKind: KindNonZeroExit,
		},
		{
			name:     "artifact missing",
			execErr:  &subproc.NotFoundError{Path: "work/track"},
			wantKind: KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := muteLogs(t)
			builder := &stubBuilder{outcome: build.OutcomeRebuilt}
			exec := &stubExec{results: map[string]execResult{
				"work/track": {err: tt.execErr},
			}}
			r := New(builder, "work/track")
			r.Exec = exec.run

			result, err := r.Run(context.Background())

			require.NoError(t, err)
			require.NoError(t, result.Validate())
			assert.Contains(t, strings.Join(*lines, "\n"), string(tt.wantKind))
		})
	}
}

func TestRunMalformedOutputFallsBack(t *testing.T) {
	lines := muteLogs(t)
	builder := &stubBuilder{outcome: build.OutcomeUpToDate}
	exec := &stubExec{results: map[string]execResult{
		"work/track": {stdout: "Segmentation fault (core dumped)"},
	}}
	r := New(builder, "work/track")
	r.Exec = exec.run

	result, err := r.Run(context.Background())

	require.NoError(t, err, "malformed output is a failure, not a success")
	require.NoError(t, result.Validate())
	assert.Contains(t, strings.Join(*lines, "\n"), string(KindMalformedOutput))
}

func TestRunFallbackProcess(t *testing.T) {
	muteLogs(t)
	out := validJSON(t)
	builder := &stubBuilder{err: &build.Error{Kind: build.KindSourceMissing, Detail: "source file not found"}}
	exec := &stubExec{results: map[string]execResult{
		"/usr/local/bin/simulate": {stdout: out},
	}}
	r := New(builder, "work/track")
	r.Exec = exec.run
	r.FallbackCommand = []string{"/usr/local/bin/simulate", "-seed", "42"}

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	require.NoError(t, result.Validate())
	assert.Equal(t, []string{"/usr/local/bin/simulate"}, exec.calls)
}

func TestRunBothStrategiesFailed(t *testing.T) {
	muteLogs(t)
	builder := &stubBuilder{outcome: build.OutcomeUpToDate}
	exec := &stubExec{results: map[string]execResult{
		"work/track":    {err: &subproc.ExitError{Path: "work/track", Code: 1, Stderr: "crash"}},
		"/opt/simulate": {err: &subproc.NotFoundError{Path: "/opt/simulate"}},
	}}
	r := New(builder, "work/track")
	r.Exec = exec.run
	r.FallbackCommand = []string{"/opt/simulate"}

	_, err := r.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, KindBothStrategiesFailed, KindOf(err))
	// Refined reporting: the combined error names the fallback's own failure.
	assert.Contains(t, DetailOf(err), string(KindNotFound))
	assert.Contains(t, DetailOf(err), "/opt/simulate")
}

func TestRunFallbackMalformedOutputFails(t *testing.T) {
	muteLogs(t)
	builder := &stubBuilder{err: &build.Error{Kind: build.KindNoToolchain, Detail: "none"}}
	exec := &stubExec{results: map[string]execResult{
		"/opt/simulate": {stdout: "not json"},
	}}
	r := New(builder, "work/track")
	r.Exec = exec.run
	r.FallbackCommand = []string{"/opt/simulate"}

	_, err := r.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, KindBothStrategiesFailed, KindOf(err))
	assert.Contains(t, DetailOf(err), "malformed_output")
}

func TestFallbackOnlyRunner(t *testing.T) {
	muteLogs(t)
	exec := &stubExec{results: map[string]execResult{}}
	r := NewFallbackOnly()
	r.Exec = exec.run

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	require.NoError(t, result.Validate())
	assert.False(t, r.NativeEnabled())
	assert.Empty(t, exec.calls, "fallback-only runner must not execute anything for the embedded strategy")
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}
