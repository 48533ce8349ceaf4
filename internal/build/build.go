// Package build keeps the native simulation artifact up to date with its
// source. A rebuild happens only when the artifact is stale; the toolchain is
// never touched otherwise.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/particlelab/tracksim/internal/fsutil"
	"github.com/particlelab/tracksim/internal/toolchain"
)

// Outcome reports what EnsureBuilt did.
type Outcome string

const (
	// OutcomeUpToDate means the artifact was already newer than its source.
	OutcomeUpToDate Outcome = "up-to-date"
	// OutcomeRebuilt means the artifact was compiled on this call.
	OutcomeRebuilt Outcome = "rebuilt"
)

// Kind classifies build failures.
type Kind string

const (
	KindSourceMissing Kind = "source_missing"
	KindNoToolchain   Kind = "no_toolchain"
	KindCompileFailed Kind = "compile_failed"
)

// Error is a classified build failure.
type Error struct {
	Kind     Kind
	Detail   string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("build %s: %s", e.Kind, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// CompileResult is what a compile invocation produced.
type CompileResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Builder rebuilds a native artifact from its source when stale. The probe,
// flag-query, and compile steps are function fields so tests can substitute
// stand-ins and count invocations.
type Builder struct {
	FS           fsutil.FileSystem
	SourcePath   string
	ArtifactPath string
	Candidates   []string
	ConfigTool   string
	ProbeTimeout time.Duration

	Probe      func(ctx context.Context, candidates []string, perCandidate time.Duration) (string, bool)
	QueryFlags func(ctx context.Context, configTool string) (cflags, libs string, err error)
	Compile    func(ctx context.Context, compiler string, args []string, dir string) (CompileResult, error)
}

// NewBuilder constructs a Builder with production defaults: the OS
// filesystem, the real prober and flag query, and an os/exec compile step.
func NewBuilder(sourcePath, artifactPath string) *Builder {
	return &Builder{
		FS:           fsutil.OSFileSystem{},
		SourcePath:   sourcePath,
		ArtifactPath: artifactPath,
		Candidates:   toolchain.DefaultCandidates,
		ConfigTool:   "root-config",
		ProbeTimeout: 5 * time.Second,
		Probe:        toolchain.Probe,
		QueryFlags:   toolchain.QueryFlags,
		Compile:      compile,
	}
}

// EnsureBuilt makes sure the artifact exists and is newer than its source,
// compiling it if not. All work is synchronous; callers observe a "must be
// buildable now" contract.
func (b *Builder) EnsureBuilt(ctx context.Context) (Outcome, error) {
	srcInfo, err := b.FS.Stat(b.SourcePath)
	if err != nil {
		return "", &Error{
			Kind:   KindSourceMissing,
			Detail: fmt.Sprintf("source file not found at %s", b.SourcePath),
			Err:    err,
		}
	}

	// Staleness check: strictly newer artifact means no toolchain work at all.
	if artInfo, err := b.FS.Stat(b.ArtifactPath); err == nil && artInfo.ModTime().After(srcInfo.ModTime()) {
		return OutcomeUpToDate, nil
	}

	compiler, ok := b.Probe(ctx, b.Candidates, b.ProbeTimeout)
	if !ok {
		return "", &Error{
			Kind:   KindNoToolchain,
			Detail: fmt.Sprintf("no suitable compiler found (tried: %s)", strings.Join(b.Candidates, ", ")),
		}
	}

	cflags, libs, err := b.QueryFlags(ctx, b.ConfigTool)
	if err != nil {
		return "", &Error{
			Kind:   KindNoToolchain,
			Detail: fmt.Sprintf("toolkit config tool %q unavailable", b.ConfigTool),
			Err:    err,
		}
	}

	args := []string{"-o", b.ArtifactPath, b.SourcePath}
	args = append(args, strings.Fields(cflags)...)
	args = append(args, strings.Fields(libs)...)

	// The working directory is passed explicitly; the process CWD is never
	// mutated, so concurrent requests cannot observe a half-changed directory.
	result, err := b.Compile(ctx, compiler, args, filepath.Dir(b.SourcePath))
	if err != nil {
		return "", &Error{
			Kind:   KindCompileFailed,
			Detail: fmt.Sprintf("failed to invoke %s", compiler),
			Err:    err,
		}
	}
	if result.ExitCode != 0 {
		return "", &Error{
			Kind:     KindCompileFailed,
			Detail:   fmt.Sprintf("%s exited with code %d", compiler, result.ExitCode),
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}
	return OutcomeRebuilt, nil
}

// compile is the production compile step.
func compile(ctx context.Context, compiler string, args []string, dir string) (CompileResult, error) {
	cmd := exec.CommandContext(ctx, compiler, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CompileResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
