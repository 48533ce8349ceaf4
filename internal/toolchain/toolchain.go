// Package toolchain discovers a usable native compiler and queries the
// external toolkit for its build flags.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCandidates is the compiler preference order.
var DefaultCandidates = []string{"clang++", "g++"}

// Probe returns the first candidate whose version query succeeds within
// perCandidate. A missing compiler is a normal outcome: the candidate is
// skipped, never reported as an error.
func Probe(ctx context.Context, candidates []string, perCandidate time.Duration) (string, bool) {
	for _, candidate := range candidates {
		probeCtx, cancel := context.WithTimeout(ctx, perCandidate)
		err := exec.CommandContext(probeCtx, candidate, "--version").Run()
		cancel()
		if err == nil {
			return candidate, true
		}
	}
	return "", false
}

// QueryFlags asks the toolkit's config tool for compiler and linker flags.
// Unlike a missing compiler, a missing config tool is an error: the toolkit
// is required to build the native artifact at all.
func QueryFlags(ctx context.Context, configTool string) (cflags, libs string, err error) {
	cflagsOut, err := exec.CommandContext(ctx, configTool, "--cflags").Output()
	if err != nil {
		return "", "", fmt.Errorf("%s --cflags: %w", configTool, err)
	}
	libsOut, err := exec.CommandContext(ctx, configTool, "--libs").Output()
	if err != nil {
		return "", "", fmt.Errorf("%s --libs: %w", configTool, err)
	}
	return strings.TrimSpace(string(cflagsOut)), strings.TrimSpace(string(libsOut)), nil
}
