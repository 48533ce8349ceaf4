package main

import (
	"testing"

	"github.com/particlelab/tracksim/internal/config"
)

func strPtr(s string) *string { return &s }

func TestNewRunnerNative(t *testing.T) {
	runner, err := newRunner(config.EmptyConfig(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !runner.NativeEnabled() {
		t.Error("native runner reports native disabled")
	}
	if runner.Builder == nil {
		t.Error("native runner has no builder")
	}
}

func TestNewRunnerFallbackOnly(t *testing.T) {
	cfg := config.EmptyConfig()
	cfg.FallbackCommand = []string{"/opt/simulate"}

	runner, err := newRunner(cfg, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.NativeEnabled() {
		t.Error("fallback-only runner reports native enabled")
	}
	if len(runner.FallbackCommand) != 1 {
		t.Errorf("fallback command not carried over: %v", runner.FallbackCommand)
	}
}

func TestNewRunnerRejectsEscapingPaths(t *testing.T) {
	cfg := config.EmptyConfig()
	cfg.SourcePath = strPtr("../outside/track.cpp")

	if _, err := newRunner(cfg, true); err == nil {
		t.Fatal("expected error for source path escaping the workspace")
	}
}
