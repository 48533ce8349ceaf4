package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/particlelab/tracksim/internal/api"
	"github.com/particlelab/tracksim/internal/build"
	"github.com/particlelab/tracksim/internal/config"
	"github.com/particlelab/tracksim/internal/orchestrate"
	"github.com/particlelab/tracksim/internal/security"
	"github.com/particlelab/tracksim/internal/version"
)

var (
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	configPath = flag.String("config", "", "Path to JSON config file")
	native     = flag.Bool("native", true, "Attempt the native compiled pipeline; false serves the fallback strategy only")
)

func main() {
	flag.Parse()

	log.Print(version.String())

	cfg := config.EmptyConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	addr := cfg.GetListenAddr()
	if *listen != "" {
		addr = *listen
	}

	runner, err := newRunner(cfg, *native)
	if err != nil {
		log.Fatalf("invalid pipeline configuration: %v", err)
	}

	// Startup compilation check: log the outcome but never refuse to serve,
	// since the fallback strategy keeps the endpoint available.
	if runner.NativeEnabled() {
		if outcome, err := runner.Builder.EnsureBuilt(context.Background()); err != nil {
			log.Printf("initial compilation check failed (fallback will serve): %v", err)
		} else {
			log.Printf("initial compilation check passed: artifact %s", outcome)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := api.CORSMiddleware(api.LoggingMiddleware(api.NewServer(runner).ServeMux()))
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("serving on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Printf("graceful shutdown complete")
}

// newRunner wires the orchestrator from config. Paths are validated against
// the workspace directory before anything is compiled or executed.
func newRunner(cfg *config.Config, nativeEnabled bool) (*orchestrate.Runner, error) {
	if !nativeEnabled {
		runner := orchestrate.NewFallbackOnly()
		runner.FallbackCommand = cfg.GetFallbackCommand()
		runner.FallbackTimeout = cfg.GetFallbackTimeout()
		return runner, nil
	}

	workspace := cfg.GetWorkspaceDir()
	for _, p := range []string{cfg.GetSourcePath(), cfg.GetArtifactPath()} {
		if err := security.ValidatePathWithinDirectory(p, workspace); err != nil {
			return nil, err
		}
	}

	builder := build.NewBuilder(cfg.GetSourcePath(), cfg.GetArtifactPath())
	builder.Candidates = cfg.GetCompilers()
	builder.ConfigTool = cfg.GetConfigTool()
	builder.ProbeTimeout = cfg.GetProbeTimeout()

	runner := orchestrate.New(builder, cfg.GetArtifactPath())
	runner.FallbackCommand = cfg.GetFallbackCommand()
	runner.NativeTimeout = cfg.GetNativeTimeout()
	runner.FallbackTimeout = cfg.GetFallbackTimeout()
	return runner, nil
}
