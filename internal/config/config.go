// Package config loads the service configuration. Fields are pointers so a
// partial JSON file overrides only what it names; the Get* accessors supply
// defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for the simulation service.
type Config struct {
	// Server params
	ListenAddr *string `json:"listen_addr,omitempty"`

	// Native pipeline params
	WorkspaceDir    *string  `json:"workspace_dir,omitempty"`
	SourcePath      *string  `json:"source_path,omitempty"`
	ArtifactPath    *string  `json:"artifact_path,omitempty"`
	Compilers       []string `json:"compilers,omitempty"`
	ConfigTool      *string  `json:"config_tool,omitempty"`
	FallbackCommand []string `json:"fallback_command,omitempty"`

	// Timeouts as duration strings like "30s"
	NativeTimeout   *string `json:"native_timeout,omitempty"`
	FallbackTimeout *string `json:"fallback_timeout,omitempty"`
	ProbeTimeout    *string `json:"probe_timeout,omitempty"`
}

// EmptyConfig returns a Config with all fields unset; the Get* accessors
// then yield the documented defaults.
func EmptyConfig() *Config {
	return &Config{}
}

// LoadConfig loads a Config from a JSON file. Omitted fields retain their
// defaults, so partial configs are safe.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are parseable.
func (c *Config) Validate() error {
	for name, v := range map[string]*string{
		"native_timeout":   c.NativeTimeout,
		"fallback_timeout": c.FallbackTimeout,
		"probe_timeout":    c.ProbeTimeout,
	} {
		if v != nil && *v != "" {
			if _, err := time.ParseDuration(*v); err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, *v, err)
			}
		}
	}
	if len(c.FallbackCommand) == 1 && c.FallbackCommand[0] == "" {
		return fmt.Errorf("fallback_command must not be a single empty string")
	}
	return nil
}

// GetListenAddr returns the listen address or the default.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetWorkspaceDir returns the directory all pipeline paths must stay within.
func (c *Config) GetWorkspaceDir() string {
	if c.WorkspaceDir == nil || *c.WorkspaceDir == "" {
		return "native"
	}
	return *c.WorkspaceDir
}

// GetSourcePath returns the native source path or the default.
func (c *Config) GetSourcePath() string {
	if c.SourcePath == nil || *c.SourcePath == "" {
		return filepath.Join(c.GetWorkspaceDir(), "kalman_filter_track.cpp")
	}
	return *c.SourcePath
}

// GetArtifactPath returns the compiled artifact path or the default.
func (c *Config) GetArtifactPath() string {
	if c.ArtifactPath == nil || *c.ArtifactPath == "" {
		return filepath.Join(c.GetWorkspaceDir(), "kalman_filter_track")
	}
	return *c.ArtifactPath
}

// GetCompilers returns the compiler candidate order or the default.
func (c *Config) GetCompilers() []string {
	if len(c.Compilers) == 0 {
		return []string{"clang++", "g++"}
	}
	return c.Compilers
}

// GetConfigTool returns the toolkit config tool name or the default.
func (c *Config) GetConfigTool() string {
	if c.ConfigTool == nil || *c.ConfigTool == "" {
		return "root-config"
	}
	return *c.ConfigTool
}

// GetFallbackCommand returns the fallback command, or nil to use the
// embedded in-process generator.
func (c *Config) GetFallbackCommand() []string {
	return c.FallbackCommand
}

// GetNativeTimeout parses and returns the native execution bound.
func (c *Config) GetNativeTimeout() time.Duration {
	return c.duration(c.NativeTimeout, 30*time.Second)
}

// GetFallbackTimeout parses and returns the fallback execution bound.
func (c *Config) GetFallbackTimeout() time.Duration {
	return c.duration(c.FallbackTimeout, 10*time.Second)
}

// GetProbeTimeout parses and returns the per-candidate compiler probe bound.
func (c *Config) GetProbeTimeout() time.Duration {
	return c.duration(c.ProbeTimeout, 5*time.Second)
}

func (c *Config) duration(v *string, fallback time.Duration) time.Duration {
	if v == nil || *v == "" {
		return fallback
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fallback
	}
	return d
}
