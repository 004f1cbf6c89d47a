// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for anvil.
//
// Configuration is loaded from a single file specified by:
//   - ANVIL_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/anvil-build/anvil/lib/sealed"
	"github.com/anvil-build/anvil/lib/session"
)

// Config is the master configuration for anvil.
type Config struct {
	// ProjectDir is the mobile app checkout the builds run against.
	ProjectDir string `yaml:"project_dir"`

	// Paths configures log and archive locations.
	Paths PathsConfig `yaml:"paths"`

	// Android configures the local Android build.
	Android AndroidConfig `yaml:"android"`

	// IOS configures the remote iOS build.
	IOS IOSConfig `yaml:"ios"`

	// Remote is the iOS build host connection.
	Remote RemoteConfig `yaml:"remote"`

	// ScanRoots are the directories searched by the scan command.
	ScanRoots []string `yaml:"scan_roots"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Logs is where build transcripts are persisted.
	Logs string `yaml:"logs"`

	// Archive is where successful build artifacts are copied.
	Archive string `yaml:"archive"`
}

// AndroidConfig configures the local Android build.
type AndroidConfig struct {
	// BuildType selects the artifact format: "apk" (assembleDebug)
	// or "aab" (bundleDebug).
	BuildType string `yaml:"build_type"`

	// Turbo enables the gradle fast path: parallel workers sized
	// from the hardware profile, build cache, no lint or tests. When
	// false the build goes through the EAS local pipeline instead.
	Turbo bool `yaml:"turbo"`

	// Env is layered over the parent environment for build
	// subprocesses, for SDK locations the shell profile does not
	// export (ANDROID_HOME, JAVA_HOME).
	Env map[string]string `yaml:"env"`
}

// IOSConfig configures the remote iOS build.
type IOSConfig struct {
	// Scheme is the xcodebuild scheme name.
	Scheme string `yaml:"scheme"`

	// RemotePath is the checkout location on the build host.
	RemotePath string `yaml:"remote_path"`

	// BuildType selects the destination: "device" or "simulator".
	BuildType string `yaml:"build_type"`
}

// RemoteConfig identifies the iOS build host. The password may be
// stored sealed: PasswordSealed holds age ciphertext produced by
// `anvil seal`, decrypted at connect time with IdentityPath.
type RemoteConfig struct {
	// Address is host or host:port, port defaulting to 22.
	Address string `yaml:"address"`

	// Username for the SSH login.
	Username string `yaml:"username"`

	// KeyPath is a private key file. Takes precedence over any
	// password when set.
	KeyPath string `yaml:"key_path"`

	// Password in plaintext. Prefer PasswordSealed.
	Password string `yaml:"password"`

	// PasswordSealed is base64 age ciphertext of the password.
	PasswordSealed string `yaml:"password_sealed"`

	// IdentityPath is the age identity file used to unseal
	// PasswordSealed.
	IdentityPath string `yaml:"identity_path"`
}

// Descriptor resolves the remote config into a connection descriptor,
// unsealing the password when it is stored sealed. A sealed password
// takes precedence over a plaintext one; a key path over both.
func (r RemoteConfig) Descriptor() (session.Descriptor, error) {
	descriptor := session.Descriptor{
		Address:  r.Address,
		Username: r.Username,
		KeyPath:  r.KeyPath,
		Password: r.Password,
	}
	if r.PasswordSealed != "" {
		if r.IdentityPath == "" {
			return session.Descriptor{}, errors.New("remote.password_sealed is set but remote.identity_path is not")
		}
		password, err := sealed.Unseal(r.PasswordSealed, r.IdentityPath)
		if err != nil {
			return session.Descriptor{}, fmt.Errorf("unsealing remote password: %w", err)
		}
		descriptor.Password = string(password)
	}
	return descriptor, nil
}

// Default returns the default configuration. These defaults are a base
// for the loaded file, not a substitute for it: builds need at least a
// project directory.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "anvil")

	return &Config{
		Paths: PathsConfig{
			Logs:    filepath.Join(defaultRoot, "logs"),
			Archive: filepath.Join(defaultRoot, "archive"),
		},
		Android: AndroidConfig{
			BuildType: "apk",
			Turbo:     true,
		},
		IOS: IOSConfig{
			BuildType: "simulator",
		},
		ScanRoots: []string{filepath.Join(homeDir, "src")},
	}
}

// Load loads configuration from the ANVIL_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks: if ANVIL_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("ANVIL_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("ANVIL_CONFIG environment variable not set; " +
			"set it to the path of your anvil.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values. The only expansion performed is
// ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.ProjectDir = expandVars(c.ProjectDir, vars)
	c.Paths.Logs = expandVars(c.Paths.Logs, vars)
	c.Paths.Archive = expandVars(c.Paths.Archive, vars)
	c.Remote.KeyPath = expandVars(c.Remote.KeyPath, vars)
	c.Remote.IdentityPath = expandVars(c.Remote.IdentityPath, vars)
	for name, value := range c.Android.Env {
		c.Android.Env[name] = expandVars(value, vars)
	}
	for i, root := range c.ScanRoots {
		c.ScanRoots[i] = expandVars(root, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.ProjectDir == "" {
		errs = append(errs, fmt.Errorf("project_dir is required"))
	}
	if c.Paths.Logs == "" {
		errs = append(errs, fmt.Errorf("paths.logs is required"))
	}
	if c.Paths.Archive == "" {
		errs = append(errs, fmt.Errorf("paths.archive is required"))
	}

	if c.Android.BuildType != "apk" && c.Android.BuildType != "aab" {
		errs = append(errs, fmt.Errorf("android.build_type must be apk or aab, got %q", c.Android.BuildType))
	}
	if c.IOS.BuildType != "device" && c.IOS.BuildType != "simulator" {
		errs = append(errs, fmt.Errorf("ios.build_type must be device or simulator, got %q", c.IOS.BuildType))
	}

	if c.Remote.Password != "" && c.Remote.PasswordSealed != "" {
		errs = append(errs, fmt.Errorf("remote.password and remote.password_sealed are mutually exclusive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the log and archive directories if absent.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Logs, c.Paths.Archive} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
