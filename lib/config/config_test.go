// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anvil-build/anvil/lib/sealed"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Android.BuildType != "apk" {
		t.Errorf("android.build_type: got %s, want apk", cfg.Android.BuildType)
	}
	if !cfg.Android.Turbo {
		t.Error("android.turbo: got false, want true")
	}
	if cfg.IOS.BuildType != "simulator" {
		t.Errorf("ios.build_type: got %s, want simulator", cfg.IOS.BuildType)
	}
	if cfg.Paths.Logs == "" || cfg.Paths.Archive == "" {
		t.Error("default paths must be non-empty")
	}
}

func TestLoadRequiresAnvilConfig(t *testing.T) {
	origConfig := os.Getenv("ANVIL_CONFIG")
	defer os.Setenv("ANVIL_CONFIG", origConfig)
	os.Unsetenv("ANVIL_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when ANVIL_CONFIG not set, got nil")
	}
	if !strings.Contains(err.Error(), "ANVIL_CONFIG") {
		t.Errorf("error %q does not mention ANVIL_CONFIG", err)
	}
}

func TestLoadWithAnvilConfig(t *testing.T) {
	origConfig := os.Getenv("ANVIL_CONFIG")
	defer os.Setenv("ANVIL_CONFIG", origConfig)

	configPath := filepath.Join(t.TempDir(), "anvil.yaml")
	configContent := `
project_dir: /work/myapp
android:
  build_type: aab
ios:
  scheme: MyApp
  remote_path: /Users/builder/myapp
  build_type: device
remote:
  address: 10.0.0.5
  username: builder
  password: secret
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Setenv("ANVIL_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ProjectDir != "/work/myapp" {
		t.Errorf("project_dir: got %s", cfg.ProjectDir)
	}
	if cfg.Android.BuildType != "aab" {
		t.Errorf("android.build_type: got %s, want aab", cfg.Android.BuildType)
	}
	// Fields absent from the file keep their defaults.
	if !cfg.Android.Turbo {
		t.Error("android.turbo default lost during load")
	}
	if cfg.IOS.Scheme != "MyApp" {
		t.Errorf("ios.scheme: got %s", cfg.IOS.Scheme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFile of missing file succeeded")
	}
}

func TestExpandVariables(t *testing.T) {
	origHome := os.Getenv("HOME")
	defer os.Setenv("HOME", origHome)
	os.Setenv("HOME", "/home/builder")

	configPath := filepath.Join(t.TempDir(), "anvil.yaml")
	configContent := `
project_dir: ${HOME}/src/myapp
paths:
  logs: ${HOME}/logs
  archive: ${ANVIL_MISSING_VAR:-/srv/archive}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.ProjectDir != "/home/builder/src/myapp" {
		t.Errorf("project_dir: got %s", cfg.ProjectDir)
	}
	if cfg.Paths.Logs != "/home/builder/logs" {
		t.Errorf("paths.logs: got %s", cfg.Paths.Logs)
	}
	if cfg.Paths.Archive != "/srv/archive" {
		t.Errorf("paths.archive default expansion: got %s", cfg.Paths.Archive)
	}
}

func TestAndroidEnvLoadsAndExpands(t *testing.T) {
	origHome := os.Getenv("HOME")
	defer os.Setenv("HOME", origHome)
	os.Setenv("HOME", "/home/builder")

	configPath := filepath.Join(t.TempDir(), "anvil.yaml")
	configContent := `
project_dir: /src/myapp
android:
  env:
    ANDROID_HOME: ${HOME}/Android/Sdk
    JAVA_HOME: /usr/lib/jvm/java-17
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got := cfg.Android.Env["ANDROID_HOME"]; got != "/home/builder/Android/Sdk" {
		t.Errorf("android.env ANDROID_HOME: got %s", got)
	}
	if got := cfg.Android.Env["JAVA_HOME"]; got != "/usr/lib/jvm/java-17" {
		t.Errorf("android.env JAVA_HOME: got %s", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ProjectDir = "/work/myapp"
	cfg.Android.BuildType = "exe"
	cfg.IOS.BuildType = "toaster"
	cfg.Remote.Password = "a"
	cfg.Remote.PasswordSealed = "b"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted invalid config")
	}
	for _, want := range []string{"android.build_type", "ios.build_type", "mutually exclusive"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate error %q missing %q", err, want)
		}
	}
}

func TestValidateRequiresProjectDir(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted empty project_dir")
	}
}

func TestRemoteDescriptorPlaintext(t *testing.T) {
	t.Parallel()
	remote := RemoteConfig{Address: "10.0.0.5", Username: "builder", Password: "secret"}

	descriptor, err := remote.Descriptor()
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if descriptor.Password != "secret" {
		t.Errorf("password: got %q", descriptor.Password)
	}
}

func TestRemoteDescriptorUnsealsPassword(t *testing.T) {
	t.Parallel()
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	identityPath := filepath.Join(t.TempDir(), "identity.txt")
	if err := os.WriteFile(identityPath, []byte(keypair.PrivateKey+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ciphertext, err := sealed.Seal([]byte("hunter2"), keypair.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	remote := RemoteConfig{
		Address:        "10.0.0.5",
		Username:       "builder",
		PasswordSealed: ciphertext,
		IdentityPath:   identityPath,
	}
	descriptor, err := remote.Descriptor()
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if descriptor.Password != "hunter2" {
		t.Errorf("unsealed password: got %q, want hunter2", descriptor.Password)
	}
}

func TestRemoteDescriptorSealedWithoutIdentity(t *testing.T) {
	t.Parallel()
	remote := RemoteConfig{Address: "10.0.0.5", Username: "builder", PasswordSealed: "abc"}
	if _, err := remote.Descriptor(); err == nil {
		t.Error("Descriptor with sealed password but no identity path succeeded")
	}
}

func TestEnsurePaths(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.Logs = filepath.Join(root, "logs")
	cfg.Paths.Archive = filepath.Join(root, "archive")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}
	for _, dir := range []string{cfg.Paths.Logs, cfg.Paths.Archive} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", dir)
		}
	}
}
