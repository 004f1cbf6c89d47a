// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDescriptorValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor Descriptor
		wantOK     bool
	}{
		{
			name:       "complete with password",
			descriptor: Descriptor{Address: "10.0.0.5", Username: "builder", Password: "secret"},
			wantOK:     true,
		},
		{
			name:       "complete with key",
			descriptor: Descriptor{Address: "mac-mini.local:2222", Username: "builder", KeyPath: "/home/builder/.ssh/id_ed25519"},
			wantOK:     true,
		},
		{
			name:       "empty address",
			descriptor: Descriptor{Username: "builder", Password: "secret"},
		},
		{
			name:       "whitespace address",
			descriptor: Descriptor{Address: "   ", Username: "builder", Password: "secret"},
		},
		{
			name:       "empty username",
			descriptor: Descriptor{Address: "10.0.0.5", Password: "secret"},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := test.descriptor.Validate()
			if test.wantOK && err != nil {
				t.Errorf("Validate: unexpected error: %v", err)
			}
			if !test.wantOK && err == nil {
				t.Error("Validate: expected error, got nil")
			}
		})
	}
}

func TestDescriptorValidateNoCredentials(t *testing.T) {
	t.Parallel()
	descriptor := Descriptor{Address: "10.0.0.5", Username: "builder"}
	err := descriptor.Validate()

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Validate: got %v, want AuthenticationError", err)
	}
	if authErr.Reason != AuthNoCredentials {
		t.Errorf("reason: got %q, want %q", authErr.Reason, AuthNoCredentials)
	}
}

func TestDescriptorHostPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    string
	}{
		{"10.0.0.5", "10.0.0.5:22"},
		{"mac-mini.local", "mac-mini.local:22"},
		{"10.0.0.5:2222", "10.0.0.5:2222"},
	}
	for _, test := range tests {
		got := Descriptor{Address: test.address}.hostPort()
		if got != test.want {
			t.Errorf("hostPort(%q): got %q, want %q", test.address, got, test.want)
		}
	}
}

func TestAuthMethodKeyNotFound(t *testing.T) {
	t.Parallel()
	descriptor := Descriptor{
		Address:  "10.0.0.5",
		Username: "builder",
		KeyPath:  filepath.Join(t.TempDir(), "missing_key"),
	}

	_, err := descriptor.authMethod()
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("authMethod: got %v, want AuthenticationError", err)
	}
	if authErr.Reason != AuthKeyNotFound {
		t.Errorf("reason: got %q, want %q", authErr.Reason, AuthKeyNotFound)
	}
}

func TestAuthMethodKeyWinsOverPassword(t *testing.T) {
	t.Parallel()
	// Both credentials set with a nonexistent key: the key path must
	// be consulted first, so the result is key-not-found rather than
	// a silent fall-through to the password.
	descriptor := Descriptor{
		Address:  "10.0.0.5",
		Username: "builder",
		KeyPath:  filepath.Join(t.TempDir(), "missing_key"),
		Password: "secret",
	}

	_, err := descriptor.authMethod()
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("authMethod: got %v, want AuthenticationError", err)
	}
	if authErr.Reason != AuthKeyNotFound {
		t.Errorf("reason: got %q, want %q", authErr.Reason, AuthKeyNotFound)
	}
}
