// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
)

// Keypair holds an age x25519 keypair. The private key must never be
// logged or stored next to the ciphertext it protects; the public key
// is safe to publish.
type Keypair struct {
	// PrivateKey in AGE-SECRET-KEY-1... format.
	PrivateKey string

	// PublicKey in age1... format.
	PublicKey string
}

// GenerateKeypair generates a new age x25519 keypair.
func GenerateKeypair() (Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return Keypair{}, fmt.Errorf("generating age keypair: %w", err)
	}
	return Keypair{
		PrivateKey: identity.String(),
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// Seal encrypts plaintext to the recipient's age public key and
// returns base64 ciphertext suitable for a config string field.
func Seal(plaintext []byte, recipientKey string) (string, error) {
	recipient, err := age.ParseX25519Recipient(recipientKey)
	if err != nil {
		return "", fmt.Errorf("parsing recipient key: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return "", fmt.Errorf("writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Unseal decrypts base64 ciphertext with the identities found in the
// given identity file (as written by age-keygen, or a bare
// AGE-SECRET-KEY-1... line).
func Unseal(ciphertext, identityPath string) ([]byte, error) {
	identityFile, err := os.Open(identityPath)
	if err != nil {
		return nil, fmt.Errorf("opening identity file: %w", err)
	}
	defer identityFile.Close()

	identities, err := age.ParseIdentities(identityFile)
	if err != nil {
		return nil, fmt.Errorf("parsing identity file %s: %w", identityPath, err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 ciphertext: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(raw), identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}

// ParsePublicKey validates an age public key string.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}
