// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/lexora-tui/internal/util"
)

// EncryptedPrefix marks sealed values.
const EncryptedPrefix = "ENC:"

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 32
	// PBKDF2Iterations is the default work factor.
	PBKDF2Iterations = 600000
	// SecretFile is the secret's name inside the data directory.
	SecretFile = "secret.key"
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	ErrDecryptionFailed  = errors.New("decryption failed: authentication tag mismatch")
	ErrInvalidSecret     = errors.New("invalid secret file")
)

// ZeroBytes overwrites key material.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts short strings for at-rest storage.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer loads the secret at secretPath, creating it (0600) on first use,
// and derives the sealing key. iterations <= 0 uses PBKDF2Iterations.
func NewSealer(secretPath string, iterations int) (*Sealer, error) {
	if iterations <= 0 {
		iterations = PBKDF2Iterations
	}

	secret, salt, err := loadOrCreateSecret(secretPath)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(secret)

	key := pbkdf2.Key(secret, salt, iterations, KeySize, sha256.New)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// secret file layout: hex(secret) ":" hex(salt)
func loadOrCreateSecret(path string) (secret, salt []byte, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return createSecret(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read secret: %w", err)
	}

	parts := strings.Split(strings.TrimSpace(string(data)), ":")
	if len(parts) != 2 {
		return nil, nil, ErrInvalidSecret
	}
	if secret, err = hex.DecodeString(parts[0]); err != nil || len(secret) != KeySize {
		return nil, nil, ErrInvalidSecret
	}
	if salt, err = hex.DecodeString(parts[1]); err != nil || len(salt) != SaltSize {
		return nil, nil, ErrInvalidSecret
	}
	return secret, salt, nil
}

func createSecret(path string) (secret, salt []byte, err error) {
	secret = make([]byte, KeySize)
	salt = make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	content := hex.EncodeToString(secret) + ":" + hex.EncodeToString(salt) + "\n"
	if err := util.AtomicWriteFile(path, []byte(content), 0o600); err != nil {
		return nil, nil, fmt.Errorf("write secret: %w", err)
	}
	return secret, salt, nil
}

// Seal encrypts plaintext and returns EncryptedPrefix + base64(nonce||ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the prefix are returned unchanged.
func (s *Sealer) Open(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", ErrInvalidCiphertext
	}
	plaintext, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsEncrypted checks if a value has the ENC: prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
