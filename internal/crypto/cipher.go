package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	ivSize  = 12
	tagSize = 16
	keySize = 32
)

var (
	ErrInvalidKey       = errors.New("encryption key must be 32 bytes")
	ErrNotConfigured    = errors.New("token encryption is not configured")
	ErrMalformedPayload = errors.New("malformed encrypted payload")
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
	ErrEmptyPlaintext   = errors.New("plaintext is empty")
)

// TokenCipher seals and opens OAuth tokens with AES-256-GCM. The stored
// format is base64(IV(12) || AuthTag(16) || Ciphertext): the tag is moved in
// front of the ciphertext so the layout matches the rest of the platform.
// A nil *TokenCipher refuses every call with ErrNotConfigured, so the server
// can start without an encryption key and fail only the endpoints that need
// one.
type TokenCipher struct {
	aead cipher.AEAD
}

func NewTokenCipher(key []byte) (*TokenCipher, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &TokenCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random 96-bit IV.
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generating IV: %w", err)
	}

	// Seal appends ciphertext||tag; the stored layout wants iv||tag||ciphertext.
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	ctLen := len(sealed) - tagSize
	ciphertext, tag := sealed[:ctLen], sealed[ctLen:]

	payload := make([]byte, 0, ivSize+tagSize+ctLen)
	payload = append(payload, iv...)
	payload = append(payload, tag...)
	payload = append(payload, ciphertext...)

	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt opens a sealed payload, failing closed on any truncation, tag
// mismatch, or bit flip anywhere in the blob.
func (c *TokenCipher) Decrypt(encoded string) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformedPayload
	}
	if len(payload) < ivSize+tagSize {
		return "", ErrMalformedPayload
	}

	iv := payload[:ivSize]
	tag := payload[ivSize : ivSize+tagSize]
	ciphertext := payload[ivSize+tagSize:]

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
