package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrUnsealFailed is returned when a sealed value is malformed, tampered with
// or bound to a different owner
var ErrUnsealFailed = errors.New("failed to unseal value")

// Encryptor seals short secrets such as provider API keys with AES-GCM. A
// sealed value is bound to an owner string through the AEAD associated data,
// so it only opens for the same owner.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor takes a 16, 24 or 32 byte key
func NewEncryptor(key []byte) (*Encryptor, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("invalid key length: %d (must be 16, 24, or 32)", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Encryptor{aead: gcm}, nil
}

// GenerateKey returns 32 random bytes
func GenerateKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Seal encrypts secret for owner and returns URL-safe base64 of
// nonce || ciphertext, suitable for a JWT claim
func (e *Encryptor) Seal(secret, owner string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(secret), []byte(owner))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal for the same owner
func (e *Encryptor) Open(sealed, owner string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsealFailed, err)
	}

	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: too short", ErrUnsealFailed)
	}

	secret, err := e.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], []byte(owner))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsealFailed, err)
	}
	return string(secret), nil
}
