package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const minSecretLen = 16

// Keys are the independent keys derived from the one configured session secret
type Keys struct {
	Signing []byte
	Sealing []byte
}

// DeriveKeys expands secret into a token signing key and an API key sealing key
func DeriveKeys(secret string) (Keys, error) {
	if len(secret) < minSecretLen {
		return Keys{}, errors.New("session secret must be at least 16 bytes")
	}

	signing, err := expand(secret, "tutor-chat session token")
	if err != nil {
		return Keys{}, err
	}
	sealing, err := expand(secret, "tutor-chat api key sealing")
	if err != nil {
		return Keys{}, err
	}
	return Keys{Signing: signing, Sealing: sealing}, nil
}

func expand(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
