package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	keySize  = 32
	sealInfo = "supplyline credential token v1"
)

var ErrUnseal = errors.New("unseal token")

// Sealer encrypts the bearer token at rest with AES-256-GCM. The key is
// derived from the installation secret, and the namespace is bound in as
// additional data, so a copied database is useless to another installation.
type Sealer struct {
	aead cipher.AEAD
	aad  []byte
}

func NewSealer(secret []byte, namespace string) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty sealing secret")
	}
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &Sealer{aead: gcm, aad: []byte(namespace)}, nil
}

// Seal returns base64(nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), s.aad)
	return base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	data, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnseal, err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", fmt.Errorf("%w: sealed value too small", ErrUnseal)
	}
	plaintext, err := s.aead.Open(nil, data[:n], data[n:], s.aad)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnseal, err)
	}
	return string(plaintext), nil
}
