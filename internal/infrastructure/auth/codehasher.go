package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/orris-inc/licensor/internal/shared/config"
)

// Argon2CodeHasher derives license verification hashes with Argon2id over
// "code:masterKey". Cost parameters come from configuration and must not
// change once licenses exist, or stored hashes stop verifying.
type Argon2CodeHasher struct {
	masterKey   string
	timeCost    uint32
	memoryCost  uint32
	parallelism uint8
	keyLength   uint32
	saltLength  int
}

func NewArgon2CodeHasher(masterKey string, kdf config.KDFConfig) *Argon2CodeHasher {
	h := &Argon2CodeHasher{
		masterKey:   masterKey,
		timeCost:    kdf.TimeCost,
		memoryCost:  kdf.MemoryCost,
		parallelism: kdf.Parallelism,
		keyLength:   kdf.KeyLength,
		saltLength:  kdf.SaltLength,
	}
	if h.timeCost == 0 {
		h.timeCost = 3
	}
	if h.memoryCost == 0 {
		h.memoryCost = 64 * 1024
	}
	if h.parallelism == 0 {
		h.parallelism = 4
	}
	if h.keyLength == 0 {
		h.keyLength = 32
	}
	if h.saltLength <= 0 {
		h.saltLength = 16
	}
	return h
}

// NewSalt returns a random base64 salt.
func (h *Argon2CodeHasher) NewSalt() (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(salt), nil
}

func (h *Argon2CodeHasher) Hash(code, salt string) (string, error) {
	key, err := h.derive(code, salt)
	if err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(key), nil
}

// Verify reports whether code reproduces hash. Stored material that does
// not decode can never match, so it is a mismatch rather than an error.
func (h *Argon2CodeHasher) Verify(code, salt, hash string) (bool, error) {
	want, err := base64.RawStdEncoding.DecodeString(hash)
	if err != nil {
		return false, nil
	}
	got, err := h.derive(code, salt)
	if err != nil {
		return false, nil
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (h *Argon2CodeHasher) derive(code, salt string) ([]byte, error) {
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	secret := []byte(code + ":" + h.masterKey)
	return argon2.IDKey(secret, rawSalt, h.timeCost, h.memoryCost, h.parallelism, h.keyLength), nil
}
