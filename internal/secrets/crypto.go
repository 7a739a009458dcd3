package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the size of the encryption key (32 bytes for NaCl secretbox)
	KeySize = 32
	// NonceSize is the size of the nonce (24 bytes for NaCl secretbox)
	NonceSize = 24
)

// DeriveKey derives a 32-byte secretbox key from an externally supplied secret
// using SHA-256. The same secret always yields the same key.
func DeriveKey(secret []byte) [KeySize]byte {
	return sha256.Sum256(secret)
}

// seal encrypts plaintext with a fresh random nonce and returns ciphertext and
// nonce separately. The ciphertext carries the secretbox authentication tag.
func seal(plaintext []byte, key *[KeySize]byte) (ciphertext, nonce []byte, err error) {
	var n [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, n[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return secretbox.Seal(nil, plaintext, &n, key), n[:], nil
}

// open decrypts ciphertext produced by seal. It returns false when the
// ciphertext fails authentication or the nonce is malformed.
func open(ciphertext, nonce []byte, key *[KeySize]byte) ([]byte, bool) {
	if len(nonce) != NonceSize {
		return nil, false
	}

	var n [NonceSize]byte
	copy(n[:], nonce)

	return secretbox.Open(nil, ciphertext, &n, key)
}
