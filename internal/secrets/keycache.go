package secrets

import (
	"sync"

	"statekeep/internal/logging"
)

// KeyCache holds the process-wide encryption key. The key is derived once via
// Init and served to concurrent rule handlers; Clear invalidates it and must
// not interleave with an in-flight Protect or Unprotect, so both operations
// hold the read lock for their full duration.
type KeyCache struct {
	mu     sync.RWMutex
	key    *[KeySize]byte
	keyID  string
	logger *logging.Logger
}

// NewKeyCache creates an empty key cache
func NewKeyCache(logger *logging.Logger) *KeyCache {
	return &KeyCache{logger: logger}
}

// Init derives the encryption key from the supplied secret and caches it under
// keyID. Re-initializing replaces the cached key.
func (c *KeyCache) Init(secret []byte, keyID string) {
	key := DeriveKey(secret)

	c.mu.Lock()
	c.key = &key
	c.keyID = keyID
	c.mu.Unlock()

	c.logger.Info("secrets.key.initialized", "Encryption key derived and cached", map[string]interface{}{
		"key_id": keyID,
	})
}

// Get returns the cached key and its id, or KeyUnavailableError when no key
// has been initialized.
func (c *KeyCache) Get() (*[KeySize]byte, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.key == nil {
		return nil, "", KeyUnavailableError{}
	}
	return c.key, c.keyID, nil
}

// Clear invalidates the cached key. Safe to call when no key was ever derived.
func (c *KeyCache) Clear() {
	c.mu.Lock()
	cleared := c.key != nil
	if cleared {
		// Zero the key material before dropping the reference
		for i := range c.key {
			c.key[i] = 0
		}
	}
	c.key = nil
	c.keyID = ""
	c.mu.Unlock()

	if cleared {
		c.logger.Info("secrets.key.cleared", "Encryption key cleared from cache", nil)
	}
}

// Protect encrypts plaintext under the cached key identified by keyID.
// The returned field carries the ciphertext, nonce and key id needed for
// Unprotect.
func (c *KeyCache) Protect(plaintext []byte, keyID string) (EncryptedField, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.key == nil {
		return EncryptedField{}, KeyUnavailableError{KeyID: keyID}
	}
	if keyID != "" && keyID != c.keyID {
		return EncryptedField{}, KeyUnavailableError{KeyID: keyID}
	}

	ciphertext, nonce, err := seal(plaintext, c.key)
	if err != nil {
		return EncryptedField{}, err
	}

	return EncryptedField{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		KeyID:      c.keyID,
	}, nil
}

// Unprotect decrypts an EncryptedField. It fails with DecryptionError when the
// key is unavailable or mismatched, the field is malformed, or the ciphertext
// fails its integrity check.
func (c *KeyCache) Unprotect(field EncryptedField) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.key == nil {
		return nil, DecryptionError{KeyID: field.KeyID, Reason: "no key in cache"}
	}
	if field.KeyID != c.keyID {
		return nil, DecryptionError{KeyID: field.KeyID, Reason: "key id does not match cached key"}
	}
	if len(field.Nonce) != NonceSize {
		return nil, DecryptionError{KeyID: field.KeyID, Reason: "malformed nonce"}
	}

	plaintext, ok := open(field.Ciphertext, field.Nonce, c.key)
	if !ok {
		return nil, DecryptionError{KeyID: field.KeyID, Reason: "integrity check failed"}
	}

	return plaintext, nil
}
