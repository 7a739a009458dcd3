package secrets

// EncryptedField is the persisted form of a sensitive value. The ciphertext is
// authenticated; tampering is detected during Unprotect.
type EncryptedField struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
	KeyID      string `json:"key_id"`
}

// DecryptionError indicates that an EncryptedField could not be decrypted:
// the key is unavailable or mismatched, the field is malformed, or the
// integrity check failed.
type DecryptionError struct {
	KeyID  string
	Reason string
}

func (e DecryptionError) Error() string {
	if e.KeyID != "" {
		return "decryption failed for key " + e.KeyID + ": " + e.Reason
	}
	return "decryption failed: " + e.Reason
}

// KeyUnavailableError indicates that no key has been initialized in the cache
type KeyUnavailableError struct {
	KeyID string
}

func (e KeyUnavailableError) Error() string {
	if e.KeyID != "" {
		return "encryption key not available: " + e.KeyID
	}
	return "encryption key not available"
}
