// Package domain defines the encrypted envelope produced for every uploaded
// file and the parameters of the passphrase key derivation.
package domain

const (
	// SaltSize is the length of the per-envelope KDF salt.
	SaltSize = 16
	// IVSize is the length of the AES-GCM nonce stored with each envelope.
	IVSize = 16
	// AuthTagSize is the length of the GCM authentication tag.
	AuthTagSize = 16
	// KeySize is the length of the derived AES-256 key.
	KeySize = 32
)

// Envelope is the at-rest representation of one encrypted file.
//
// Salt and IV are generated fresh for every Encrypt call and are never
// derived from the passphrase or the content. Ciphertext has the same
// length as the plaintext; the tag is detached and stored separately.
type Envelope struct {
	Ciphertext []byte
	Salt       []byte
	IV         []byte
	AuthTag    []byte
}

// Validate checks that the header fields have the sizes Decrypt expects.
func (e *Envelope) Validate() error {
	if e == nil || len(e.Salt) != SaltSize || len(e.IV) != IVSize || len(e.AuthTag) != AuthTagSize {
		return ErrInvalidEnvelope
	}
	return nil
}
