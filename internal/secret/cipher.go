package secret

import (
	"strings"

	"github.com/pkg/errors"
)

// Supported cipher modes.
const (
	ModeSealed  = "sealed"
	ModeOpenSSL = "openssl"
)

var (
	// ErrEncryption is returned when the underlying primitive fails while
	// encrypting. Nothing produced by a failed call may be stored.
	ErrEncryption = errors.New("failed to encrypt data")

	// ErrDecryption is returned when a ciphertext cannot be recovered with the
	// given passphrase.
	ErrDecryption = errors.New("failed to decrypt data: incorrect password or corrupted data")
)

// A Cipher turns a secret string into an opaque ciphertext string and back,
// keyed by a passphrase. Implementations are stateless and safe for
// concurrent use.
//
// Encrypting the same plaintext twice with the same passphrase yields
// different ciphertexts.
type Cipher interface {
	Encrypt(plaintext, passphrase string) (string, error)
	Decrypt(ciphertext, passphrase string) (string, error)
}

// New returns the Cipher for the given mode. An empty mode selects
// ModeSealed.
func New(mode string, params KDFParams) (Cipher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeSealed:
		if err := params.validate(); err != nil {
			return nil, errors.Wrap(err, "invalid key derivation parameters")
		}
		return NewSealed(params), nil
	case ModeOpenSSL:
		return NewOpenSSL(), nil
	default:
		return nil, errors.Errorf("unknown cipher mode %q", mode)
	}
}
