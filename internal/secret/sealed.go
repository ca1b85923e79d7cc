package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

const sealedVersion byte = 1

const (
	keySize   = 32
	saltSize  = 16
	nonceSize = 12 // standard GCM nonce size

	// version, time, memory, threads
	headerSize = 1 + 1 + 4 + 1

	maxMemoryKiB = 4 * 1024 * 1024

	// floors for what a record header may ask of the reader
	readTimeFloor      = 8
	readMemoryKiBFloor = 1024 * 1024
	readThreadsFloor   = 16
)

// KDFParams are the Argon2id cost parameters used to turn a passphrase into
// an AES-256 key. They are written into every sealed record.
type KDFParams struct {
	Time      uint8
	MemoryKiB uint32
	Threads   uint8
}

// DefaultKDFParams follow the RFC 9106 second recommended option.
var DefaultKDFParams = KDFParams{
	Time:      1,
	MemoryKiB: 64 * 1024,
	Threads:   4,
}

func (p KDFParams) validate() error {
	if p.Time == 0 {
		return errors.New("argon2 time must be positive")
	}
	if p.Threads == 0 {
		return errors.New("argon2 threads must be positive")
	}
	if p.MemoryKiB < 8*uint32(p.Threads) {
		return errors.Errorf("argon2 memory must be at least %d KiB", 8*uint32(p.Threads))
	}
	if p.MemoryKiB > maxMemoryKiB {
		return errors.Errorf("argon2 memory must not exceed %d KiB", maxMemoryKiB)
	}
	return nil
}

// within rejects parameters costing more than four times limit, with
// floors so readers configured cheaply still open ordinary records.
func (p KDFParams) within(limit KDFParams) error {
	if t := max(readTimeFloor, 4*uint32(limit.Time)); uint32(p.Time) > t {
		return errors.Errorf("argon2 time %d exceeds the read limit of %d", p.Time, t)
	}
	if m := max(readMemoryKiBFloor, 4*uint64(limit.MemoryKiB)); uint64(p.MemoryKiB) > m {
		return errors.Errorf("argon2 memory %d KiB exceeds the read limit of %d KiB", p.MemoryKiB, m)
	}
	if n := max(readThreadsFloor, 4*uint32(limit.Threads)); uint32(p.Threads) > n {
		return errors.Errorf("argon2 threads %d exceed the read limit of %d", p.Threads, n)
	}
	return nil
}

func (p KDFParams) key(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, uint32(p.Time), p.MemoryKiB, p.Threads, keySize)
}

// Sealed encrypts with AES-256-GCM under an Argon2id key derived from the
// passphrase and a random per-record salt. Wrong passphrases and modified
// ciphertexts are always rejected with ErrDecryption.
//
// Layout before base64:
//
//	version(1) | time(1) | memory KiB(4, big endian) | threads(1) | salt(16) | nonce(12) | ciphertext+tag
//
// Decrypt refuses records whose header asks for much more work than the
// reader's own parameters, before deriving any key.
//
// Sealed also reads the OpenSSL format so records written before the switch
// stay readable.
type Sealed struct {
	params KDFParams
	legacy *OpenSSL
}

// NewSealed returns a Sealed cipher producing records with the given
// parameters.
func NewSealed(params KDFParams) *Sealed {
	return &Sealed{params: params, legacy: NewOpenSSL()}
}

// Encrypt seals plaintext and returns the base64 encoded record.
func (s *Sealed) Encrypt(plaintext, passphrase string) (string, error) {
	salt, err := randomBytes(saltSize)
	if err != nil {
		return "", errors.Wrap(ErrEncryption, err.Error())
	}
	nonce, err := randomBytes(nonceSize)
	if err != nil {
		return "", errors.Wrap(ErrEncryption, err.Error())
	}

	gcm, err := newGCM(s.params.key([]byte(passphrase), salt))
	if err != nil {
		return "", errors.Wrap(ErrEncryption, err.Error())
	}

	header := make([]byte, headerSize)
	header[0] = sealedVersion
	header[1] = s.params.Time
	binary.BigEndian.PutUint32(header[2:6], s.params.MemoryKiB)
	header[6] = s.params.Threads

	out := make([]byte, 0, headerSize+saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, header...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), header)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a sealed record, or an OpenSSL record written by the legacy
// scheme.
func (s *Sealed) Decrypt(ciphertext, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(ErrDecryption, "malformed base64 payload")
	}
	if isOpenSSL(raw) {
		return s.legacy.Decrypt(ciphertext, passphrase)
	}
	if len(raw) < headerSize+saltSize+nonceSize {
		return "", errors.Wrap(ErrDecryption, "record is truncated")
	}
	if raw[0] != sealedVersion {
		return "", errors.Wrapf(ErrDecryption, "unsupported record version %d", raw[0])
	}

	params := KDFParams{
		Time:      raw[1],
		MemoryKiB: binary.BigEndian.Uint32(raw[2:6]),
		Threads:   raw[6],
	}
	if err := params.validate(); err != nil {
		return "", errors.Wrap(ErrDecryption, err.Error())
	}
	if err := params.within(s.params); err != nil {
		return "", errors.Wrap(ErrDecryption, err.Error())
	}

	salt := raw[headerSize : headerSize+saltSize]
	nonce := raw[headerSize+saltSize : headerSize+saltSize+nonceSize]
	sealed := raw[headerSize+saltSize+nonceSize:]

	gcm, err := newGCM(params.key([]byte(passphrase), salt))
	if err != nil {
		return "", errors.Wrap(ErrDecryption, err.Error())
	}
	plain, err := gcm.Open(nil, nonce, sealed, raw[:headerSize])
	if err != nil {
		return "", errors.Wrap(ErrDecryption, "cannot open sealed record")
	}
	return string(plain), nil
}

// Params returns the parameters new records are sealed with.
func (s *Sealed) Params() KDFParams {
	return s.params
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create new aes block cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create new gcm cipher")
	}
	return gcm, nil
}
