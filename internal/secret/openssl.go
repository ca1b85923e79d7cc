package secret

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// openssl "enc" salted format
var saltedMagic = []byte("Salted__")

const (
	opensslSaltSize = 8
	opensslKeySize  = 32
)

// OpenSSL implements the OpenSSL salted AES-256-CBC format: a random 8 byte
// salt, key and IV derived with EVP_BytesToKey (MD5, one round) and PKCS#7
// padding. This is the format CryptoJS produces for AES.encrypt with a string
// passphrase.
//
// The format carries no integrity tag. A wrong passphrase or a tampered
// ciphertext is detected only heuristically, through invalid padding or
// output that is not valid UTF-8.
type OpenSSL struct{}

// NewOpenSSL returns the OpenSSL compatible cipher.
func NewOpenSSL() *OpenSSL {
	return &OpenSSL{}
}

// Encrypt encrypts plaintext and returns the base64 encoded salted payload.
func (OpenSSL) Encrypt(plaintext, passphrase string) (string, error) {
	salt, err := randomBytes(opensslSaltSize)
	if err != nil {
		return "", errors.Wrap(ErrEncryption, err.Error())
	}
	key, iv := evpBytesToKey([]byte(passphrase), salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Wrap(ErrEncryption, "cannot create new aes block cipher")
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	out := make([]byte, 0, len(saltedMagic)+len(salt)+len(ciphertext))
	out = append(out, saltedMagic...)
	out = append(out, salt...)
	out = append(out, ciphertext...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (OpenSSL) Decrypt(ciphertext, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(ErrDecryption, "malformed base64 payload")
	}
	if !isOpenSSL(raw) {
		return "", errors.Wrap(ErrDecryption, "missing salted header")
	}

	salt := raw[len(saltedMagic) : len(saltedMagic)+opensslSaltSize]
	data := raw[len(saltedMagic)+opensslSaltSize:]
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", errors.Wrap(ErrDecryption, "ciphertext is not a multiple of the block size")
	}

	key, iv := evpBytesToKey([]byte(passphrase), salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Wrap(ErrDecryption, "cannot create new aes block cipher")
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", errors.Wrap(ErrDecryption, err.Error())
	}
	if !utf8.Valid(plain) {
		return "", errors.Wrap(ErrDecryption, "plaintext is not valid utf-8")
	}
	return string(plain), nil
}

func isOpenSSL(raw []byte) bool {
	return len(raw) >= len(saltedMagic)+opensslSaltSize && bytes.HasPrefix(raw, saltedMagic)
}

// evpBytesToKey mirrors OpenSSL's EVP_BytesToKey with MD5 and a single
// iteration.
func evpBytesToKey(passphrase, salt []byte) (key, iv []byte) {
	const size = opensslKeySize + aes.BlockSize

	var (
		derived = make([]byte, 0, size+md5.Size)
		prev    []byte
	)
	for len(derived) < size {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:opensslKeySize], derived[opensslKeySize:size]
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "cannot read random bytes")
	}
	return b, nil
}
