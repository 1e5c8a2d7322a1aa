package security

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var hkdfSalt = []byte("stocksence/backup/v1")

// Cipher encrypts backup blobs and computes keyed checksums over their plaintext.
type Cipher struct {
	aead   cipher.AEAD
	macKey []byte
}

// NewCipher derives independent encryption and checksum keys from secret.
func NewCipher(secret string) (*Cipher, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("backup secret is required")
	}
	encKey, err := deriveKey(secret, "encryption", chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	macKey, err := deriveKey(secret, "checksum", 32)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(encKey)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return &Cipher{aead: aead, macKey: macKey}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any tampering yields an error.
func (c *Cipher) Decrypt(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("invalid ciphertext encoding")
	}
	if len(raw) < c.aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, errors.New("decrypt failed")
	}
	return plain, nil
}

// Checksum is a keyed BLAKE2b-256 digest of data, hex encoded.
func (c *Cipher) Checksum(data []byte) string {
	h, err := blake2b.New256(c.macKey)
	if err != nil {
		// macKey is always 32 bytes.
		panic(err)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyChecksum compares in constant time.
func (c *Cipher) VerifyChecksum(data []byte, sum string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Checksum(data)), []byte(sum)) == 1
}

func deriveKey(secret, info string, n int) ([]byte, error) {
	key := make([]byte, n)
	r := hkdf.New(sha256.New, []byte(secret), hkdfSalt, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}
