// Package cryptox wraps the AES-GCM sealing and argon2 key derivation used to
// encrypt audit events before they leave the process.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"golang.org/x/crypto/argon2"
)

// DefaultSalt is mixed into DeriveKey when the caller has no per-deployment salt.
var DefaultSalt = []byte("cvgenius-audit-v1")

var ErrInvalidEnvelope = errors.New("invalid encrypted envelope")

// DeriveKey stretches a passphrase into a 32-byte AES-256 key (argon2id).
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// Envelope is the serialised form of a sealed value.
type Envelope struct {
	Version    int    `json:"v"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Seal marshals v to JSON and encrypts it with AES-GCM under key.
// A fresh nonce is drawn for every call.
func Seal(v any, key []byte) (*Envelope, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	return &Envelope{Version: 1, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Open decrypts env with key and unmarshals the JSON payload into v.
func Open(env *Envelope, key []byte, v any) error {
	if env == nil {
		return ErrInvalidEnvelope
	}

	aead, err := newGCM(key)
	if err != nil {
		return err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return ErrInvalidEnvelope
	}

	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
