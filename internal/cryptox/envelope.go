package cryptox

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/didkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	envelopeKDF     = "argon2id"
	envelopeSalt    = 16
	envelopePrefix  = "DIDKEEPER-ENC1\n"

	// Upper bound accepted from a file so a crafted envelope cannot make
	// decryption allocate gigabytes.
	maxKDFMemoryKB = 1 << 20
)

var (
	ErrEnvelopeAuth    = errors.New("wrong passphrase or corrupted backup")
	ErrEnvelopeInvalid = errors.New("backup envelope is invalid")
)

// Envelope is the on-disk form of a passphrase-protected payload.
type Envelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Seal encrypts plaintext under a key derived from passphrase with argon2id
// and returns the prefixed JSON envelope.
func Seal(passphrase []byte, plaintext []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("passphrase is required")
	}

	env := &Envelope{
		Version:     envelopeVersion,
		KDF:         envelopeKDF,
		KDFTime:     2,
		KDFMemoryKB: 64 * 1024,
		KDFThreads:  1,
		Salt:        make([]byte, envelopeSalt),
		Nonce:       make([]byte, chacha20poly1305.NonceSizeX),
	}
	if _, err := rand.Read(env.Salt); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRandomUnavailable, err)
	}
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRandomUnavailable, err)
	}

	key := deriveEnvelopeKey(passphrase, env)
	defer common.WipeByteArray(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	env.Ciphertext = aead.Seal(nil, env.Nonce, plaintext, []byte(envelopePrefix))

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(envelopePrefix), raw...), nil
}

// IsSealed reports whether data looks like the output of Seal.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envelopePrefix))
}

// Open reverses Seal.
func Open(passphrase []byte, data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return nil, ErrEnvelopeInvalid
	}

	var env Envelope
	if err := json.Unmarshal(data[len(envelopePrefix):], &env); err != nil {
		return nil, ErrEnvelopeInvalid
	}
	if env.Version != envelopeVersion || env.KDF != envelopeKDF ||
		env.KDFTime == 0 || env.KDFThreads == 0 ||
		env.KDFMemoryKB == 0 || env.KDFMemoryKB > maxKDFMemoryKB ||
		len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrEnvelopeInvalid
	}

	key := deriveEnvelopeKey(passphrase, &env)
	defer common.WipeByteArray(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, []byte(envelopePrefix))
	if err != nil {
		return nil, ErrEnvelopeAuth
	}
	return plaintext, nil
}

func deriveEnvelopeKey(passphrase []byte, env *Envelope) []byte {
	return argon2.IDKey(passphrase, env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
}
