package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"

	"github.com/dmitrijs2005/didkeeper/internal/common"
)

// SeedSize is the length of a private key in bytes.
const SeedSize = ed25519.SeedSize

var privateKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// ValidPrivateKeyHex reports whether s is exactly 64 hex characters.
func ValidPrivateKeyHex(s string) bool {
	return privateKeyPattern.MatchString(s)
}

// GenerateSeed reads a fresh private key from r, or from crypto/rand when r
// is nil. Any failure of the source is reported as ErrRandomUnavailable;
// there is no fallback source.
func GenerateSeed(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		common.WipeByteArray(seed)
		return nil, fmt.Errorf("%w: %v", common.ErrRandomUnavailable, err)
	}
	return seed, nil
}

// DecodePrivateKeyHex turns the stored hex representation into an Ed25519
// signing key. Only the first SeedSize bytes are used: trailing bytes are
// ignored, not validated. Shorter input is rejected.
func DecodePrivateKeyHex(privateKeyHex string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPrivateKey, err)
	}
	defer common.WipeByteArray(raw)

	if len(raw) < SeedSize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", common.ErrInvalidPrivateKey, SeedSize, len(raw))
	}
	return ed25519.NewKeyFromSeed(raw[:SeedSize]), nil
}

// PublicKeyHex returns the lowercase hex encoding of the public half of priv.
func PublicKeyHex(priv ed25519.PrivateKey) string {
	return hex.EncodeToString(priv.Public().(ed25519.PublicKey))
}
