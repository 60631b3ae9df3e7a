package cryptox

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"

	"filippo.io/edwards25519"
	"github.com/dmitrijs2005/didkeeper/internal/common"
)

// DIDPrefix starts every decentralized identifier.
const DIDPrefix = "did:"

var (
	methodPattern = regexp.MustCompile(`^[a-z0-9]+$`)
	didPattern    = regexp.MustCompile(`^did:([a-z0-9]+):([0-9a-f]{64})$`)
)

// FormatDID builds did:<method>:<lowercase hex of pub>. The public key must be
// the full 32 bytes; anything else would produce an identifier derived from a
// truncated key.
func FormatDID(method string, pub ed25519.PublicKey) (string, error) {
	if !methodPattern.MatchString(method) {
		return "", fmt.Errorf("%w: method %q", common.ErrInvalidDID, method)
	}
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: public key is %d bytes", common.ErrInvalidDID, len(pub))
	}
	return DIDPrefix + method + ":" + hex.EncodeToString(pub), nil
}

// DeriveDID returns the DID of the identity owning privateKeyHex.
func DeriveDID(method, privateKeyHex string) (string, error) {
	priv, err := DecodePrivateKeyHex(privateKeyHex)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(priv)

	return FormatDID(method, priv.Public().(ed25519.PublicKey))
}

// ParseDID splits a DID into its method and embedded public key. The key must
// be 64 lowercase hex characters encoding a valid Edwards25519 point.
func ParseDID(did string) (string, ed25519.PublicKey, error) {
	m := didPattern.FindStringSubmatch(did)
	if m == nil {
		return "", nil, fmt.Errorf("%w: %q", common.ErrInvalidDID, did)
	}

	pub, err := hex.DecodeString(m[2])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrInvalidDID, err)
	}
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return "", nil, fmt.Errorf("%w: public key is not a curve point", common.ErrInvalidDID)
	}
	return m[1], ed25519.PublicKey(pub), nil
}

// PublicKeyFromDID parses did and, when allowedMethods is not empty, also
// checks that its method is one of them.
func PublicKeyFromDID(did string, allowedMethods ...string) (ed25519.PublicKey, error) {
	method, pub, err := ParseDID(did)
	if err != nil {
		return nil, err
	}
	if len(allowedMethods) > 0 && !slices.Contains(allowedMethods, method) {
		return nil, fmt.Errorf("%w: unsupported method %q", common.ErrInvalidDID, method)
	}
	return pub, nil
}
