package cryptox

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// AssertionAlgorithm is the JOSE name of the Ed25519 signature scheme.
const AssertionAlgorithm = "EdDSA"

// AssertionHeader is the first segment of a signed assertion. Typ is kept
// for compatibility with JWT tooling only.
type AssertionHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var segmentEncoding = base64.RawURLEncoding

// Sign binds message to the key in privateKeyHex and returns
// base64url(header) + "." + base64url(message) + "." + base64url(signature).
// The signature covers the ASCII bytes of the first two segments joined by a
// dot. The message is embedded as is, without any wrapping.
//
// Only the first 32 decoded key bytes are used, see DecodePrivateKeyHex.
func Sign(message, privateKeyHex string) (string, error) {
	priv, err := DecodePrivateKeyHex(privateKeyHex)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrSigningFailed, err)
	}
	defer common.WipeByteArray(priv)

	return SignWithKey(message, priv)
}

// SignWithKey is Sign for an already decoded key.
func SignWithKey(message string, priv ed25519.PrivateKey) (string, error) {
	header, err := json.Marshal(AssertionHeader{Alg: AssertionAlgorithm, Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrSigningFailed, err)
	}

	signingInput := segmentEncoding.EncodeToString(header) + "." + segmentEncoding.EncodeToString([]byte(message))

	sig, err := jwt.SigningMethodEdDSA.Sign(signingInput, priv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrSigningFailed, err)
	}

	return signingInput + "." + segmentEncoding.EncodeToString(sig), nil
}

// DecodedAssertion is a signed assertion split into its decoded parts.
type DecodedAssertion struct {
	Header       AssertionHeader
	Payload      string
	Signature    []byte
	SigningInput string
}

// DecodeAssertion splits and decodes token without checking the signature.
func DecodeAssertion(token string) (*DecodedAssertion, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", common.ErrInvalidAssertion, len(parts))
	}

	rawHeader, err := segmentEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", common.ErrInvalidAssertion, err)
	}
	var header AssertionHeader
	if err := json.Unmarshal(rawHeader, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", common.ErrInvalidAssertion, err)
	}

	payload, err := segmentEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", common.ErrInvalidAssertion, err)
	}

	sig, err := segmentEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", common.ErrInvalidAssertion, err)
	}

	return &DecodedAssertion{
		Header:       header,
		Payload:      string(payload),
		Signature:    sig,
		SigningInput: parts[0] + "." + parts[1],
	}, nil
}

// VerifyAssertion checks token against pub and returns the embedded payload.
func VerifyAssertion(token string, pub ed25519.PublicKey) (string, error) {
	decoded, err := DecodeAssertion(token)
	if err != nil {
		return "", err
	}
	if decoded.Header.Alg != AssertionAlgorithm {
		return "", fmt.Errorf("%w: unsupported algorithm %q", common.ErrInvalidAssertion, decoded.Header.Alg)
	}
	if err := jwt.SigningMethodEdDSA.Verify(decoded.SigningInput, decoded.Signature, pub); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidAssertion, err)
	}
	return decoded.Payload, nil
}
