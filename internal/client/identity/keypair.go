package identity

import (
	"crypto/ed25519"

	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
)

// Keypair is a stored identity. PrivateKey is the 64 character hex seed.
type Keypair struct {
	DID        string
	PrivateKey string
}

// PublicKey derives the public half of the private key.
func (k *Keypair) PublicKey() (ed25519.PublicKey, error) {
	priv, err := cryptox.DecodePrivateKeyHex(k.PrivateKey)
	if err != nil {
		return nil, err
	}
	return priv.Public().(ed25519.PublicKey), nil
}

// Consistent reports whether DID embeds the public key of PrivateKey. An
// imported keypair is not required to be consistent, but the server will
// reject its signatures if it is not.
func (k *Keypair) Consistent() bool {
	method, _, err := cryptox.ParseDID(k.DID)
	if err != nil {
		return false
	}
	derived, err := cryptox.DeriveDID(method, k.PrivateKey)
	if err != nil {
		return false
	}
	return derived == k.DID
}

// String omits the private key so a Keypair can be logged safely.
func (k *Keypair) String() string {
	return "identity(" + k.DID + ")"
}
