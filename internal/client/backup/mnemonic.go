package backup

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidPhrase = errors.New("invalid recovery phrase")

// PhraseFromPrivateKey encodes a 32-byte private key as 24 BIP-39 words.
func PhraseFromPrivateKey(privateKeyHex string) (string, error) {
	if !cryptox.ValidPrivateKeyHex(privateKeyHex) {
		return "", common.ErrInvalidPrivateKey
	}
	entropy, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidPrivateKey, err)
	}
	defer common.WipeByteArray(entropy)

	return bip39.NewMnemonic(entropy)
}

// PrivateKeyFromPhrase returns the lowercase hex private key encoded by
// phrase. Case and extra whitespace are ignored; the checksum word must match.
func PrivateKeyFromPhrase(phrase string) (string, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")

	entropy, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhrase, err)
	}
	defer common.WipeByteArray(entropy)

	if len(entropy) != cryptox.SeedSize {
		return "", fmt.Errorf("%w: expected 24 words", ErrInvalidPhrase)
	}
	return hex.EncodeToString(entropy), nil
}
