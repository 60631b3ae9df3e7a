package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
	"github.com/dmitrijs2005/didkeeper/internal/filex"
)

// Warning is written into every backup file.
const Warning = "KEEP THIS FILE SECURE! Anyone with this file can impersonate you."

const exportedAtLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrInvalidBackup      = errors.New("invalid backup file")
	ErrPassphraseRequired = errors.New("backup is encrypted, passphrase required")
)

// File is the JSON document produced by an export. Only DID and PrivateKey
// are read back on import.
type File struct {
	DID        string `json:"did"`
	PrivateKey string `json:"privateKey"`
	ExportedAt string `json:"exportedAt"`
	Warning    string `json:"warning"`
}

func NewFile(did, privateKey string, now time.Time) *File {
	return &File{
		DID:        did,
		PrivateKey: privateKey,
		ExportedAt: now.UTC().Format(exportedAtLayout),
		Warning:    Warning,
	}
}

func (f *File) Marshal() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// Parse decodes a plain backup. Both identity fields must be present; their
// format is checked by the identity import, not here.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if f.DID == "" || f.PrivateKey == "" {
		return nil, fmt.Errorf("%w: did and privateKey are required", ErrInvalidBackup)
	}
	return &f, nil
}

// Encode returns the file contents, sealed with passphrase when it is not
// empty.
func Encode(f *File, passphrase []byte) ([]byte, error) {
	raw, err := f.Marshal()
	if err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return raw, nil
	}
	return cryptox.Seal(passphrase, raw)
}

// Decode reverses Encode. A sealed backup without a passphrase yields
// ErrPassphraseRequired.
func Decode(data []byte, passphrase []byte) (*File, error) {
	if !cryptox.IsSealed(data) {
		return Parse(data)
	}
	if len(passphrase) == 0 {
		return nil, ErrPassphraseRequired
	}
	raw, err := cryptox.Open(passphrase, data)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// WriteFile stores f at path with owner-only permissions.
func WriteFile(path string, f *File, passphrase []byte) error {
	data, err := Encode(f, passphrase)
	if err != nil {
		return err
	}
	return filex.WriteFileSecure(path, data)
}

func ReadFile(path string, passphrase []byte) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, passphrase)
}
