package identity

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/didkeeper/internal/client/storage"
	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
)

// Manager creates, imports and loads the local identity kept in storage.
type Manager struct {
	storage storage.Storage
	method  string
	rand    io.Reader
}

// NewManager returns a Manager creating DIDs with method. An empty method
// means common.DefaultDIDMethod, a nil rand means crypto/rand.
func NewManager(s storage.Storage, method string, rand io.Reader) *Manager {
	if method == "" {
		method = common.DefaultDIDMethod
	}
	return &Manager{storage: s, method: method, rand: rand}
}

// Method is the DID method used for new identities.
func (m *Manager) Method() string {
	return m.method
}

// Create generates a fresh keypair, stores it and returns it. An existing
// identity is overwritten.
func (m *Manager) Create(ctx context.Context) (*Keypair, error) {
	seed, err := cryptox.GenerateSeed(m.rand)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(seed)

	privateKey := hex.EncodeToString(seed)
	did, err := cryptox.DeriveDID(m.method, privateKey)
	if err != nil {
		return nil, err
	}

	kp := &Keypair{DID: did, PrivateKey: privateKey}
	if err := m.store(ctx, kp); err != nil {
		return nil, err
	}
	return kp, nil
}

// Load returns the stored identity, or common.ErrNoIdentity unless both the
// DID and the private key are present.
func (m *Manager) Load(ctx context.Context) (*Keypair, error) {
	did, ok, err := m.storage.Get(ctx, common.StorageKeyDID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNoIdentity
	}

	privateKey, ok, err := m.storage.Get(ctx, common.StorageKeyPrivateKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNoIdentity
	}

	return &Keypair{DID: did, PrivateKey: privateKey}, nil
}

// Has only checks for the DID; it does not validate the private key.
func (m *Manager) Has(ctx context.Context) (bool, error) {
	_, ok, err := m.storage.Get(ctx, common.StorageKeyDID)
	return ok, err
}

func (m *Manager) Clear(ctx context.Context) error {
	return m.storage.Remove(ctx, common.StorageKeyDID, common.StorageKeyPrivateKey)
}

// Export is Load for the backup flows.
func (m *Manager) Export(ctx context.Context) (*Keypair, error) {
	return m.Load(ctx)
}

// Import replaces the stored identity with did and privateKey, stored
// verbatim. Both fields are validated before anything is written; the
// returned *common.ValidationError lists every malformed field.
func (m *Manager) Import(ctx context.Context, did, privateKey string) (*Keypair, error) {
	if err := Validate(did, privateKey); err != nil {
		return nil, err
	}

	kp := &Keypair{DID: did, PrivateKey: privateKey}
	if err := m.store(ctx, kp); err != nil {
		return nil, err
	}
	return kp, nil
}

// ImportKey imports privateKey under the DID derived from it with the
// manager's method.
func (m *Manager) ImportKey(ctx context.Context, privateKey string) (*Keypair, error) {
	if !cryptox.ValidPrivateKeyHex(privateKey) {
		return nil, &common.ValidationError{Fields: []error{common.ErrInvalidPrivateKey}}
	}
	did, err := cryptox.DeriveDID(m.method, privateKey)
	if err != nil {
		return nil, err
	}
	return m.Import(ctx, did, privateKey)
}

// Validate checks the format of an identity about to be imported.
func Validate(did, privateKey string) error {
	var fields []error
	if _, _, err := cryptox.ParseDID(did); err != nil {
		fields = append(fields, fmt.Errorf("%w: expected did:<method>:<64 hex public key>", common.ErrInvalidDID))
	}
	if !cryptox.ValidPrivateKeyHex(privateKey) {
		fields = append(fields, common.ErrInvalidPrivateKey)
	}
	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	return nil
}

func (m *Manager) store(ctx context.Context, kp *Keypair) error {
	err := m.storage.Update(ctx, map[string]string{
		common.StorageKeyDID:        kp.DID,
		common.StorageKeyPrivateKey: kp.PrivateKey,
	}, nil)
	if err != nil {
		if errors.Is(err, common.ErrStorageUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}
