package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/client/backup"
	"github.com/dmitrijs2005/didkeeper/internal/client/identity"
	"github.com/dmitrijs2005/didkeeper/internal/logging"
)

// BackupService moves the identity in and out of the device.
//
// Imports always replace the stored identity. An empty passphrase writes a
// plain JSON backup; reading a sealed one without a passphrase returns
// backup.ErrPassphraseRequired so the caller can ask for it.
type BackupService interface {
	ExportFile(ctx context.Context, path string, passphrase []byte) (*identity.Keypair, error)
	ImportFile(ctx context.Context, path string, passphrase []byte) (*identity.Keypair, error)
	Phrase(ctx context.Context) (string, error)
	Recover(ctx context.Context, phrase string) (*identity.Keypair, error)
	Push(ctx context.Context, passphrase []byte) (key string, err error)
	Pull(ctx context.Context, did string, passphrase []byte) (*identity.Keypair, error)
}

type backupService struct {
	identities *identity.Manager
	remote     backup.ObjectStore
	now        func() time.Time
	logger     logging.Logger
}

// NewBackupService returns a BackupService. remote may be nil, in which case
// Push and Pull fail with ErrRemoteNotConfigured.
func NewBackupService(ids *identity.Manager, remote backup.ObjectStore, now func() time.Time, logger logging.Logger) BackupService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &backupService{identities: ids, remote: remote, now: now, logger: logger}
}

func (s *backupService) ExportFile(ctx context.Context, path string, passphrase []byte) (*identity.Keypair, error) {
	kp, err := s.identities.Export(ctx)
	if err != nil {
		return nil, err
	}

	if err := backup.WriteFile(path, backup.NewFile(kp.DID, kp.PrivateKey, s.now()), passphrase); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}
	s.logger.Info(ctx, "identity exported", "did", kp.DID, "path", path, "encrypted", len(passphrase) > 0)
	return kp, nil
}

func (s *backupService) ImportFile(ctx context.Context, path string, passphrase []byte) (*identity.Keypair, error) {
	f, err := backup.ReadFile(path, passphrase)
	if err != nil {
		return nil, err
	}

	kp, err := s.identities.Import(ctx, f.DID, f.PrivateKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "identity imported", "did", kp.DID)
	return kp, nil
}

func (s *backupService) Phrase(ctx context.Context) (string, error) {
	kp, err := s.identities.Export(ctx)
	if err != nil {
		return "", err
	}
	return backup.PhraseFromPrivateKey(kp.PrivateKey)
}

// Recover restores the identity from a recovery phrase. The DID is derived
// with the manager's method since the phrase only carries the key.
func (s *backupService) Recover(ctx context.Context, phrase string) (*identity.Keypair, error) {
	privateKey, err := backup.PrivateKeyFromPhrase(phrase)
	if err != nil {
		return nil, err
	}

	kp, err := s.identities.ImportKey(ctx, privateKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "identity recovered from phrase", "did", kp.DID)
	return kp, nil
}

func (s *backupService) Push(ctx context.Context, passphrase []byte) (string, error) {
	if s.remote == nil {
		return "", ErrRemoteNotConfigured
	}
	if len(passphrase) == 0 {
		return "", backup.ErrPassphraseRequired
	}

	kp, err := s.identities.Export(ctx)
	if err != nil {
		return "", err
	}

	data, err := backup.Encode(backup.NewFile(kp.DID, kp.PrivateKey, s.now()), passphrase)
	if err != nil {
		return "", err
	}

	key := backup.ObjectKey(kp.DID)
	if err := s.remote.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}
	s.logger.Info(ctx, "remote backup stored", "did", kp.DID, "key", key)
	return key, nil
}

// Pull downloads the backup stored for did, or for the local identity when
// did is empty, and imports it.
func (s *backupService) Pull(ctx context.Context, did string, passphrase []byte) (*identity.Keypair, error) {
	if s.remote == nil {
		return nil, ErrRemoteNotConfigured
	}
	if did == "" {
		kp, err := s.identities.Load(ctx)
		if err != nil {
			return nil, err
		}
		did = kp.DID
	}

	data, err := s.remote.Get(ctx, backup.ObjectKey(did))
	if err != nil {
		return nil, err
	}

	f, err := backup.Decode(data, passphrase)
	if err != nil {
		return nil, err
	}
	if f.DID != did {
		return nil, fmt.Errorf("%w: backup belongs to %s", backup.ErrInvalidBackup, f.DID)
	}

	kp, err := s.identities.Import(ctx, f.DID, f.PrivateKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "identity restored from remote backup", "did", kp.DID)
	return kp, nil
}
