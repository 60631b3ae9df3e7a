package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/didkeeper/internal/client/backup"
	"github.com/dmitrijs2005/didkeeper/internal/client/identity"
	"github.com/dmitrijs2005/didkeeper/internal/common"
)

// getSimpleText, getSecret and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
	getMultiline  = GetMultiline
)

// Connect loads the device identity, creating one on first use.
func (a *App) Connect(ctx context.Context) error {
	kp, created, err := a.authService.ConnectIdentity(ctx)
	if err != nil {
		return err
	}
	if created {
		printlnFn("Created new identity:", kp.DID)
		printlnFn("Run 'backup' or 'phrase' now; the private key only exists on this device.")
		return nil
	}
	printlnFn("Using identity:", kp.DID)
	return nil
}

// Import replaces the stored identity with a DID and private key typed by
// the user. An empty DID derives one from the key.
func (a *App) Import(ctx context.Context) error {
	did, err := getSimpleText(a.reader, "DID (empty to derive it from the key)", a.out)
	if err != nil {
		return err
	}
	secret, err := getSecret(a.out, "Private key (64 hex characters)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	var kp *identity.Keypair
	if did == "" {
		kp, err = a.identities.ImportKey(ctx, strings.TrimSpace(string(secret)))
	} else {
		kp, err = a.identities.Import(ctx, did, strings.TrimSpace(string(secret)))
	}
	if err != nil {
		return err
	}

	printlnFn("Imported identity:", kp.DID)
	warnInconsistent(kp)
	return nil
}

// Export prints the raw key material.
func (a *App) Export(ctx context.Context) error {
	kp, err := a.identities.Export(ctx)
	if err != nil {
		return err
	}
	printlnFn(backup.Warning)
	printlnFn("DID:        ", kp.DID)
	printlnFn("Private key:", kp.PrivateKey)
	return nil
}

// Backup writes the identity to a file, sealed when a passphrase is given.
func (a *App) Backup(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Backup file path", a.out)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("a file path is required")
	}
	pass, err := getSecret(a.out, "Passphrase (empty for a plain file)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	kp, err := a.backupService.ExportFile(ctx, path, pass)
	if err != nil {
		return err
	}
	if len(pass) == 0 {
		printlnFn("Warning: backup is not encrypted.")
	}
	printlnFn(fmt.Sprintf("Backup of %s written to %s", kp.DID, path))
	return nil
}

// Restore imports an identity from a backup file, asking for the passphrase
// only when the file is sealed.
func (a *App) Restore(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Backup file path", a.out)
	if err != nil {
		return err
	}

	kp, err := a.backupService.ImportFile(ctx, path, nil)
	if errors.Is(err, backup.ErrPassphraseRequired) {
		var pass []byte
		pass, err = getSecret(a.out, "Passphrase")
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pass)
		kp, err = a.backupService.ImportFile(ctx, path, pass)
	}
	if err != nil {
		return err
	}

	printlnFn("Restored identity:", kp.DID)
	warnInconsistent(kp)
	return nil
}

// Phrase prints the recovery phrase of the stored key.
func (a *App) Phrase(ctx context.Context) error {
	phrase, err := a.backupService.Phrase(ctx)
	if err != nil {
		return err
	}
	printlnFn("Write these words down and keep them offline:")
	printlnFn(phrase)
	return nil
}

// Recover rebuilds the identity from a recovery phrase.
func (a *App) Recover(ctx context.Context) error {
	phrase, err := getSimpleText(a.reader, "Recovery phrase", a.out)
	if err != nil {
		return err
	}
	kp, err := a.backupService.Recover(ctx, phrase)
	if err != nil {
		return err
	}
	printlnFn("Recovered identity:", kp.DID)
	return nil
}

// Push uploads a sealed backup to the configured bucket.
func (a *App) Push(ctx context.Context) error {
	pass, err := getSecret(a.out, "Passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	key, err := a.backupService.Push(ctx, pass)
	if err != nil {
		return err
	}
	printlnFn("Remote backup stored at", key)
	return nil
}

// Pull downloads and imports a sealed backup from the configured bucket.
func (a *App) Pull(ctx context.Context) error {
	did, err := getSimpleText(a.reader, "DID to restore (empty for the current one)", a.out)
	if err != nil {
		return err
	}
	pass, err := getSecret(a.out, "Passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	kp, err := a.backupService.Pull(ctx, did, pass)
	if err != nil {
		return err
	}
	printlnFn("Restored identity:", kp.DID)
	return nil
}

func warnInconsistent(kp *identity.Keypair) {
	if !kp.Consistent() {
		printlnFn("Warning: the DID does not match the public key of the private key; login will fail.")
	}
}
