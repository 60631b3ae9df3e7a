package cli

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/client/backup"
	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/client/identity"
	"github.com/dmitrijs2005/didkeeper/internal/client/services"
	"github.com/dmitrijs2005/didkeeper/internal/client/storage"
	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	kp      *identity.Keypair
	created bool
	status  *services.Status
	me      *client.UserInfo
	pingErr error
	err     error

	logins, logouts int
}

func (f *fakeAuth) ConnectIdentity(context.Context) (*identity.Keypair, bool, error) {
	return f.kp, f.created, f.err
}
func (f *fakeAuth) Login(context.Context) error                           { f.logins++; return f.err }
func (f *fakeAuth) Logout(context.Context) error                          { f.logouts++; return f.err }
func (f *fakeAuth) CurrentUser(context.Context) (*client.UserInfo, error) { return f.me, f.err }
func (f *fakeAuth) Status(context.Context) (*services.Status, error)      { return f.status, f.err }
func (f *fakeAuth) Ping(context.Context) error                            { return f.pingErr }

type fakeBackup struct {
	kp     *identity.Keypair
	phrase string
	key    string

	// ImportFile fails with ErrPassphraseRequired until a passphrase is given.
	sealed bool

	gotPath   string
	gotPass   []string
	gotDID    string
	gotPhrase string
	err       error
}

func (f *fakeBackup) ExportFile(_ context.Context, path string, pass []byte) (*identity.Keypair, error) {
	f.gotPath = path
	f.gotPass = append(f.gotPass, string(pass))
	return f.kp, f.err
}
func (f *fakeBackup) ImportFile(_ context.Context, path string, pass []byte) (*identity.Keypair, error) {
	f.gotPath = path
	f.gotPass = append(f.gotPass, string(pass))
	if f.sealed && len(pass) == 0 {
		return nil, backup.ErrPassphraseRequired
	}
	return f.kp, f.err
}
func (f *fakeBackup) Phrase(context.Context) (string, error) { return f.phrase, f.err }
func (f *fakeBackup) Recover(_ context.Context, phrase string) (*identity.Keypair, error) {
	f.gotPhrase = phrase
	return f.kp, f.err
}
func (f *fakeBackup) Push(_ context.Context, pass []byte) (string, error) {
	f.gotPass = append(f.gotPass, string(pass))
	return f.key, f.err
}
func (f *fakeBackup) Pull(_ context.Context, did string, pass []byte) (*identity.Keypair, error) {
	f.gotDID = did
	f.gotPass = append(f.gotPass, string(pass))
	return f.kp, f.err
}

type fakeCampaigns struct {
	gotTx       string
	gotCampaign map[string]any
	list        []client.CampaignResponse
	err         error
}

func (f *fakeCampaigns) Submit(_ context.Context, tx string, c map[string]any) (*client.CampaignResponse, error) {
	f.gotTx, f.gotCampaign = tx, c
	if f.err != nil {
		return nil, f.err
	}
	return &client.CampaignResponse{JobID: "job-1", Status: "queued"}, nil
}
func (f *fakeCampaigns) List(context.Context) ([]client.CampaignResponse, error) {
	return f.list, f.err
}

// stubInputs answers text prompts from texts and secret prompts from secrets, in order.
func stubInputs(t *testing.T, texts []string, secrets []string) {
	t.Helper()
	origST, origGS, origML := getSimpleText, getSecret, getMultiline
	t.Cleanup(func() {
		getSimpleText, getSecret, getMultiline = origST, origGS, origML
	})

	next := func(q *[]string) (string, error) {
		if len(*q) == 0 {
			return "", io.EOF
		}
		v := (*q)[0]
		*q = (*q)[1:]
		return v, nil
	}
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return next(&texts) }
	getMultiline = func(*bufio.Reader, string, io.Writer) (string, error) { return next(&texts) }
	getSecret = func(io.Writer, string) ([]byte, error) {
		v, err := next(&secrets)
		return []byte(v), err
	}
}

func newTestKeypair(t *testing.T) *identity.Keypair {
	t.Helper()
	seed, err := cryptox.GenerateSeed(rand.Reader)
	require.NoError(t, err)
	priv := hex.EncodeToString(seed)
	did, err := cryptox.DeriveDID("prism", priv)
	require.NoError(t, err)
	return &identity.Keypair{DID: did, PrivateKey: priv}
}

func newTestApp() (*App, *fakeAuth, *fakeBackup, *fakeCampaigns) {
	fa, fb, fc := &fakeAuth{}, &fakeBackup{}, &fakeCampaigns{}
	return &App{
		identities:      identity.NewManager(storage.NewMemoryStorage(), "prism", rand.Reader),
		authService:     fa,
		backupService:   fb,
		campaignService: fc,
		out:             io.Discard,
	}, fa, fb, fc
}

func TestShortDID(t *testing.T) {
	did := "did:prism:" + strings.Repeat("ab", 32)
	require.Equal(t, "did:prism:ababab...ababab", shortDID(did))
	require.Equal(t, "did:x:abc", shortDID("did:x:abc"))
}

func TestSetMode_PrintsOnlyOnChange(t *testing.T) {
	out := captureOutput(t)
	a, _, _, _ := newTestApp()

	a.setMode(ModeOnline)
	a.setMode(ModeOnline)
	a.setMode(ModeOffline)

	require.Equal(t, []string{"server is online", "server is offline"}, *out)
	require.Equal(t, ModeOffline, a.getMode())
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	captureOutput(t)
	a, fa, _, _ := newTestApp()
	fa.pingErr = client.ErrUnavailable

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.getMode() == ModeOffline }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestStatusLine(t *testing.T) {
	a, fa, _, _ := newTestApp()
	ctx := context.Background()

	fa.status = &services.Status{}
	require.Equal(t, "no identity", a.statusLine(ctx))

	did := "did:prism:" + strings.Repeat("0f", 32)
	fa.status = &services.Status{DID: did, HasIdentity: true, Authenticated: true}
	a.mode = ModeOnline
	require.Equal(t, "did:prism:0f0f0f...0f0f0f logged in online", a.statusLine(ctx))

	fa.status = &services.Status{DID: did, HasIdentity: true, Expired: true}
	a.mode = ModeUnknown
	require.Equal(t, "did:prism:0f0f0f...0f0f0f expired", a.statusLine(ctx))

	fa.err = errors.New("db down")
	require.Equal(t, "no identity", a.statusLine(ctx))
}

func TestConnect(t *testing.T) {
	out := captureOutput(t)
	a, fa, _, _ := newTestApp()
	fa.kp = &identity.Keypair{DID: "did:prism:abc"}

	fa.created = true
	require.NoError(t, a.Connect(context.Background()))
	require.Equal(t, "Created new identity: did:prism:abc", (*out)[0])

	fa.created = false
	require.NoError(t, a.Connect(context.Background()))
	require.Equal(t, "Using identity: did:prism:abc", (*out)[len(*out)-1])
}

func TestImport_DerivesDIDFromKey(t *testing.T) {
	out := captureOutput(t)
	a, _, _, _ := newTestApp()
	kp := newTestKeypair(t)
	stubInputs(t, []string{""}, []string{" " + kp.PrivateKey + " "})

	require.NoError(t, a.Import(context.Background()))

	stored, err := a.identities.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, kp.DID, stored.DID)
	require.Equal(t, []string{"Imported identity: " + kp.DID}, *out)
}

func TestImport_WarnsOnMismatchedKey(t *testing.T) {
	out := captureOutput(t)
	a, _, _, _ := newTestApp()
	kp := newTestKeypair(t)
	other := newTestKeypair(t)
	stubInputs(t, []string{other.DID}, []string{kp.PrivateKey})

	require.NoError(t, a.Import(context.Background()))
	require.Len(t, *out, 2)
	require.Contains(t, (*out)[1], "does not match")
}

func TestImport_InvalidKeepsNothing(t *testing.T) {
	captureOutput(t)
	a, _, _, _ := newTestApp()
	stubInputs(t, []string{"not-a-did"}, []string{"zz"})

	err := a.Import(context.Background())
	require.Error(t, err)

	has, err := a.identities.Has(context.Background())
	require.NoError(t, err)
	require.False(t, has)
}

func TestExport(t *testing.T) {
	out := captureOutput(t)
	a, _, _, _ := newTestApp()
	ctx := context.Background()

	require.Error(t, a.Export(ctx))

	kp, err := a.identities.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Export(ctx))
	require.Equal(t, backup.Warning, (*out)[0])
	require.Contains(t, (*out)[2], kp.PrivateKey)
}

func TestBackup(t *testing.T) {
	out := captureOutput(t)
	a, _, fb, _ := newTestApp()
	fb.kp = &identity.Keypair{DID: "did:prism:abc"}

	stubInputs(t, []string{"/tmp/id.json"}, []string{""})
	require.NoError(t, a.Backup(context.Background()))
	require.Equal(t, "/tmp/id.json", fb.gotPath)
	require.Equal(t, "Warning: backup is not encrypted.", (*out)[0])

	stubInputs(t, []string{""}, nil)
	require.Error(t, a.Backup(context.Background()))
}

func TestRestore_AsksForPassphraseWhenSealed(t *testing.T) {
	out := captureOutput(t)
	a, _, fb, _ := newTestApp()
	fb.kp = newTestKeypair(t)
	fb.sealed = true
	stubInputs(t, []string{"backup.json"}, []string{"pw"})

	require.NoError(t, a.Restore(context.Background()))
	require.Equal(t, []string{"", "pw"}, fb.gotPass)
	require.Equal(t, []string{"Restored identity: " + fb.kp.DID}, *out)
}

func TestRestore_Plain(t *testing.T) {
	captureOutput(t)
	a, _, fb, _ := newTestApp()
	fb.kp = newTestKeypair(t)
	stubInputs(t, []string{"backup.json"}, nil)

	require.NoError(t, a.Restore(context.Background()))
	require.Equal(t, []string{""}, fb.gotPass)
}

func TestPhraseAndRecover(t *testing.T) {
	out := captureOutput(t)
	a, _, fb, _ := newTestApp()
	fb.phrase = "abandon ability"
	fb.kp = &identity.Keypair{DID: "did:prism:abc"}

	require.NoError(t, a.Phrase(context.Background()))
	require.Equal(t, "abandon ability", (*out)[1])

	stubInputs(t, []string{"abandon ability"}, nil)
	require.NoError(t, a.Recover(context.Background()))
	require.Equal(t, "abandon ability", fb.gotPhrase)
}

func TestPushPull(t *testing.T) {
	out := captureOutput(t)
	a, _, fb, _ := newTestApp()
	fb.key = "backups/did:prism:abc.enc"
	fb.kp = &identity.Keypair{DID: "did:prism:abc"}

	stubInputs(t, []string{"did:prism:abc"}, []string{"pw1", "pw2"})
	require.NoError(t, a.Push(context.Background()))
	require.NoError(t, a.Pull(context.Background()))

	require.Equal(t, []string{"pw1", "pw2"}, fb.gotPass)
	require.Equal(t, "did:prism:abc", fb.gotDID)
	require.Equal(t, "Remote backup stored at backups/did:prism:abc.enc", (*out)[0])

	fb.err = services.ErrRemoteNotConfigured
	stubInputs(t, nil, []string{"pw"})
	require.ErrorIs(t, a.Push(context.Background()), services.ErrRemoteNotConfigured)
}

func TestLoginLogout(t *testing.T) {
	out := captureOutput(t)
	a, fa, _, _ := newTestApp()

	require.NoError(t, a.Login(context.Background()))
	require.NoError(t, a.Logout(context.Background()))
	require.Equal(t, 1, fa.logins)
	require.Equal(t, 1, fa.logouts)
	require.Equal(t, []string{"Login successful", "Logged out"}, *out)

	fa.err = client.ErrUnavailable
	require.ErrorIs(t, a.Login(context.Background()), client.ErrUnavailable)
}

func TestWhoAmI(t *testing.T) {
	out := captureOutput(t)
	a, fa, _, _ := newTestApp()
	fa.me = &client.UserInfo{DID: "did:prism:abc", Authenticated: true, ExpiresAt: 0}

	require.NoError(t, a.WhoAmI(context.Background()))
	require.Len(t, *out, 2)
	require.Contains(t, (*out)[0], "did:prism:abc")
}

func TestStatusCommand(t *testing.T) {
	out := captureOutput(t)
	a, fa, _, _ := newTestApp()
	fa.status = &services.Status{DID: "did:prism:abc", HasIdentity: true, Expired: true}

	require.NoError(t, a.Status(context.Background()))
	require.Equal(t, []string{"Identity: did:prism:abc", "Session:  expired, please login again"}, *out)
}

func TestCampaign(t *testing.T) {
	out := captureOutput(t)
	a, _, _, fc := newTestApp()
	stubInputs(t, []string{"tx-1", `{"name": "spring", "budget": 10}`}, nil)

	require.NoError(t, a.Campaign(context.Background()))
	require.Equal(t, "tx-1", fc.gotTx)
	require.Equal(t, map[string]any{"name": "spring", "budget": float64(10)}, fc.gotCampaign)
	require.Equal(t, []string{"Campaign accepted: job job-1 (queued)"}, *out)

	stubInputs(t, []string{"tx-2", `[1, 2]`}, nil)
	require.Error(t, a.Campaign(context.Background()))
}

func TestCampaigns(t *testing.T) {
	out := captureOutput(t)
	a, _, _, fc := newTestApp()

	require.NoError(t, a.Campaigns(context.Background()))
	require.Equal(t, []string{"No campaigns"}, *out)

	fc.list = []client.CampaignResponse{{JobID: "j1", Status: "queued", CreatedAt: "2025-01-01T00:00:00Z"}}
	require.NoError(t, a.Campaigns(context.Background()))
	require.Equal(t, "j1\tqueued\t2025-01-01T00:00:00Z", (*out)[1])
}
