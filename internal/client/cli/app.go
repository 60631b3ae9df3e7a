package cli

import (
	"bufio"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/client/backup"
	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/client/config"
	"github.com/dmitrijs2005/didkeeper/internal/client/identity"
	"github.com/dmitrijs2005/didkeeper/internal/client/services"
	"github.com/dmitrijs2005/didkeeper/internal/client/session"
	"github.com/dmitrijs2005/didkeeper/internal/client/storage"
	"github.com/dmitrijs2005/didkeeper/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

const onlineCheckInterval = 30 * time.Second

type App struct {
	config          *config.Config
	identities      *identity.Manager
	authService     services.AuthService
	backupService   services.BackupService
	campaignService services.CampaignService
	logger          logging.Logger
	closer          io.Closer

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the device storage and wires the services. The remote backup
// store is only created when a bucket is configured.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewTextLogger(os.Stderr, level)

	db, err := storage.OpenSQLite(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	ids := identity.NewManager(db, c.DIDMethod, rand.Reader)
	sessions := session.NewStore(db, time.Now)

	transport := client.NewAuthorizedClient(&http.Client{Timeout: c.RequestTimeout}, sessions, logger)
	api := client.NewHTTPClient(c.ServerURL, transport)

	var remote backup.ObjectStore
	if c.RemoteBackupEnabled() {
		s3, err := backup.NewS3Store(ctx, backup.S3Config{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("remote backup: %w", err)
		}
		remote = s3
	}

	return &App{
		config:          c,
		identities:      ids,
		authService:     services.NewAuthService(api, ids, sessions, c.TokenLifetime, logger),
		backupService:   services.NewBackupService(ids, remote, time.Now, logger),
		campaignService: services.NewCampaignService(api, ids, logger),
		logger:          logger,
		closer:          db,
		reader:          bufio.NewReader(os.Stdin),
		out:             os.Stdout,
	}, nil
}

// Run starts the connectivity watcher and blocks in the REPL until the user
// exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if a.closer != nil {
			_ = a.closer.Close()
		}
	}()

	printlnFn("didkeeper CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, func() string { return a.statusLine(ctx) }, bufio.NewScanner(a.reader))
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		printlnFn(fmt.Sprintf("server is %s", mode))
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server once right away and then on every
// tick until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// statusLine renders the prompt prefix: a short DID plus session and
// connectivity state.
func (a *App) statusLine(ctx context.Context) string {
	st, err := a.authService.Status(ctx)
	if err != nil || !st.HasIdentity {
		return "no identity"
	}

	s := shortDID(st.DID)
	switch {
	case st.Authenticated:
		s += " logged in"
	case st.Expired:
		s += " expired"
	}
	if m := a.getMode(); m != ModeUnknown {
		s += " " + string(m)
	}
	return s
}

// shortDID keeps the method and the first and last hex digits of the key.
func shortDID(did string) string {
	i := strings.LastIndexByte(did, ':')
	if i < 0 || len(did)-i-1 <= 12 {
		return did
	}
	return did[:i+7] + "..." + did[len(did)-6:]
}
