package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/didkeeper/internal/client/backup"
	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/client/services"
	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/cryptox"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Connect(ctx context.Context) error
	Import(ctx context.Context) error
	Export(ctx context.Context) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context) error
	Phrase(ctx context.Context) error
	Recover(ctx context.Context) error
	Push(ctx context.Context) error
	Pull(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Campaign(ctx context.Context) error
	Campaigns(ctx context.Context) error
}

const helpText = `Identity:  connect, import, export, backup, restore, phrase, recover, push, pull
Session:   login, logout, whoami, status
Campaigns: campaign, campaigns
Other:     help, exit`

// runREPL reads commands from scanner and dispatches them to a until EOF or
// "exit"/"quit". Command errors are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	commands := map[string]func(context.Context) error{
		"connect":   a.Connect,
		"import":    a.Import,
		"export":    a.Export,
		"backup":    a.Backup,
		"restore":   a.Restore,
		"phrase":    a.Phrase,
		"recover":   a.Recover,
		"push":      a.Push,
		"pull":      a.Pull,
		"login":     a.Login,
		"logout":    a.Logout,
		"whoami":    a.WhoAmI,
		"status":    a.Status,
		"campaign":  a.Campaign,
		"campaigns": a.Campaigns,
	}

	for {
		printlnFn(fmt.Sprintf("dk (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(helpText)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		run, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := run(ctx); err != nil {
			printlnFn(describeError(err))
		}
	}
}

// describeError turns service errors into the line shown to the user.
func describeError(err error) string {
	var verr *common.ValidationError
	switch {
	case common.IsSessionInvalid(err):
		return "session expired, please login again"
	case errors.Is(err, common.ErrNotAuthenticated):
		return "not logged in, run 'login' first"
	case errors.Is(err, common.ErrNoIdentity):
		return "no identity on this device, run 'connect', 'import' or 'restore' first"
	case errors.As(err, &verr):
		return "invalid identity: " + verr.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable: " + err.Error()
	case errors.Is(err, backup.ErrPassphraseRequired):
		return "this backup is encrypted, a passphrase is required"
	case errors.Is(err, cryptox.ErrEnvelopeAuth):
		return "wrong passphrase or corrupted backup"
	case errors.Is(err, services.ErrRemoteNotConfigured):
		return "remote backup is not configured (set an S3 bucket)"
	default:
		return "error: " + err.Error()
	}
}
