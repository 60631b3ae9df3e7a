package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/didkeeper/internal/client/backup"
	"github.com/dmitrijs2005/didkeeper/internal/client/client"
	"github.com/dmitrijs2005/didkeeper/internal/client/services"
	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeExec) Connect(context.Context) error   { return f.record("connect") }
func (f *fakeExec) Import(context.Context) error    { return f.record("import") }
func (f *fakeExec) Export(context.Context) error    { return f.record("export") }
func (f *fakeExec) Backup(context.Context) error    { return f.record("backup") }
func (f *fakeExec) Restore(context.Context) error   { return f.record("restore") }
func (f *fakeExec) Phrase(context.Context) error    { return f.record("phrase") }
func (f *fakeExec) Recover(context.Context) error   { return f.record("recover") }
func (f *fakeExec) Push(context.Context) error      { return f.record("push") }
func (f *fakeExec) Pull(context.Context) error      { return f.record("pull") }
func (f *fakeExec) Login(context.Context) error     { return f.record("login") }
func (f *fakeExec) Logout(context.Context) error    { return f.record("logout") }
func (f *fakeExec) WhoAmI(context.Context) error    { return f.record("whoami") }
func (f *fakeExec) Status(context.Context) error    { return f.record("status") }
func (f *fakeExec) Campaign(context.Context) error  { return f.record("campaign") }
func (f *fakeExec) Campaigns(context.Context) error { return f.record("campaigns") }

// captureOutput replaces printlnFn and returns a pointer to the printed lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"",
		"connect",
		"login",
		"whoami",
		"status",
		"campaign",
		"campaigns",
		"foobar",
		"logout",
		"exit",
		"login",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	require.Equal(t, []string{"connect", "login", "whoami", "status", "campaign", "campaigns", "logout"}, exec.calls)
	require.Contains(t, *out, helpText)
	require.Contains(t, *out, "Unknown command: foobar")
	require.Contains(t, *out, "dk (status) > ")
	require.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("phrase\nquit")))
	require.Equal(t, []string{"phrase"}, exec.calls)

	exec = &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("push")))
	require.Equal(t, []string{"push"}, exec.calls)
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{err: common.ErrSessionRejected}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("campaigns\nstatus\n")))

	require.Equal(t, []string{"campaigns", "status"}, exec.calls)
	require.Contains(t, *out, "session expired, please login again")
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"expired", fmt.Errorf("x: %w", common.ErrSessionExpired), "session expired, please login again"},
		{"rejected", common.ErrSessionRejected, "session expired, please login again"},
		{"no token", common.ErrNotAuthenticated, "not logged in, run 'login' first"},
		{"no identity", common.ErrNoIdentity, "no identity on this device, run 'connect', 'import' or 'restore' first"},
		{"validation", &common.ValidationError{Fields: []error{common.ErrInvalidDID}}, "invalid identity: validation failed: invalid DID format"},
		{"unavailable", client.ErrUnavailable, "server unavailable: server unavailable"},
		{"passphrase", backup.ErrPassphraseRequired, "this backup is encrypted, a passphrase is required"},
		{"remote", services.ErrRemoteNotConfigured, "remote backup is not configured (set an S3 bucket)"},
		{"other", errors.New("boom"), "error: boom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, describeError(tc.err))
		})
	}
}
