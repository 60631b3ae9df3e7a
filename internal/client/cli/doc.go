// Package cli provides the interactive didkeeper command-line client.
//
// It wires configuration, the local SQLite storage, the Auth API client and
// the application services, then runs a REPL. A background watcher pings the
// server and reports when it goes offline or comes back.
//
// Commands cover the identity (connect, import, export, backup, restore,
// phrase, recover, push, pull), the session (login, logout, whoami, status)
// and campaigns (campaign, campaigns).
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
