// Package migrations embeds the schema of the local device store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
