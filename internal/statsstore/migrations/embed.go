// Package migrations embeds the postgres schema migrations for
// internal/statsstore.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
