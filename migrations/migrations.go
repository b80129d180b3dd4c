// Package migrations embeds the goose SQL migrations so the daemon can
// apply them at startup without shipping files alongside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
