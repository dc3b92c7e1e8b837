// AngelaMos | 2026
// migrations.go

// Package migrations embeds the goose SQL migrations for usuarios and plantas.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
