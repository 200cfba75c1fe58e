// Package migrations holds the newsroom's goose migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
