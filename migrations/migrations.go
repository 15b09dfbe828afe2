package migrations

import "embed"

// FS holds the SQL migrations, they run in the order of their numeric prefix.
//
//go:embed *.sql
var FS embed.FS
