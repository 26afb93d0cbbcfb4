package migrations

import "embed"

// FS contains embedded SQLite migrations for the dossier archive.
//
//go:embed *.sql
var FS embed.FS
