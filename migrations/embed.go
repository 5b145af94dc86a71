// Package migrations embeds the SQL schema migrations into the binary.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// FS exposes the embedded migrations at the filesystem root,
// ready for database.DB.Migrate.
var FS fs.FS = files
