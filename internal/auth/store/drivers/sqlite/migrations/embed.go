package migrations

import "embed"

// Migrations holds the versioned schema files applied by
// sqlite.Store.ApplyMigrations.
//
//go:embed *.sql
var Migrations embed.FS
