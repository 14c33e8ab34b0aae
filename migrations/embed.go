package migrations

import "embed"

// Files stores forward-only SQLite migrations embedded into the binary.
//
//go:embed *.sql
var Files embed.FS

// Postgres stores the schema of the optional Postgres profile store.
//
//go:embed postgres/*.sql
var Postgres embed.FS
