// Package migrations holds the schema for collection entries and the
// version registry.
package migrations

import "embed"

// FS holds NNN_name.up.sql and .down.sql files. Up files apply in
// version order.
//
//go:embed *.sql
var FS embed.FS
