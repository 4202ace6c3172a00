package migrations

import "embed"

// FS holds the schema for every supported driver, one directory per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
