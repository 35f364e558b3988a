// Package data embeds the database bootstrap scripts used by the container
// stack and the seed catalog loaded by rentalsctl.
package data

import (
	_ "embed"
)

//go:embed initdb/postgres/001-init.sql
var InitdbPostgres string

//go:embed initdb/mariadb/001-init.sql
var InitdbMariaDB string

//go:embed seed/properties.json
var SeedProperties []byte
