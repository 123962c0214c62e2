// Package appfs embeds the files the binaries need at runtime: database migrations,
// email templates and the common-password list.
package appfs

import "embed"

//go:embed migrations/*.sql all:assets
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "assets/templates/email"
	CommonPasswordsGZ = "assets/common-passwords.txt.gz"
)
