package domcredsys

import "embed"

//go:embed migrations
var MigrationsFS embed.FS

//go:embed web/templates web/static
var WebFS embed.FS
