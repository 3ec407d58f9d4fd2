// Package appfs exposes the project's embedded static files.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
