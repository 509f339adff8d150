// Package shell holds the goose migrations for the shell cache tables.
package shell

import "embed"

//go:embed *.sql
var FS embed.FS
