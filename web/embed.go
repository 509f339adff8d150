// Package web embeds the static shell served by the api process.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:shell
var files embed.FS

// Shell returns the shell document tree rooted at web/shell.
func Shell() fs.FS {
	sub, err := fs.Sub(files, "shell")
	if err != nil {
		panic(err)
	}
	return sub
}
