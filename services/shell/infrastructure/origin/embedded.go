// Package origin provides the places shell assets are fetched from: an
// embedded file system or a remote HTTP server.
package origin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/ghuser/unitprice/services/shell/domain/models"
)

const indexFile = "index.html"

// extraTypes covers extensions missing from the platform mime tables.
var extraTypes = map[string]string{
	".webmanifest": "application/manifest+json",
	".svg":         "image/svg+xml",
	".js":          "text/javascript; charset=utf-8",
}

// FS serves assets out of an fs.FS, typically the embedded web/shell tree.
// It never fails with a network error; a missing file is a 404 entry.
type FS struct {
	fsys fs.FS
}

// NewFS returns an origin over fsys. "/" maps to index.html.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

func (o *FS) Fetch(ctx context.Context, key string) (*models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.ParseRequestURI(key)
	if err != nil {
		return textEntry(key, http.StatusBadRequest), nil
	}
	name := strings.TrimPrefix(path.Clean(u.Path), "/")
	if name == "" || strings.HasSuffix(u.Path, "/") {
		name = path.Join(name, indexFile)
	}
	if !fs.ValidPath(name) {
		return textEntry(key, http.StatusNotFound), nil
	}

	info, err := fs.Stat(o.fsys, name)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return textEntry(key, http.StatusNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	data, err := fs.ReadFile(o.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	h := http.Header{}
	h.Set("Content-Type", contentType(name, data))
	h.Set("Cache-Control", "no-cache")
	return &models.Entry{Key: key, Status: http.StatusOK, Header: h, Body: data}, nil
}

func contentType(name string, data []byte) string {
	ext := path.Ext(name)
	if ct, ok := extraTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

func textEntry(key string, status int) *models.Entry {
	h := http.Header{}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return &models.Entry{Key: key, Status: status, Header: h, Body: []byte(http.StatusText(status) + "\n")}
}
