package models

import (
	"net/http"
	"net/url"
	"slices"
	"time"
)

// RootKey is the request key of the root document, served as the last
// resort when the network is down and nothing else matches.
const RootKey = "/"

// ShellAssets are the request keys precached on install.
var ShellAssets = []string{
	"/",
	"/index.html",
	"/manifest.webmanifest",
	"/assets/icon.svg",
	"/assets/app.css",
	"/assets/app.js",
}

// Source tells where a served response came from.
type Source string

const (
	SourceNetwork Source = "network"
	SourceCache   Source = "cache"
	SourceRoot    Source = "root"
)

// Entry is one stored response, addressed by its request key within a
// cache generation.
type Entry struct {
	Key      string      `json:"key"`
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Cacheable reports whether the entry may be written to the cache. Only
// successful responses are kept.
func (e *Entry) Cacheable() bool {
	return e.Status == http.StatusOK
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Header = e.Header.Clone()
	c.Body = slices.Clone(e.Body)
	return &c
}

// hopHeaders are never stored or replayed.
var hopHeaders = []string{
	"Connection",
	"Content-Length",
	"Keep-Alive",
	"Proxy-Connection",
	"Set-Cookie",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// StorableHeader returns a copy of h without hop-by-hop and cookie headers.
func StorableHeader(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		out = http.Header{}
	}
	for _, k := range hopHeaders {
		out.Del(k)
	}
	return out
}

// RequestKey identifies a request in the cache: path plus query string.
func RequestKey(u *url.URL) string {
	return u.RequestURI()
}
