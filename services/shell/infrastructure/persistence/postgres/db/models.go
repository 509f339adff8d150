package db

import "time"

// ShellCacheEntry is one row of shell_cache_entries. Header is the JSON
// object text of the stored http.Header.
type ShellCacheEntry struct {
	Generation string
	RequestKey string
	Status     int32
	Header     string
	Body       []byte
	StoredAt   time.Time
}
