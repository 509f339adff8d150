package domain

import "errors"

// Sentinel errors for the shell context. Use errors.Is() to check these.
var (
	// ErrAssetUnavailable indicates the origin could not be reached and
	// neither the requested entry nor the root document is cached.
	ErrAssetUnavailable = errors.New("asset unavailable")

	// ErrEntryNotFound indicates a cache miss. It never reaches clients.
	ErrEntryNotFound = errors.New("cache entry not found")
)
