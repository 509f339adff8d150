package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	if errors.Is(ErrAssetUnavailable, ErrEntryNotFound) {
		t.Fatal("sentinels must be distinct")
	}
	wrapped := fmt.Errorf("%w: /assets/app.js: %w", ErrAssetUnavailable, errors.New("dial tcp: refused"))
	if !errors.Is(wrapped, ErrAssetUnavailable) {
		t.Fatal("expected wrapped error to match ErrAssetUnavailable")
	}
}
