package origin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ghuser/unitprice/services/shell/domain/models"
)

// MaxAssetBytes caps a single asset fetched from a remote origin.
const MaxAssetBytes = 5 << 20

// HTTP fetches assets from a remote server. Outbound requests are traced
// through the otelhttp transport.
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP returns an origin rooted at baseURL.
func NewHTTP(baseURL string, timeout time.Duration) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("origin url must be http or https, got %q", baseURL)
	}
	return &HTTP{
		base: strings.TrimRight(u.String(), "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			// Redirects are followed; the entry is stored under the original key.
		},
	}, nil
}

func (o *HTTP) Fetch(ctx context.Context, key string) (*models.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.base+key, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build origin request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("origin request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read origin response: %w", err)
	}
	if len(body) > MaxAssetBytes {
		return nil, fmt.Errorf("origin response for %s exceeds %d bytes", key, MaxAssetBytes)
	}

	return &models.Entry{
		Key:    key,
		Status: resp.StatusCode,
		Header: models.StorableHeader(resp.Header),
		Body:   body,
	}, nil
}
