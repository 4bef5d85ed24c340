package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// HTTPFetcher delivers plain http(s) content to a local file.
type HTTPFetcher struct {
	client *Client
	logger *utils.Logger
}

// NewHTTPFetcher creates a fetcher for http and https URLs.
func NewHTTPFetcher(client *Client, logger *utils.Logger) *HTTPFetcher {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &HTTPFetcher{
		client: client,
		logger: logger.WithComponent("fetcher"),
	}
}

var _ domain.Fetcher = (*HTTPFetcher)(nil)

// Schemes returns the URL schemes this fetcher handles.
func (f *HTTPFetcher) Schemes() []string {
	return []string{"http", "https"}
}

// Fetch downloads the URL into dest and reports the response headers as
// metadata. Credentials embedded in the URL are stripped before the
// request goes out.
func (f *HTTPFetcher) Fetch(ctx context.Context, remoteURL, dest string) (*domain.FetchResult, error) {
	if dest == "" {
		return nil, domain.ErrMissingDestination
	}
	clean, _ := ParseAndRemoveCredentials(remoteURL)

	resp, err := f.client.Get(ctx, clean)
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(dest); err != nil {
		return nil, err
	}
	if err := os.WriteFile(dest, resp.Body, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	f.logger.Debug().
		Str("url", clean).
		Int("status", resp.StatusCode).
		Int("bytes", len(resp.Body)).
		Msg("Fetched URL")

	return &domain.FetchResult{
		Kind: domain.ContentKindFile,
		Metadata: []domain.URIWithMetadata{{
			URI: clean,
			Metadata: map[string]any{
				"headers":      headerMap(resp.Headers),
				"status_code":  resp.StatusCode,
				"content_type": resp.ContentType,
			},
		}},
	}, nil
}

// headerMap flattens response headers for metadata serialization.
func headerMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
