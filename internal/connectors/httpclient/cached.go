package httpclient

import (
	"context"
	"net/url"

	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// DownloadCached returns a fresh cached copy of rawURL or downloads it and
// stores the result. A nil cache downloads every time. Cache failures are
// logged and never fail the download.
func (c *Client) DownloadCached(ctx context.Context, cache driven.DocumentCache, jurisdiction, rawURL string) ([]byte, error) {
	return fetchCached(cache, jurisdiction, rawURL, func() ([]byte, error) {
		return c.Download(ctx, rawURL)
	})
}

// SearchCached is DownloadCached for search endpoints, keyed by name.
func (c *Client) SearchCached(ctx context.Context, cache driven.DocumentCache, jurisdiction, name, rawURL string, query url.Values) ([]byte, error) {
	return fetchCached(cache, jurisdiction, name, func() ([]byte, error) {
		return c.Search(ctx, rawURL, query)
	})
}

func fetchCached(cache driven.DocumentCache, jurisdiction, name string, fetch func() ([]byte, error)) ([]byte, error) {
	if cache != nil {
		data, ok, err := cache.Get(jurisdiction, name)
		if err != nil {
			logger.Debug("httpclient: cache read %s/%s: %v", jurisdiction, name, err)
		}
		if ok {
			return data, nil
		}
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Put(jurisdiction, name, data); err != nil {
			logger.Debug("httpclient: cache write %s/%s: %v", jurisdiction, name, err)
		}
	}
	return data, nil
}
