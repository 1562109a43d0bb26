package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lepinkainen/bookbot/internal/cache"
	"github.com/lepinkainen/bookbot/internal/metrics"
)

const (
	// resultLimit caps every search to the first page of five results.
	resultLimit = 5

	// DefaultTimeout bounds a regular catalog request.
	DefaultTimeout = 10 * time.Second
	// DefaultFallbackTimeout bounds the last-resort author search.
	DefaultFallbackTimeout = 5 * time.Second

	userAgent = "bookbot/1.0 (+https://github.com/lepinkainen/bookbot)"
)

// endpoint is the shared GET-and-decode plumbing for a single catalog.
type endpoint struct {
	source     string
	baseURL    string
	httpClient *http.Client
}

func newEndpoint(source, baseURL string, client *http.Client) endpoint {
	if client == nil {
		client = &http.Client{}
	}
	return endpoint{
		source:     source,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// getJSON issues GET baseURL+path?params bounded by timeout and decodes a 200
// response into target. Errors wrap ErrTransport, ErrStatus or ErrDecode.
func (e endpoint) getJSON(ctx context.Context, operation, path string, params url.Values, timeout time.Duration, target any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.ObserveCatalogRequest(e.source, operation, outcome, time.Since(start))
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqURL := e.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		outcome = "transport"
		return fmt.Errorf("%w: creating request: %w", ErrTransport, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		outcome = "transport"
		return fmt.Errorf("%w: %s request: %w", ErrTransport, e.source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		outcome = "status"
		return fmt.Errorf("%w: %s returned status %d", ErrStatus, e.source, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		outcome = "decode"
		return fmt.Errorf("%w: decoding %s response: %w", ErrDecode, e.source, err)
	}

	slog.Debug("Catalog request completed", "source", e.source, "operation", operation, "took", time.Since(start))
	return nil
}

// cachedList is the cache representation of a list response.
type cachedList[T any] struct {
	Items    []T  `json:"items"`
	NotFound bool `json:"not_found"`
}

// fetchList runs fetch through the response cache when enabled. Empty lists are
// cached with the shorter negative TTL; errors are never cached.
func fetchList[T any](enabled bool, table, key string, fetch func() ([]T, error)) ([]T, error) {
	if !enabled {
		return fetch()
	}

	res, _, err := cache.GetOrFetchWithTTL(table, key, func() (cachedList[T], error) {
		items, err := fetch()
		if err != nil {
			return cachedList[T]{}, err
		}
		return cachedList[T]{Items: items, NotFound: len(items) == 0}, nil
	}, cache.SelectNegativeCacheTTL(func(r cachedList[T]) bool {
		return r.NotFound
	}))
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// normalizeISBN strips hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	normalized := strings.ReplaceAll(isbn, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	return normalized
}
