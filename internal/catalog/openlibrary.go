package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lepinkainen/bookbot/internal/cache"
	"github.com/lepinkainen/bookbot/internal/translate"
)

const (
	// OpenLibrarySource names the Open Library catalog in logs, metrics and books.
	OpenLibrarySource = "Open Library"
	// DefaultOpenLibraryURL is the public Open Library host.
	DefaultOpenLibraryURL = "https://openlibrary.org"

	openLibrarySearchPath = "/search.json"
	openLibraryDocFields  = "key,title,author_name,first_publish_year,isbn"
)

// OpenLibraryOptions configures an OpenLibrary client. Zero values pick the defaults.
type OpenLibraryOptions struct {
	BaseURL         string
	HTTPClient      *http.Client
	Timeout         time.Duration
	FallbackTimeout time.Duration
	Translator      *translate.Translator
	UseCache        bool
}

// OpenLibrary searches the Open Library search.json endpoint. It serves title
// searches and the last-resort author search.
type OpenLibrary struct {
	endpoint        endpoint
	timeout         time.Duration
	fallbackTimeout time.Duration
	translator      *translate.Translator
	useCache        bool
}

// NewOpenLibrary creates an Open Library client.
func NewOpenLibrary(opts OpenLibraryOptions) *OpenLibrary {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenLibraryURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.FallbackTimeout <= 0 {
		opts.FallbackTimeout = DefaultFallbackTimeout
	}
	if opts.Translator == nil {
		opts.Translator = translate.Default()
	}
	return &OpenLibrary{
		endpoint:        newEndpoint(OpenLibrarySource, opts.BaseURL, opts.HTTPClient),
		timeout:         opts.Timeout,
		fallbackTimeout: opts.FallbackTimeout,
		translator:      opts.Translator,
		useCache:        opts.UseCache,
	}
}

type openLibrarySearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// SearchTitle looks a title up first as a free-text query and then as a title
// query. The first attempt that returns documents wins.
func (c *OpenLibrary) SearchTitle(ctx context.Context, title string) Result[Doc] {
	term := c.translator.Translate(title, translate.Title)
	slog.Info("Searching book by title", "query", title, "term", term)

	docs, err := fetchList(c.useCache, cache.OpenLibraryTable, "title:"+term, func() ([]Doc, error) {
		return c.searchTitleAttempts(ctx, term)
	})
	if err != nil {
		return failed[Doc](OpenLibrarySource, err)
	}
	if len(docs) > 0 {
		slog.Info("Books found", "source", OpenLibrarySource, "count", len(docs))
	}
	return found(OpenLibrarySource, docs)
}

func (c *OpenLibrary) searchTitleAttempts(ctx context.Context, term string) ([]Doc, error) {
	attempts := []string{"q", "title"}

	var lastErr error
	for _, key := range attempts {
		params := url.Values{}
		params.Set(key, term)

		docs, err := c.search(ctx, "search_"+key, params, c.timeout)
		if err != nil {
			slog.Warn("Title search attempt failed", "param", key, "term", term, "error", err)
			lastErr = err
			continue
		}
		if len(docs) > 0 {
			return docs, nil
		}
	}
	return nil, lastErr
}

// SearchAuthor is the last-resort author search. It uses the shorter fallback
// timeout and never reports more than an empty result on failure.
func (c *OpenLibrary) SearchAuthor(ctx context.Context, author string) Result[Doc] {
	term := c.translator.Translate(author, translate.Author)

	docs, err := fetchList(c.useCache, cache.OpenLibraryTable, "author:"+term, func() ([]Doc, error) {
		params := url.Values{}
		params.Set("author", term)
		return c.search(ctx, "search_author", params, c.fallbackTimeout)
	})
	if err != nil {
		slog.Debug("Fallback author search failed", "term", term, "error", err)
		return failed[Doc](OpenLibrarySource, err)
	}
	return found(OpenLibrarySource, docs)
}

func (c *OpenLibrary) search(ctx context.Context, operation string, params url.Values, timeout time.Duration) ([]Doc, error) {
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("fields", openLibraryDocFields)

	var resp openLibrarySearchResponse
	if err := c.endpoint.getJSON(ctx, operation, openLibrarySearchPath, params, timeout, &resp); err != nil {
		return nil, err
	}
	return resp.Docs, nil
}
