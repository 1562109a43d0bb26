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
	// GoogleBooksSource names the Google Books catalog in logs, metrics and books.
	GoogleBooksSource = "Google Books"
	// DefaultGoogleBooksURL is the public Google Books API root.
	DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1"

	googleBooksVolumesPath = "/volumes"
)

// GoogleBooksOptions configures a GoogleBooks client. Zero values pick the defaults.
type GoogleBooksOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	APIKey     string
	Translator *translate.Translator
	UseCache   bool
}

// GoogleBooks queries the Google Books volumes endpoint. It is the primary
// author source and the only catalog that reports ratings.
type GoogleBooks struct {
	endpoint   endpoint
	timeout    time.Duration
	apiKey     string
	translator *translate.Translator
	useCache   bool
}

// NewGoogleBooks creates a Google Books client.
func NewGoogleBooks(opts GoogleBooksOptions) *GoogleBooks {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleBooksURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Translator == nil {
		opts.Translator = translate.Default()
	}
	return &GoogleBooks{
		endpoint:   newEndpoint(GoogleBooksSource, opts.BaseURL, opts.HTTPClient),
		timeout:    opts.Timeout,
		apiKey:     opts.APIKey,
		translator: opts.Translator,
		useCache:   opts.UseCache,
	}
}

// googleBooksResponse matches the Google Books volumes response structure.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo Volume `json:"volumeInfo"`
	} `json:"items"`
}

func (r googleBooksResponse) volumes(limit int) []Volume {
	n := min(len(r.Items), limit)
	out := make([]Volume, 0, n)
	for _, item := range r.Items[:n] {
		out = append(out, item.VolumeInfo)
	}
	return out
}

// SearchAuthor returns up to five normalized books written by author.
func (c *GoogleBooks) SearchAuthor(ctx context.Context, author string) Result[Book] {
	term := c.translator.Translate(author, translate.Author)
	slog.Info("Searching books by author", "source", GoogleBooksSource, "query", author, "term", term)

	query := "inauthor:" + term
	volumes, err := fetchList(c.useCache, cache.GoogleBooksTable, query, func() ([]Volume, error) {
		params := url.Values{}
		params.Set("q", query)
		params.Set("maxResults", strconv.Itoa(resultLimit))

		resp, err := c.volumes(ctx, "search_author", params)
		if err != nil {
			return nil, err
		}
		return resp.volumes(resultLimit), nil
	})
	if err != nil {
		slog.Warn("Author search failed", "source", GoogleBooksSource, "term", term, "error", err)
		return failed[Book](GoogleBooksSource, err)
	}

	books := make([]Book, 0, len(volumes))
	for _, v := range volumes {
		books = append(books, NormalizeVolume(v))
	}
	slog.Info("Books found", "source", GoogleBooksSource, "count", len(books))
	return found(GoogleBooksSource, books)
}

// LookupRating fetches the rating of the volume identified by isbn. An empty
// isbn returns an empty result without contacting the catalog.
func (c *GoogleBooks) LookupRating(ctx context.Context, isbn string) Result[Rating] {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return empty[Rating](GoogleBooksSource)
	}

	query := "isbn:" + isbn
	volumes, err := fetchList(c.useCache, cache.GoogleBooksTable, query, func() ([]Volume, error) {
		params := url.Values{}
		params.Set("q", query)

		resp, err := c.volumes(ctx, "rating", params)
		if err != nil {
			return nil, err
		}
		if resp.TotalItems == 0 {
			return nil, nil
		}
		return resp.volumes(1), nil
	})
	if err != nil {
		return failed[Rating](GoogleBooksSource, err)
	}
	if len(volumes) == 0 {
		return empty[Rating](GoogleBooksSource)
	}

	v := volumes[0]
	return found(GoogleBooksSource, []Rating{{Average: v.AverageRating, Count: v.RatingsCount}})
}

// ResolveRating is LookupRating collapsed to a plain Rating; failures are logged
// and reported as an unknown rating.
func (c *GoogleBooks) ResolveRating(ctx context.Context, isbn string) Rating {
	res := c.LookupRating(ctx, isbn)
	if res.Err != nil {
		slog.Warn("Rating lookup failed", "isbn", isbn, "error", res.Err)
	}
	if res.Empty() {
		return Rating{}
	}
	return res.Items[0]
}

func (c *GoogleBooks) volumes(ctx context.Context, operation string, params url.Values) (googleBooksResponse, error) {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp googleBooksResponse
	err := c.endpoint.getJSON(ctx, operation, googleBooksVolumesPath, params, c.timeout, &resp)
	return resp, err
}
