// Package lookup resolves chat queries against the book catalogs. It picks the
// catalog for each query, falls back when the primary one has nothing and
// enriches the chosen books with ratings.
package lookup

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/lepinkainen/bookbot/internal/catalog"
)

// shownBooks is how many books a reply lists.
const shownBooks = 3

// PopularAuthors are the candidates for a random pick.
var PopularAuthors = []string{
	"Stephen King", "J.K. Rowling", "George Orwell",
	"Leo Tolstoy", "Fyodor Dostoevsky", "Ernest Hemingway",
	"Jane Austen", "Mark Twain", "Charles Dickens",
}

// FallbackTitles are searched by title when the random author has no books.
var FallbackTitles = []string{"Harry Potter", "1984", "The Hobbit"}

// TitleSource finds raw documents by title.
type TitleSource interface {
	SearchTitle(ctx context.Context, title string) catalog.Result[catalog.Doc]
}

// AuthorSource is the primary author search.
type AuthorSource interface {
	SearchAuthor(ctx context.Context, author string) catalog.Result[catalog.Book]
}

// FallbackAuthorSource is consulted when AuthorSource finds nothing.
type FallbackAuthorSource interface {
	SearchAuthor(ctx context.Context, author string) catalog.Result[catalog.Doc]
}

// RatingSource resolves the rating of a book by ISBN.
type RatingSource interface {
	ResolveRating(ctx context.Context, isbn string) catalog.Rating
}

// Picker returns a uniformly distributed int in [0,n).
type Picker interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Sources wires the catalogs a Service talks to.
type Sources struct {
	Titles         TitleSource
	Authors        AuthorSource
	FallbackAuthor FallbackAuthorSource
	Ratings        RatingSource
	// Picker defaults to math/rand/v2 when nil.
	Picker Picker
}

// TitleResult is the answer to a title search. Total counts every document the
// catalog returned, Books holds at most the first three.
type TitleResult struct {
	Books []catalog.Book
	Total int
}

// AuthorResult is the answer to an author search. Source names the catalog
// that produced the books.
type AuthorResult struct {
	Books  []catalog.Book
	Total  int
	Source string
}

// Service runs lookups. It is safe for concurrent use when its sources are.
type Service struct {
	titles   TitleSource
	authors  AuthorSource
	fallback FallbackAuthorSource
	ratings  RatingSource
	picker   Picker
}

// New creates a Service.
func New(src Sources) *Service {
	picker := src.Picker
	if picker == nil {
		picker = globalRand{}
	}
	return &Service{
		titles:   src.Titles,
		authors:  src.Authors,
		fallback: src.FallbackAuthor,
		ratings:  src.Ratings,
		picker:   picker,
	}
}

// SearchTitle finds books by title and attaches a rating to each shown book.
func (s *Service) SearchTitle(ctx context.Context, title string) TitleResult {
	res := s.titles.SearchTitle(ctx, title)
	logFailure(res.Source, "title", title, res.Err)
	if res.Empty() {
		return TitleResult{}
	}

	docs := res.Items[:min(len(res.Items), shownBooks)]
	books := make([]catalog.Book, 0, len(docs))
	for _, doc := range docs {
		book := catalog.NormalizeDoc(doc)
		book = book.WithRating(s.ratings.ResolveRating(ctx, book.ISBN))
		books = append(books, book)
	}

	return TitleResult{Books: books, Total: len(res.Items)}
}

// SearchAuthor finds books by author, trying the primary catalog first. Books
// from the fallback catalog carry no rating.
func (s *Service) SearchAuthor(ctx context.Context, author string) AuthorResult {
	primary := s.authors.SearchAuthor(ctx, author)
	logFailure(primary.Source, "author", author, primary.Err)
	if !primary.Empty() {
		shown := primary.Items[:min(len(primary.Items), shownBooks)]
		books := make([]catalog.Book, 0, len(shown))
		for _, book := range shown {
			book.Year = normalizeYear(book.Year)
			books = append(books, book)
		}
		return AuthorResult{Books: books, Total: len(primary.Items), Source: primary.Source}
	}

	slog.Info("Primary author search empty, trying fallback", "author", author)
	fallback := s.fallback.SearchAuthor(ctx, author)
	logFailure(fallback.Source, "author", author, fallback.Err)
	if fallback.Empty() {
		return AuthorResult{}
	}

	docs := fallback.Items[:min(len(fallback.Items), shownBooks)]
	books := make([]catalog.Book, 0, len(docs))
	for _, doc := range docs {
		book := catalog.NormalizeDoc(doc)
		book.Year = normalizeYear(book.Year)
		books = append(books, book)
	}
	return AuthorResult{Books: books, Total: len(fallback.Items), Source: fallback.Source}
}

// PickRandom picks a random book by a popular author, or from a popular title
// when that author has nothing. It reports false when neither search found a book.
func (s *Service) PickRandom(ctx context.Context) (catalog.Book, bool) {
	author := PopularAuthors[s.picker.IntN(len(PopularAuthors))]
	slog.Debug("Picking random book", "author", author)

	var candidates []catalog.Book
	res := s.authors.SearchAuthor(ctx, author)
	logFailure(res.Source, "random_author", author, res.Err)
	if !res.Empty() {
		candidates = res.Items
	} else {
		title := FallbackTitles[s.picker.IntN(len(FallbackTitles))]
		docs := s.titles.SearchTitle(ctx, title)
		logFailure(docs.Source, "random_title", title, docs.Err)
		for _, doc := range docs.Items {
			candidates = append(candidates, catalog.NormalizeDoc(doc))
		}
	}

	if len(candidates) == 0 {
		return catalog.Book{}, false
	}

	candidates = candidates[:min(len(candidates), shownBooks)]
	book := candidates[s.picker.IntN(len(candidates))]
	book.Year = normalizeYear(book.Year)

	if !book.HasRating() && book.ISBN != "" {
		book = book.WithRating(s.ratings.ResolveRating(ctx, book.ISBN))
	}
	return book, true
}

// normalizeYear cuts dates such as "2005-03-14" down to the year. The unknown
// sentinel is left alone even though it is longer than four characters.
func normalizeYear(year string) string {
	if year == catalog.Unknown {
		return year
	}
	runes := []rune(year)
	if len(runes) > 4 {
		return string(runes[:4])
	}
	return year
}

func logFailure(source, operation, query string, err error) {
	if err == nil {
		return
	}
	slog.Warn("Catalog lookup failed", "source", source, "operation", operation, "query", query, "error", err)
}
