package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lepinkainen/bookbot/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTitles struct {
	docs    map[string][]catalog.Doc
	err     error
	queries []string
}

func (f *fakeTitles) SearchTitle(_ context.Context, title string) catalog.Result[catalog.Doc] {
	f.queries = append(f.queries, title)
	if f.err != nil {
		return catalog.Result[catalog.Doc]{Status: catalog.StatusFailed, Source: catalog.OpenLibrarySource, Err: f.err}
	}
	docs := f.docs[title]
	if len(docs) == 0 {
		return catalog.Result[catalog.Doc]{Status: catalog.StatusEmpty, Source: catalog.OpenLibrarySource}
	}
	return catalog.Result[catalog.Doc]{Items: docs, Status: catalog.StatusFound, Source: catalog.OpenLibrarySource}
}

type fakeAuthors struct {
	books   map[string][]catalog.Book
	err     error
	queries []string
}

func (f *fakeAuthors) SearchAuthor(_ context.Context, author string) catalog.Result[catalog.Book] {
	f.queries = append(f.queries, author)
	if f.err != nil {
		return catalog.Result[catalog.Book]{Status: catalog.StatusFailed, Source: catalog.GoogleBooksSource, Err: f.err}
	}
	books := f.books[author]
	if len(books) == 0 {
		return catalog.Result[catalog.Book]{Status: catalog.StatusEmpty, Source: catalog.GoogleBooksSource}
	}
	return catalog.Result[catalog.Book]{Items: books, Status: catalog.StatusFound, Source: catalog.GoogleBooksSource}
}

type fakeFallback struct {
	docs  map[string][]catalog.Doc
	calls int
}

func (f *fakeFallback) SearchAuthor(_ context.Context, author string) catalog.Result[catalog.Doc] {
	f.calls++
	docs := f.docs[author]
	if len(docs) == 0 {
		return catalog.Result[catalog.Doc]{Status: catalog.StatusEmpty, Source: catalog.OpenLibrarySource}
	}
	return catalog.Result[catalog.Doc]{Items: docs, Status: catalog.StatusFound, Source: catalog.OpenLibrarySource}
}

type fakeRatings struct {
	mu      sync.Mutex
	ratings map[string]catalog.Rating
	isbns   []string
}

func (f *fakeRatings) ResolveRating(_ context.Context, isbn string) catalog.Rating {
	f.mu.Lock()
	defer f.mu.Unlock()
	if isbn == "" {
		return catalog.Rating{}
	}
	f.isbns = append(f.isbns, isbn)
	return f.ratings[isbn]
}

// scriptedPicker returns its values in order, then zeros.
type scriptedPicker struct {
	values []int
	bounds []int
}

func (p *scriptedPicker) IntN(n int) int {
	p.bounds = append(p.bounds, n)
	if len(p.values) == 0 {
		return 0
	}
	v := p.values[0]
	p.values = p.values[1:]
	return v
}

func ptr[T any](v T) *T { return &v }

func TestSearchTitleHarryPotter(t *testing.T) {
	titles := &fakeTitles{docs: map[string][]catalog.Doc{
		"Harry Potter": {
			{Title: "Harry Potter and the Philosopher's Stone", AuthorNames: []string{"J.K. Rowling"}, FirstPublishYear: "2001", ISBN: []string{"9780747532699"}},
			{Title: "Harry Potter and the Chamber of Secrets", AuthorNames: []string{"J.K. Rowling"}, FirstPublishYear: "1998"},
		},
	}}
	ratings := &fakeRatings{ratings: map[string]catalog.Rating{
		"9780747532699": {Average: ptr(4.5), Count: ptr(1200)},
	}}

	svc := New(Sources{Titles: titles, Ratings: ratings})
	res := svc.SearchTitle(context.Background(), "Harry Potter")

	require.Equal(t, 2, res.Total)
	require.Len(t, res.Books, 2)
	assert.Equal(t, "2001", res.Books[0].Year)
	assert.Equal(t, "1998", res.Books[1].Year)
	assert.InDelta(t, 4.5, *res.Books[0].Rating, 0.0001)
	assert.Nil(t, res.Books[1].Rating)
	// Only the book with an ISBN triggers a rating lookup.
	assert.Equal(t, []string{"9780747532699"}, ratings.isbns)
}

func TestSearchTitleShowsFirstThree(t *testing.T) {
	docs := []catalog.Doc{{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}, {Title: "5"}}
	titles := &fakeTitles{docs: map[string][]catalog.Doc{"Series": docs}}

	svc := New(Sources{Titles: titles, Ratings: &fakeRatings{}})
	res := svc.SearchTitle(context.Background(), "Series")

	require.Equal(t, 5, res.Total)
	require.Len(t, res.Books, 3)
	assert.Equal(t, "3", res.Books[2].Title)
}

func TestSearchTitleUnknownYear(t *testing.T) {
	titles := &fakeTitles{docs: map[string][]catalog.Doc{"Dune": {{Title: "Dune", FirstPublishYear: ""}}}}

	svc := New(Sources{Titles: titles, Ratings: &fakeRatings{}})
	res := svc.SearchTitle(context.Background(), "Dune")

	require.Len(t, res.Books, 1)
	assert.Equal(t, catalog.Unknown, res.Books[0].Year)
}

func TestSearchTitleFailureIsEmpty(t *testing.T) {
	titles := &fakeTitles{err: catalog.ErrTransport}

	svc := New(Sources{Titles: titles, Ratings: &fakeRatings{}})
	res := svc.SearchTitle(context.Background(), "Dune")

	assert.Equal(t, TitleResult{}, res)
}

func TestSearchAuthorPrimary(t *testing.T) {
	authors := &fakeAuthors{books: map[string][]catalog.Book{
		"Leo Tolstoy": {
			{Title: "War and Peace", Authors: []string{"Leo Tolstoy"}, Year: "2005-03-14", Rating: ptr(4.0), RatingsCount: ptr(10)},
			{Title: "Anna Karenina", Authors: []string{"Leo Tolstoy"}, Year: catalog.Unknown},
			{Title: "Resurrection", Year: "1899"},
			{Title: "Hadji Murat", Year: "1912"},
		},
	}}
	fallback := &fakeFallback{}

	svc := New(Sources{Authors: authors, FallbackAuthor: fallback})
	res := svc.SearchAuthor(context.Background(), "Leo Tolstoy")

	require.Equal(t, catalog.GoogleBooksSource, res.Source)
	require.Equal(t, 4, res.Total)
	require.Len(t, res.Books, 3)
	assert.Equal(t, "2005", res.Books[0].Year)
	assert.Equal(t, catalog.Unknown, res.Books[1].Year)
	assert.Equal(t, "1899", res.Books[2].Year)
	assert.Equal(t, 10, *res.Books[0].RatingsCount)
	assert.Equal(t, 0, fallback.calls)
}

func TestSearchAuthorFallsBackWithoutRating(t *testing.T) {
	authors := &fakeAuthors{}
	fallback := &fakeFallback{docs: map[string][]catalog.Doc{
		"Stephen King": {
			{Title: "It", AuthorNames: []string{"Stephen King"}, FirstPublishYear: "1986"},
		},
	}}

	svc := New(Sources{Authors: authors, FallbackAuthor: fallback, Ratings: &fakeRatings{}})
	res := svc.SearchAuthor(context.Background(), "Stephen King")

	require.Equal(t, catalog.OpenLibrarySource, res.Source)
	require.Equal(t, 1, res.Total)
	require.Len(t, res.Books, 1)
	assert.Equal(t, "It", res.Books[0].Title)
	assert.Equal(t, "1986", res.Books[0].Year)
	assert.Nil(t, res.Books[0].Rating)
	assert.Nil(t, res.Books[0].RatingsCount)
	assert.Equal(t, 1, fallback.calls)
}

func TestSearchAuthorFallsBackOnPrimaryFailure(t *testing.T) {
	authors := &fakeAuthors{err: errors.Join(catalog.ErrStatus, errors.New("quota exceeded"))}
	fallback := &fakeFallback{docs: map[string][]catalog.Doc{"Orwell": {{Title: "1984"}}}}

	svc := New(Sources{Authors: authors, FallbackAuthor: fallback})
	res := svc.SearchAuthor(context.Background(), "Orwell")

	require.Len(t, res.Books, 1)
	assert.Equal(t, "1984", res.Books[0].Title)
	assert.Empty(t, res.Books[0].Authors)
}

func TestSearchAuthorNothingFound(t *testing.T) {
	svc := New(Sources{Authors: &fakeAuthors{}, FallbackAuthor: &fakeFallback{}})

	res := svc.SearchAuthor(context.Background(), "Nobody")

	assert.Equal(t, AuthorResult{}, res)
}

func TestPickRandomFromAuthor(t *testing.T) {
	authors := &fakeAuthors{books: map[string][]catalog.Book{
		"George Orwell": {
			{Title: "1984", Authors: []string{"George Orwell"}, Year: "1949-06-08"},
			{Title: "Animal Farm", Authors: []string{"George Orwell"}, Year: "1945", ISBN: "9780451526342"},
			{Title: "Homage to Catalonia", Authors: []string{"George Orwell"}, Year: "1938"},
			{Title: "Burmese Days", Authors: []string{"George Orwell"}, Year: "1934"},
		},
	}}
	ratings := &fakeRatings{ratings: map[string]catalog.Rating{"9780451526342": {Average: ptr(3.9)}}}
	picker := &scriptedPicker{values: []int{2, 1}}

	svc := New(Sources{Authors: authors, Titles: &fakeTitles{}, Ratings: ratings, Picker: picker})
	book, ok := svc.PickRandom(context.Background())

	require.True(t, ok)
	assert.Equal(t, "Animal Farm", book.Title)
	assert.InDelta(t, 3.9, *book.Rating, 0.0001)
	assert.Equal(t, []string{"George Orwell"}, authors.queries)
	assert.Equal(t, []int{len(PopularAuthors), 3}, picker.bounds)
}

func TestPickRandomKeepsExistingRating(t *testing.T) {
	authors := &fakeAuthors{books: map[string][]catalog.Book{
		"Stephen King": {{Title: "It", Year: "1986-09-15", ISBN: "123", Rating: ptr(4.2)}},
	}}
	ratings := &fakeRatings{}

	svc := New(Sources{Authors: authors, Titles: &fakeTitles{}, Ratings: ratings, Picker: &scriptedPicker{}})
	book, ok := svc.PickRandom(context.Background())

	require.True(t, ok)
	assert.Equal(t, "1986", book.Year)
	assert.Empty(t, ratings.isbns)
}

func TestPickRandomFallsBackToTitle(t *testing.T) {
	titles := &fakeTitles{docs: map[string][]catalog.Doc{
		"The Hobbit": {{Title: "The Hobbit", AuthorNames: []string{"J.R.R. Tolkien"}, FirstPublishYear: "1937"}},
	}}
	picker := &scriptedPicker{values: []int{0, 2, 0}}

	svc := New(Sources{Authors: &fakeAuthors{}, Titles: titles, Ratings: &fakeRatings{}, Picker: picker})
	book, ok := svc.PickRandom(context.Background())

	require.True(t, ok)
	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, "J.R.R. Tolkien", book.Author(catalog.Unknown))
	assert.Equal(t, []string{"The Hobbit"}, titles.queries)
}

func TestPickRandomNotFound(t *testing.T) {
	svc := New(Sources{Authors: &fakeAuthors{}, Titles: &fakeTitles{}, Ratings: &fakeRatings{}, Picker: &scriptedPicker{}})

	book, ok := svc.PickRandom(context.Background())

	assert.False(t, ok)
	assert.Equal(t, catalog.Book{}, book)
}

func TestPickRandomDefaultPicker(t *testing.T) {
	var books []catalog.Book
	for _, title := range []string{"A", "B", "C"} {
		books = append(books, catalog.Book{Title: title, Year: catalog.Unknown})
	}
	all := map[string][]catalog.Book{}
	for _, a := range PopularAuthors {
		all[a] = books
	}

	svc := New(Sources{Authors: &fakeAuthors{books: all}, Titles: &fakeTitles{}, Ratings: &fakeRatings{}})
	for range 20 {
		book, ok := svc.PickRandom(context.Background())
		require.True(t, ok)
		assert.Contains(t, []string{"A", "B", "C"}, book.Title)
	}
}

func TestNormalizeYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2005-03-14", "2005"},
		{"2005", "2005"},
		{"199", "199"},
		{"", ""},
		{catalog.Unknown, catalog.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeYear(tt.in))
		})
	}
}
