package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lepinkainen/bookbot/internal/catalog"
	"github.com/lepinkainen/bookbot/internal/lookup"
	"github.com/lepinkainen/bookbot/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	titles  map[string]lookup.TitleResult
	authors map[string]lookup.AuthorResult
	random  *catalog.Book
	panics  bool

	queries []string
}

func (f *fakeLookup) SearchTitle(_ context.Context, title string) lookup.TitleResult {
	if f.panics {
		panic("boom")
	}
	f.queries = append(f.queries, title)
	return f.titles[title]
}

func (f *fakeLookup) SearchAuthor(_ context.Context, author string) lookup.AuthorResult {
	f.queries = append(f.queries, author)
	return f.authors[author]
}

func (f *fakeLookup) PickRandom(context.Context) (catalog.Book, bool) {
	if f.random == nil {
		return catalog.Book{}, false
	}
	return *f.random, true
}

type recorder struct {
	replies []string
	failAt  int
}

func (r *recorder) reply(_ context.Context, text string) error {
	r.replies = append(r.replies, text)
	if r.failAt > 0 && len(r.replies) == r.failAt {
		return errors.New("send failed")
	}
	return nil
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    []string
		ok      bool
	}{
		{"/find Harry Potter", "find", []string{"Harry", "Potter"}, true},
		{"/find@BookLookupBot   war  and peace ", "find", []string{"war", "and", "peace"}, true},
		{"/START", "start", []string{}, true},
		{"/random", "random", []string{}, true},
		{"hello there", "", nil, false},
		{"", "", nil, false},
		{"/", "", nil, false},
		{"/@bot", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			command, args, ok := ParseCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.command, command)
			if tt.ok {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestHandleStartAndHelp(t *testing.T) {
	d := NewDispatcher(&fakeLookup{})

	rec := &recorder{}
	require.NoError(t, d.Handle(context.Background(), "/start", rec.reply))
	require.NoError(t, d.Handle(context.Background(), "/help", rec.reply))

	require.Len(t, rec.replies, 2)
	assert.True(t, strings.HasPrefix(rec.replies[0], "Книжный бот\n\n"))
	assert.True(t, strings.HasSuffix(rec.replies[1], "Поиск по автору работает на русском и английском."))
}

func TestHandleFindUsage(t *testing.T) {
	fake := &fakeLookup{}
	d := NewDispatcher(fake)
	rec := &recorder{}

	require.NoError(t, d.Handle(context.Background(), "/find", rec.reply))

	assert.Equal(t, []string{findUsageText}, rec.replies)
	assert.Empty(t, fake.queries)
}

func TestHandleFindFound(t *testing.T) {
	fake := &fakeLookup{titles: map[string]lookup.TitleResult{
		"Harry Potter": {Total: 1, Books: []catalog.Book{{Title: "Harry Potter", Year: "1997"}}},
	}}
	d := NewDispatcher(fake)
	rec := &recorder{}

	require.NoError(t, d.Handle(context.Background(), "/find  Harry   Potter", rec.reply))

	require.Len(t, rec.replies, 2)
	assert.Equal(t, "Ищу книгу: Harry Potter...", rec.replies[0])
	assert.True(t, strings.HasPrefix(rec.replies[1], "Найдено книг: 1\n\n1. Harry Potter\n"))
	assert.Equal(t, []string{"Harry Potter"}, fake.queries)
}

func TestHandleFindNotFound(t *testing.T) {
	d := NewDispatcher(&fakeLookup{})
	rec := &recorder{}

	before := testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues(CommandFind, resultNotFound))
	require.NoError(t, d.Handle(context.Background(), "/find zzzz", rec.reply))

	require.Len(t, rec.replies, 2)
	assert.Equal(t, "Книги по запросу 'zzzz' не найдены.\nПопробуйте английское название или другой запрос.", rec.replies[1])
	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues(CommandFind, resultNotFound)), 0.001)
}

func TestHandleAuthor(t *testing.T) {
	fake := &fakeLookup{authors: map[string]lookup.AuthorResult{
		"Stephen King": {Total: 1, Source: catalog.OpenLibrarySource, Books: []catalog.Book{{Title: "It", Year: "1986"}}},
	}}
	d := NewDispatcher(fake)
	rec := &recorder{}

	require.NoError(t, d.Handle(context.Background(), "/author Stephen King", rec.reply))

	require.Len(t, rec.replies, 2)
	assert.Equal(t, "Ищу книги автора: Stephen King...", rec.replies[0])
	assert.Equal(t, "Книги автора Stephen King:\n\n1. It\n   Автор: Stephen King\n   Год: 1986\n\n", rec.replies[1])
}

func TestHandleAuthorUsageAndNotFound(t *testing.T) {
	d := NewDispatcher(&fakeLookup{})

	rec := &recorder{}
	require.NoError(t, d.Handle(context.Background(), "/author", rec.reply))
	assert.Equal(t, []string{authorUsageText}, rec.replies)

	rec = &recorder{}
	require.NoError(t, d.Handle(context.Background(), "/author Nobody", rec.reply))
	require.Len(t, rec.replies, 2)
	assert.True(t, strings.HasPrefix(rec.replies[1], "Книги автора 'Nobody' не найдены.\n\n"))
}

func TestHandleRandom(t *testing.T) {
	d := NewDispatcher(&fakeLookup{random: &catalog.Book{Title: "1984", Authors: []string{"George Orwell"}, Year: "1949"}})
	rec := &recorder{}

	require.NoError(t, d.Handle(context.Background(), "/random", rec.reply))

	require.Len(t, rec.replies, 2)
	assert.Equal(t, pickingRandomText, rec.replies[0])
	assert.Contains(t, rec.replies[1], "Название: 1984\n")
}

func TestHandleRandomNotFound(t *testing.T) {
	d := NewDispatcher(&fakeLookup{})
	rec := &recorder{}

	require.NoError(t, d.Handle(context.Background(), "/random", rec.reply))

	assert.Equal(t, []string{pickingRandomText, randomNotFoundText}, rec.replies)
}

func TestHandleNotCommand(t *testing.T) {
	d := NewDispatcher(&fakeLookup{})
	rec := &recorder{}

	err := d.Handle(context.Background(), "what should I read?", rec.reply)

	require.ErrorIs(t, err, ErrNotCommand)
	assert.Empty(t, rec.replies)
}

func TestHandleUnknownCommand(t *testing.T) {
	d := NewDispatcher(&fakeLookup{})
	rec := &recorder{}

	err := d.Handle(context.Background(), "/settings", rec.reply)

	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Empty(t, rec.replies)
}

func TestRunRecoversFromPanic(t *testing.T) {
	d := NewDispatcher(&fakeLookup{panics: true})
	rec := &recorder{}

	before := testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues(CommandFind, resultPanic))
	err := d.Run(context.Background(), CommandFind, []string{"Dune"}, rec.reply)

	require.Error(t, err)
	assert.Equal(t, []string{"Ищу книгу: Dune...", searchErrorText}, rec.replies)
	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues(CommandFind, resultPanic)), 0.001)
}

func TestRunReplyFailure(t *testing.T) {
	d := NewDispatcher(&fakeLookup{})
	rec := &recorder{failAt: 1}

	err := d.Run(context.Background(), CommandRandom, nil, rec.reply)

	require.Error(t, err)
	assert.Equal(t, []string{pickingRandomText, genericError}, rec.replies)
}
