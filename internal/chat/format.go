package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookbot/internal/catalog"
	"github.com/lepinkainen/bookbot/internal/lookup"
)

// FormatTitleResult renders a title search as a numbered listing.
func FormatTitleResult(res lookup.TitleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Найдено книг: %d\n\n", res.Total)

	for i, book := range res.Books {
		fmt.Fprintf(&b, "%d. %s\n", i+1, book.Title)
		fmt.Fprintf(&b, "   Автор: %s\n", book.Author(catalog.Unknown))
		fmt.Fprintf(&b, "   Год: %s\n", book.Year)
		if book.HasRating() {
			fmt.Fprintf(&b, "   Рейтинг: %s\n", ratingLine(*book.Rating))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatAuthorResult renders an author search. Books without authors are
// attributed to the query itself.
func FormatAuthorResult(author string, res lookup.AuthorResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Книги автора %s:\n\n", author)

	for i, book := range res.Books {
		fmt.Fprintf(&b, "%d. %s\n", i+1, book.Title)
		fmt.Fprintf(&b, "   Автор: %s\n", book.Author(author))
		if knownYear(book.Year) {
			fmt.Fprintf(&b, "   Год: %s\n", book.Year)
		}
		if book.HasRating() {
			fmt.Fprintf(&b, "   Рейтинг: %s\n", ratingLine(*book.Rating))
			if book.RatingsCount != nil && *book.RatingsCount > 0 {
				fmt.Fprintf(&b, "   Оценок: %d\n", *book.RatingsCount)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRandomBook renders a random pick followed by the follow-up commands.
func FormatRandomBook(book catalog.Book) string {
	var b strings.Builder
	b.WriteString("Случайная книга:\n\n")
	fmt.Fprintf(&b, "Название: %s\n", book.Title)
	fmt.Fprintf(&b, "Автор: %s\n", book.Author(catalog.Unknown))
	if knownYear(book.Year) {
		fmt.Fprintf(&b, "Год: %s\n", book.Year)
	}
	if book.HasRating() {
		fmt.Fprintf(&b, "Рейтинг: %s\n", ratingLine(*book.Rating))
	}
	b.WriteString(randomFooter)
	return b.String()
}

// Stars returns one star per whole rating point.
func Stars(rating float64) string {
	if rating <= 0 {
		return ""
	}
	return strings.Repeat("★", int(rating))
}

func ratingLine(rating float64) string {
	return formatRating(rating) + "/5 " + Stars(rating)
}

// formatRating always keeps a fractional part: 4 renders as "4.0".
func formatRating(rating float64) string {
	s := strconv.FormatFloat(rating, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func knownYear(year string) bool {
	return year != "" && year != catalog.Unknown
}
