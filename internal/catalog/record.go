package catalog

import (
	"encoding/json"
	"strings"
)

// Display defaults used when a catalog omits a field.
const (
	UnknownTitle  = "Без названия"
	Unknown       = "Неизвестно"
	NoDescription = "Нет описания"
)

// Record is a raw catalog document. The set of implementations is closed:
// Doc (Open Library search) and Volume (Google Books).
type Record interface {
	record()
}

// Doc is one entry of an Open Library search.json "docs" list.
type Doc struct {
	Key              string      `json:"key,omitempty"`
	Title            string      `json:"title,omitempty"`
	AuthorNames      []string    `json:"author_name,omitempty"`
	FirstPublishYear looseString `json:"first_publish_year,omitempty"`
	ISBN             []string    `json:"isbn,omitempty"`
}

// IndustryIdentifier is a typed identifier attached to a Google Books volume.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Volume is the "volumeInfo" object of a Google Books item.
type Volume struct {
	Title               string               `json:"title,omitempty"`
	Authors             []string             `json:"authors,omitempty"`
	PublishedDate       string               `json:"publishedDate,omitempty"`
	Description         string               `json:"description,omitempty"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers,omitempty"`
	AverageRating       *float64             `json:"averageRating,omitempty"`
	RatingsCount        *int                 `json:"ratingsCount,omitempty"`
}

func (Doc) record()    {}
func (Volume) record() {}

// ISBN identifier types recognized on Google Books volumes.
const (
	ISBN13 = "ISBN_13"
	ISBN10 = "ISBN_10"
)

// ExtractISBN returns the first usable ISBN of r, or "" when it has none.
func ExtractISBN(r Record) string {
	switch v := r.(type) {
	case Volume:
		for _, id := range v.IndustryIdentifiers {
			if (id.Type == ISBN13 || id.Type == ISBN10) && id.Identifier != "" {
				return id.Identifier
			}
		}
	case Doc:
		if len(v.ISBN) > 0 {
			return v.ISBN[0]
		}
	}
	return ""
}

// Rating is an average score in [0,5] and the number of ratings behind it.
// Nil fields mean the catalog did not report them.
type Rating struct {
	Average *float64 `json:"average,omitempty"`
	Count   *int     `json:"count,omitempty"`
}

// Book is the normalized form of a catalog record.
type Book struct {
	Title        string
	Authors      []string
	Year         string
	Description  string
	ISBN         string
	Identifiers  []IndustryIdentifier
	Rating       *float64
	RatingsCount *int
	Source       string
}

// Author returns the first author, or fallback when the book lists none.
func (b Book) Author(fallback string) string {
	if len(b.Authors) > 0 && b.Authors[0] != "" {
		return b.Authors[0]
	}
	return fallback
}

// HasRating reports whether the book carries a non-zero average rating.
func (b Book) HasRating() bool {
	return b.Rating != nil && *b.Rating > 0
}

// WithRating returns a copy of b with r applied.
func (b Book) WithRating(r Rating) Book {
	b.Rating = r.Average
	b.RatingsCount = r.Count
	return b
}

// NormalizeDoc converts an Open Library search document.
func NormalizeDoc(d Doc) Book {
	year := strings.TrimSpace(string(d.FirstPublishYear))
	if year == "" {
		year = Unknown
	}
	return Book{
		Title:       orDefault(d.Title, UnknownTitle),
		Authors:     d.AuthorNames,
		Year:        year,
		Description: NoDescription,
		ISBN:        ExtractISBN(d),
		Source:      OpenLibrarySource,
	}
}

// NormalizeVolume converts a Google Books volume.
func NormalizeVolume(v Volume) Book {
	authors := v.Authors
	if len(authors) == 0 {
		authors = []string{Unknown}
	}
	return Book{
		Title:        orDefault(v.Title, UnknownTitle),
		Authors:      authors,
		Year:         orDefault(v.PublishedDate, Unknown),
		Description:  orDefault(v.Description, NoDescription),
		ISBN:         ExtractISBN(v),
		Identifiers:  v.IndustryIdentifiers,
		Rating:       v.AverageRating,
		RatingsCount: v.RatingsCount,
		Source:       GoogleBooksSource,
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// looseString accepts either a JSON string or a JSON number. Any other shape
// decodes to "" instead of failing the whole response.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(n.String())
	return nil
}
