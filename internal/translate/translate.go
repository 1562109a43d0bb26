// Package translate maps native-language (Russian) author names and book titles
// to the English form the public book catalogs index.
package translate

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed translations.yaml
var embeddedTables []byte

// Kind selects which lookup table a query is matched against.
type Kind int

const (
	// Author matches against the author table.
	Author Kind = iota
	// Title matches against the title table.
	Title
)

func (k Kind) String() string {
	switch k {
	case Author:
		return "author"
	case Title:
		return "title"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrMalformedTable is returned when the translation document has an unexpected shape.
var ErrMalformedTable = errors.New("malformed translation table")

type entry struct {
	native    string
	canonical string
}

// Table is an immutable native → canonical mapping.
type Table struct {
	exact map[string]string
	// scan holds the entries longest key first; equal lengths keep declaration order.
	scan []entry
}

func newTable(entries []entry) *Table {
	t := &Table{
		exact: make(map[string]string, len(entries)),
		scan:  slices.Clone(entries),
	}
	for _, e := range entries {
		if _, dup := t.exact[e.native]; !dup {
			t.exact[e.native] = e.canonical
		}
	}
	slices.SortStableFunc(t.scan, func(a, b entry) int {
		return utf8.RuneCountInString(b.native) - utf8.RuneCountInString(a.native)
	})
	return t
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.exact)
}

// lookup expects an already lower-cased query.
func (t *Table) lookup(lowered string) (string, bool) {
	if v, ok := t.exact[lowered]; ok {
		return v, true
	}
	for _, e := range t.scan {
		if strings.Contains(lowered, e.native) {
			return e.canonical, true
		}
	}
	return "", false
}

// Translator holds the author and title tables.
type Translator struct {
	authors *Table
	titles  *Table
}

// New parses a YAML document with top-level "authors" and "titles" mappings.
// Mapping order is preserved.
func New(data []byte) (*Translator, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing translation tables: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedTable)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrMalformedTable)
	}

	t := &Translator{
		authors: newTable(nil),
		titles:  newTable(nil),
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		entries, err := readEntries(root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", name, err)
		}
		switch name {
		case "authors":
			t.authors = newTable(entries)
		case "titles":
			t.titles = newTable(entries)
		default:
			return nil, fmt.Errorf("%w: unknown section %q", ErrMalformedTable, name)
		}
	}
	return t, nil
}

func readEntries(node *yaml.Node) ([]entry, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: section must be a mapping", ErrMalformedTable)
	}
	entries := make([]entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: entries must be scalars", ErrMalformedTable, k.Line)
		}
		if k.Value == "" {
			return nil, fmt.Errorf("%w: line %d: empty key", ErrMalformedTable, k.Line)
		}
		entries = append(entries, entry{native: lower(k.Value), canonical: v.Value})
	}
	return entries, nil
}

// Translate returns the canonical search term for query. An exact
// (case-insensitive) key match wins; otherwise the longest key contained in the
// query is used. Short keys can match inside unrelated longer words. When no
// key matches the query is returned unchanged.
func (t *Translator) Translate(query string, kind Kind) string {
	table := t.table(kind)
	if table == nil {
		return query
	}
	if v, ok := table.lookup(lower(query)); ok {
		return v
	}
	return query
}

// Table returns the table used for kind.
func (t *Translator) Table(kind Kind) *Table {
	return t.table(kind)
}

func (t *Translator) table(kind Kind) *Table {
	switch kind {
	case Author:
		return t.authors
	case Title:
		return t.titles
	default:
		return nil
	}
}

var defaultTranslator = sync.OnceValue(func() *Translator {
	t, err := New(embeddedTables)
	if err != nil {
		panic(fmt.Sprintf("embedded translation tables: %v", err))
	}
	return t
})

// Default returns the translator built from the embedded tables.
func Default() *Translator {
	return defaultTranslator()
}

// Translate translates query with the embedded tables.
func Translate(query string, kind Kind) string {
	return Default().Translate(query, kind)
}

// lower applies full Unicode lower-casing. A Caser is stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
