package cache

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Sources maps the names accepted on the command line to cache tables.
var Sources = map[string]string{
	"googlebooks": GoogleBooksTable,
	"openlibrary": OpenLibraryTable,
}

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: googlebooks, openlibrary or all" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	tables, err := tablesFor(i.Source)
	if err != nil {
		return err
	}

	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	slog.Info("Invalidating cache", "source", i.Source, "database", cacheInstance.Path())

	var total int64
	for _, table := range tables {
		rowsDeleted, err := cacheInstance.InvalidateSource(table)
		if err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}
		total += rowsDeleted
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", total)
	return nil
}

func tablesFor(source string) ([]string, error) {
	if source == "all" {
		tables := make([]string, 0, len(Sources))
		for _, t := range Sources {
			tables = append(tables, t)
		}
		slices.Sort(tables)
		return tables, nil
	}
	if table, ok := Sources[source]; ok {
		return []string{table}, nil
	}

	names := make([]string, 0, len(Sources))
	for name := range Sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return nil, fmt.Errorf("invalid cache source '%s'; valid sources are: %s, all", source, strings.Join(names, ", "))
}
