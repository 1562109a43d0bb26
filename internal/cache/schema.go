package cache

// SQL schemas for cache tables.
// All cache tables use "cache_key" as the primary key column; timestamps are unix seconds.

// GoogleBooksCacheSchema caches Google Books volume searches (author and ISBN queries)
const GoogleBooksCacheSchema = `
CREATE TABLE IF NOT EXISTS googlebooks_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_googlebooks_expires_at ON googlebooks_cache(expires_at);
`

// OpenLibraryCacheSchema caches Open Library search.json results
const OpenLibraryCacheSchema = `
CREATE TABLE IF NOT EXISTS openlibrary_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_openlibrary_expires_at ON openlibrary_cache(expires_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	GoogleBooksCacheSchema,
	OpenLibraryCacheSchema,
}

// Table names.
const (
	GoogleBooksTable = "googlebooks_cache"
	OpenLibraryTable = "openlibrary_cache"
)

// ValidCacheTableNames is the whitelist of allowed cache table names
var ValidCacheTableNames = map[string]bool{
	GoogleBooksTable: true,
	OpenLibraryTable: true,
}
