package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

const (
	// DefaultCacheTTL is the default time-to-live for cached catalog responses
	DefaultCacheTTL = time.Hour
	// NegativeCacheTTL is the TTL for "not found" responses
	NegativeCacheTTL = 10 * time.Minute
	// MemoryDB keeps the cache in process memory only
	MemoryDB = ":memory:"
)

// FetchFunc represents a function that fetches data from an external source
type FetchFunc[T any] func() (T, error)

// CacheDB manages the SQLite database connection for caching
type CacheDB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	now  func() time.Time
}

var (
	globalCache     *CacheDB
	globalCacheOnce sync.Once
)

// ResetGlobalCache closes the current global cache and resets the singleton
// so the next call to GetGlobalCache will create a new instance.
func ResetGlobalCache() error {
	if globalCache != nil {
		if err := globalCache.Close(); err != nil {
			return err
		}
	}
	globalCache = nil
	globalCacheOnce = sync.Once{}
	return nil
}

// GetGlobalCache returns the singleton cache database instance
func GetGlobalCache() (*CacheDB, error) {
	var initErr error
	globalCacheOnce.Do(func() {
		dbPath := viper.GetString("cache.dbfile")
		if dbPath == "" {
			dbPath = MemoryDB
		}
		globalCache, initErr = NewCacheDB(dbPath)
		if initErr != nil {
			return
		}
		for _, schema := range AllCacheSchemas {
			if err := globalCache.CreateTable(schema); err != nil {
				initErr = fmt.Errorf("failed to create cache table: %w", err)
				return
			}
		}
	})
	if initErr != nil {
		globalCache = nil
		globalCacheOnce = sync.Once{}
		return nil, initErr
	}
	return globalCache, nil
}

// NewCacheDB creates a new CacheDB instance and opens the database connection
func NewCacheDB(dbPath string) (*CacheDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if dbPath == MemoryDB {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}

	return &CacheDB{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}, nil
}

// Path returns the database location.
func (c *CacheDB) Path() string {
	return c.path
}

// CreateTable creates a table using the provided schema
func (c *CacheDB) CreateTable(schema string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *CacheDB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InvalidateSource deletes all entries from the specified cache table
// and returns the number of rows deleted.
func (c *CacheDB) InvalidateSource(tableName string) (int64, error) {
	if err := validateTableName(tableName); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Debug("Cache table cleared", "table", tableName, "rows_deleted", rowsAffected)
	return rowsAffected, nil
}

// validateTableName checks the whitelist; table names are interpolated into SQL.
func validateTableName(tableName string) error {
	if !ValidCacheTableNames[tableName] {
		return fmt.Errorf("invalid cache table name: %s", tableName)
	}
	return nil
}

// GetOrFetchWithTTL retrieves data from cache or fetches it using the provided function.
// The ttlSelector is called after fetching to decide how long the value stays valid,
// which allows "not found" responses to expire sooner than real data.
// Fetch errors are returned as-is and never cached.
func GetOrFetchWithTTL[T any](tableName, cacheKey string, fetchFunc FetchFunc[T], ttlSelector func(T) time.Duration) (T, bool, error) {
	var zero T

	cache, err := GetGlobalCache()
	if err != nil {
		slog.Warn("Failed to initialize cache, fetching directly", "error", err)
		data, fetchErr := fetchFunc()
		return data, false, fetchErr
	}

	cached, fromCache, err := cache.Get(tableName, cacheKey)
	if err == nil && fromCache {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("Cache hit", "table", tableName, "key", cacheKey)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, will refetch", "table", tableName, "key", cacheKey, "error", err)
	}

	slog.Debug("Cache miss, fetching data", "table", tableName, "key", cacheKey)
	data, err := fetchFunc()
	if err != nil {
		return zero, false, err
	}

	ttl := configuredTTL()
	if ttlSelector != nil {
		ttl = ttlSelector(data)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", tableName, "key", cacheKey, "error", err)
		return data, false, nil
	}
	if err := cache.Set(tableName, cacheKey, string(jsonData), ttl); err != nil {
		// caching failure shouldn't fail the lookup
		slog.Warn("Failed to cache data", "table", tableName, "key", cacheKey, "error", err)
	} else {
		slog.Debug("Data cached successfully", "table", tableName, "key", cacheKey, "ttl", ttl)
	}

	return data, false, nil
}

// SelectNegativeCacheTTL returns a TTL selector that keeps "not found" results for
// NegativeCacheTTL (capped at the configured TTL) and everything else for the configured TTL.
func SelectNegativeCacheTTL[T any](isNotFound func(T) bool) func(T) time.Duration {
	return func(result T) time.Duration {
		ttl := configuredTTL()
		if isNotFound(result) {
			return min(NegativeCacheTTL, ttl)
		}
		return ttl
	}
}

func configuredTTL() time.Duration {
	ttlStr := viper.GetString("cache.ttl")
	if ttlStr == "" {
		return DefaultCacheTTL
	}
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		slog.Warn("Invalid cache TTL, using default", "ttl", ttlStr, "error", err)
		return DefaultCacheTTL
	}
	return ttl
}

// Get retrieves an unexpired value from the specified table.
// Returns the cached data, whether it was found, and any error.
func (c *CacheDB) Get(tableName, key string) (string, bool, error) {
	if err := validateTableName(tableName); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT data, expires_at
		FROM %s
		WHERE cache_key = ?
	`, tableName)

	var data string
	var expiresAt int64
	err := c.db.QueryRow(query, key).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}

	if c.now().Unix() >= expiresAt {
		slog.Debug("Cache expired", "table", tableName, "key", key)
		return "", false, nil
	}

	return data, true, nil
}

// Set stores a value in the cache for ttl.
func (c *CacheDB) Set(tableName, key, data string, ttl time.Duration) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (cache_key, data, cached_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, tableName)

	if _, err := c.db.Exec(query, key, data, now.Unix(), now.Add(ttl).Unix()); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// ClearExpired removes expired entries from the specified table
func (c *CacheDB) ClearExpired(tableName string) (int64, error) {
	if err := validateTableName(tableName); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", tableName), c.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired cache: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		slog.Info("Cleared expired cache entries", "table", tableName, "count", rows)
	}
	return rows, nil
}
