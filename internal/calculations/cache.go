// Package calculations provides a small expiring result cache backed by
// cache.db, so repeated analysis requests skip the metrics recomputation.
package calculations

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// TTLResults is how long a computed metrics table stays valid. Input data
// only changes when raw series are re-imported, so a day is plenty.
const TTLResults = 24 * time.Hour

const schema = `
CREATE TABLE IF NOT EXISTS result_cache (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
`

// Cache provides key-value storage with expiration, msgpack encoded.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCache creates a new cache instance.
func NewCache(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "result_cache").Logger(),
	}
}

// Init applies the schema.
func (c *Cache) Init() error {
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply cache schema: %w", err)
	}
	return nil
}

// Key builds a deterministic cache key from the analysis inputs. Assets are
// sorted so the key is independent of input order.
func Key(assets []string, step int, purchaseDate string, investment float64) string {
	sorted := make([]string, len(assets))
	copy(sorted, assets)
	sort.Strings(sorted)

	keyData := fmt.Sprintf("%s|%d|%s|%v", strings.Join(sorted, ","), step, purchaseDate, investment)
	h := sha256.Sum256([]byte(keyData))
	return hex.EncodeToString(h[:16])
}

// Get loads a cached value into dest. Returns false on miss, expiry, or a
// decode failure (stale entries are deleted; the caller just recomputes).
func (c *Cache) Get(key string, dest interface{}) bool {
	var value []byte
	var expiresAt int64
	err := c.db.QueryRow("SELECT value, expires_at FROM result_cache WHERE key = ?", key).Scan(&value, &expiresAt)
	if err != nil {
		return false
	}

	if expiresAt < time.Now().Unix() {
		c.Delete(key)
		return false
	}

	if err := msgpack.Unmarshal(value, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached value, recomputing")
		c.Delete(key)
		return false
	}

	c.log.Debug().Str("key", key).Msg("Cache hit")
	return true
}

// Set stores a value with a time-to-live.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for cache: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	_, err = c.db.Exec(`
		INSERT INTO result_cache (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, data, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (c *Cache) Delete(key string) {
	_, _ = c.db.Exec("DELETE FROM result_cache WHERE key = ?", key)
}

// Purge removes every entry. Called after a series refresh invalidates all
// previously computed tables.
func (c *Cache) Purge() error {
	_, err := c.db.Exec("DELETE FROM result_cache")
	return err
}
