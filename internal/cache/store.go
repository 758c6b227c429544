// Package cache implements the content-hash-keyed persistent cache
// described in spec §4.2. Entries live as files under a keyed directory
// (<project>/.applycrypto/cache/<schema_version>/<sha256>.bin) written
// with rename-into-place so readers never observe a torn write. A small
// SQLite metadata index sits alongside the blobs (entry size, schema
// version, created/last-access time) purely to drive Evict — it is never
// the source of truth for whether a blob exists.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/maypok86/otter"
)

// Store is the persistent, content-addressed cache.
type Store struct {
	root string
	db   *sql.DB
	hot  otter.Cache[string, []byte]

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Open creates or opens a Store rooted at dir (typically
// "<project>/.applycrypto/cache"). inMemoryEntries bounds the in-process
// hot-read cache sitting in front of the blob files; pass 0 to disable it.
func Open(dir string, inMemoryEntries int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	dbPath := filepath.Join(dir, "metadata.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache metadata db: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache metadata schema: %w", err)
	}

	var hot otter.Cache[string, []byte]
	if inMemoryEntries > 0 {
		hot, err = otter.MustBuilder[string, []byte](inMemoryEntries).
			CollectStats().
			Build()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to build in-memory cache: %w", err)
		}
	}

	return &Store{
		root:  dir,
		db:    db,
		hot:   hot,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key            TEXT PRIMARY KEY,
	schema_version TEXT NOT NULL,
	size_bytes     INTEGER NOT NULL,
	created_at     INTEGER NOT NULL,
	last_access_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_schema ON cache_entries(schema_version);
CREATE INDEX IF NOT EXISTS idx_cache_entries_access ON cache_entries(last_access_at);
`

func (s *Store) path(key Key) string {
	return filepath.Join(s.root, key.SchemaVersion, key.ContentHash+".bin")
}

func (s *Store) lockFor(key Key) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	k := key.String()
	if l, ok := s.locks[k]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[k] = l
	return l
}

// Get returns the cached value for key, or (nil, false, nil) on a miss.
func (s *Store) Get(key Key) ([]byte, bool, error) {
	if s.hot != nil {
		if v, ok := s.hot.Get(key.String()); ok {
			go s.touch(key)
			return v, true, nil
		}
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if s.hot != nil {
		s.hot.Set(key.String(), data)
	}
	s.touch(key)
	return data, true, nil
}

// Put writes value for key. Concurrent writers to the same key are
// last-writer-wins: each writer stages to a unique temp file and renames
// into place, so no reader ever observes a partially written blob.
func (s *Store) Put(key Key, value []byte) error {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(s.root, key.SchemaVersion)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache shard dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, key.ContentHash+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to stage cache entry: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize cache entry: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}

	if s.hot != nil {
		s.hot.Set(key.String(), value)
	}

	now := time.Now().Unix()
	_, err = s.db.Exec(`
		INSERT INTO cache_entries (key, schema_version, size_bytes, created_at, last_access_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET size_bytes = excluded.size_bytes, last_access_at = excluded.last_access_at
	`, key.String(), key.SchemaVersion, len(value), now, now)
	if err != nil {
		return fmt.Errorf("failed to record cache metadata: %w", err)
	}

	return nil
}

// Invalidate removes key's entry, if present.
func (s *Store) Invalidate(key Key) error {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	if s.hot != nil {
		s.hot.Delete(key.String())
	}

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key.String()); err != nil {
		return fmt.Errorf("failed to remove cache metadata: %w", err)
	}
	return nil
}

// InvalidatePath removes the entry matching the file's current on-disk
// content under schemaVersion, the "invalidate(path)" operation of spec §4.2.
func (s *Store) InvalidatePath(path, schemaVersion string) error {
	key, err := KeyForFile(path, schemaVersion)
	if err != nil {
		return err
	}
	return s.Invalidate(key)
}

func (s *Store) touch(key Key) {
	s.db.Exec(`UPDATE cache_entries SET last_access_at = ? WHERE key = ?`, time.Now().Unix(), key.String())
}

// Stat reports the cache's current entry count and total size, for
// `applycrypto cache info`.
type Stat struct {
	EntryCount  int
	TotalBytes  int64
	OldestEntry time.Time
	NewestEntry time.Time
}

// Stat reads current cache occupancy from the metadata index.
func (s *Store) Stat() (Stat, error) {
	var count int
	var totalBytes int64
	var oldest, newest sql.NullInt64
	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(size_bytes), 0), MIN(created_at), MAX(created_at)
		FROM cache_entries
	`)
	if err := row.Scan(&count, &totalBytes, &oldest, &newest); err != nil {
		return Stat{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	stat := Stat{EntryCount: count, TotalBytes: totalBytes}
	if oldest.Valid {
		stat.OldestEntry = time.Unix(oldest.Int64, 0)
	}
	if newest.Valid {
		stat.NewestEntry = time.Unix(newest.Int64, 0)
	}
	return stat, nil
}

// totalSize returns the sum of size_bytes across every entry.
func (s *Store) totalSize() (int64, error) {
	stat, err := s.Stat()
	if err != nil {
		return 0, err
	}
	return stat.TotalBytes, nil
}

// EvictStats reports what Evict removed.
type EvictStats struct {
	EntriesRemoved int
	BytesFreed     int64
}

// Evict removes entries whose last access is older than maxAge (skipped
// if maxAge <= 0), then — if the cache is still over maxSizeBytes
// (skipped if <= 0) — removes least-recently-used remaining entries
// until it fits. Both passes consult only the metadata index; blob
// files are deleted as entries are evicted.
func (s *Store) Evict(maxAge time.Duration, maxSizeBytes int64) (EvictStats, error) {
	var stats EvictStats

	if maxAge > 0 {
		cutoff := time.Now().Add(-maxAge).Unix()
		rows, err := s.db.Query(`SELECT key, schema_version, size_bytes FROM cache_entries WHERE last_access_at < ?`, cutoff)
		if err != nil {
			return stats, fmt.Errorf("failed to query stale entries: %w", err)
		}
		if err := s.evictRows(rows, &stats); err != nil {
			return stats, err
		}
	}

	if maxSizeBytes > 0 {
		for {
			total, err := s.totalSize()
			if err != nil {
				return stats, err
			}
			if total <= maxSizeBytes {
				break
			}
			rows, err := s.db.Query(`SELECT key, schema_version, size_bytes FROM cache_entries ORDER BY last_access_at ASC LIMIT 1`)
			if err != nil {
				return stats, fmt.Errorf("failed to query lru entry: %w", err)
			}
			before := stats.EntriesRemoved
			if err := s.evictRows(rows, &stats); err != nil {
				return stats, err
			}
			if stats.EntriesRemoved == before {
				break
			}
		}
	}

	return stats, nil
}

func (s *Store) evictRows(rows *sql.Rows, stats *EvictStats) error {
	defer rows.Close()
	type entry struct {
		keyStr, schemaVersion string
		sizeBytes             int64
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.keyStr, &e.schemaVersion, &e.sizeBytes); err != nil {
			return fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, e)
	}
	for _, e := range entries {
		contentHash := e.keyStr
		if idx := len(e.keyStr) - len(e.schemaVersion) - 1; idx > 0 {
			contentHash = e.keyStr[:idx]
		}
		key := Key{ContentHash: contentHash, SchemaVersion: e.schemaVersion}
		if err := s.Invalidate(key); err != nil {
			return err
		}
		stats.EntriesRemoved++
		stats.BytesFreed += e.sizeBytes
	}
	return nil
}

// Close releases the metadata database handle.
func (s *Store) Close() error {
	if s.hot != nil {
		s.hot.Close()
	}
	return s.db.Close()
}
