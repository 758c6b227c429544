package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Key identifies one cached parser/analyzer output. Per spec §3, a
// changed parser_schema_version invalidates the whole cache: the version
// is part of the key rather than a side table, so old-version entries
// simply become unreachable and are reclaimed by Evict.
type Key struct {
	ContentHash   string
	SchemaVersion string
}

// String returns the on-disk-safe form of the key, "<hash>_<version>".
func (k Key) String() string {
	return k.ContentHash + "_" + k.SchemaVersion
}

// HashBytes returns the sha256 hex digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the sha256 hex digest of the file at path, streaming
// it rather than reading it fully into memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// KeyForFile computes the cache Key for a file's current on-disk content
// under the given schema version.
func KeyForFile(path, schemaVersion string) (Key, error) {
	hash, err := HashFile(path)
	if err != nil {
		return Key{}, err
	}
	return Key{ContentHash: hash, SchemaVersion: schemaVersion}, nil
}
