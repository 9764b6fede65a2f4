// Package file provides the on-disk document cache used by connectors.
//
// Entries live at <dir>/<jurisdiction>/<name>-<hash> and expire after a TTL.
// Writes go to a temporary file in the same directory and are renamed into
// place, so concurrent readers see either the old or the new entry.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Ensure DocumentCache implements the interface.
var _ driven.DocumentCache = (*DocumentCache)(nil)

// DefaultTTL is how long downloaded documents are reused.
const DefaultTTL = 24 * time.Hour

// maxNameLength bounds the readable part of a cache file name.
const maxNameLength = 80

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DocumentCache stores payloads under a root directory.
type DocumentCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDocumentCache creates a cache rooted at dir. A non-positive ttl uses DefaultTTL.
func NewDocumentCache(dir string, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DocumentCache{dir: dir, ttl: ttl, now: time.Now}
}

// Get returns a fresh cached payload.
func (c *DocumentCache) Get(jurisdiction, name string) ([]byte, bool, error) {
	path := c.path(jurisdiction, name)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat cache entry: %w", err)
	}
	if c.now().Sub(info.ModTime()) > c.ttl {
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return data, true, nil
}

// Put stores a payload with write-temp-then-rename semantics.
func (c *DocumentCache) Put(jurisdiction, name string, data []byte) error {
	path := c.path(jurisdiction, name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	return WriteAtomic(path, data, 0600)
}

// Path returns the file that holds an entry.
func (c *DocumentCache) Path(jurisdiction, name string) string {
	return c.path(jurisdiction, name)
}

func (c *DocumentCache) path(jurisdiction, name string) string {
	return filepath.Join(c.dir, sanitise(jurisdiction), entryName(name))
}

// entryName keeps a readable prefix and appends a hash of the full name so
// distinct names never collide after sanitising.
func entryName(name string) string {
	readable := sanitise(name)
	if len(readable) > maxNameLength {
		readable = readable[len(readable)-maxNameLength:]
	}
	return readable + "-" + strconv.FormatUint(xxhash.Sum64String(name), 16)
}

func sanitise(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	if s == "" {
		return "_"
	}
	return s
}

// WriteAtomic writes data to a temporary sibling of path and renames it into place.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
