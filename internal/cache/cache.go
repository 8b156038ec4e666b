package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"

	"tyjson/internal/diag"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

var (
	// ErrCorrupt marks an entry that exists but cannot be decoded.
	ErrCorrupt = errors.New("corrupt cache entry")
	// ErrLocked marks a failure to take the cache directory lock.
	ErrLocked = errors.New("cache directory is locked")
)

// Digest identifies a cached unit by the content it was lowered from.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// DigestOf hashes the manifest bytes together with the tool version, so an
// upgrade never serves documents produced by an older lowering.
func DigestOf(toolVersion string, source []byte) Digest {
	h := sha256.New()
	h.Write([]byte(toolVersion))
	h.Write([]byte{0})
	h.Write(source)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Payload is one cached unit: the compact JSON document and the diagnostics
// reported while producing it.
type Payload struct {
	Schema uint16
	Unit   string
	Stored int64
	Doc    []byte
	Diags  []diag.Diagnostic
}

// Cache stores lowered documents on disk. Writers and readers in different
// processes serialize on a lock file in the cache directory; goroutines of
// one process serialize on mu first, since a flock handle is per process.
type Cache struct {
	mu   sync.Mutex
	dir  string
	lock *flock.Flock
}

// DefaultDir returns $XDG_CACHE_HOME/<app>, falling back to ~/.cache/<app>.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Open creates the cache directory if needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{dir: dir, lock: flock.New(filepath.Join(dir, ".lock"))}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "docs", key.String()+".mp")
}

// Put serializes and writes a payload.
func (c *Cache) Put(key Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.lock.Lock(); err != nil {
		return fmt.Errorf("cache: %w: %w", ErrLocked, err)
	}
	defer func() {
		if unlockErr := c.lock.Unlock(); err == nil && unlockErr != nil {
			err = fmt.Errorf("cache: release lock: %w", unlockErr)
		}
	}()

	p := c.pathFor(key)
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	stored := *payload
	stored.Schema = schemaVersion
	if stored.Stored == 0 {
		stored.Stored = time.Now().Unix()
	}
	if err = msgpack.NewEncoder(f).Encode(&stored); err != nil {
		_ = f.Close()
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err = os.Rename(tmp, p); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *Cache) Get(key Digest) (payload *Payload, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.lock.RLock(); err != nil {
		return nil, false, fmt.Errorf("cache: %w: %w", ErrLocked, err)
	}
	defer func() {
		if unlockErr := c.lock.Unlock(); err == nil && unlockErr != nil {
			err = fmt.Errorf("cache: release lock: %w", unlockErr)
		}
	}()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: %w", err)
	}
	var out Payload
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w: %w", key, ErrCorrupt, err)
	}
	if out.Schema != schemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached document.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("cache: %w: %w", ErrLocked, err)
	}
	defer func() { _ = c.lock.Unlock() }()

	docs := filepath.Join(c.dir, "docs")
	old := docs + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(docs, old); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := os.MkdirAll(docs, 0o755); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return os.RemoveAll(old)
}
