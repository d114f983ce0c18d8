package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/project"
	"quill/internal/source"
	"quill/internal/symbols"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит итоги проверки программы по её дайджесту.
// Resolved objects are never serialized; a clean hit only lets `quill diag`
// skip resolution. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// LibrarySummary describes one library of a cached check.
type LibrarySummary struct {
	Name    string
	Path    string
	Digest  project.Digest
	Exports []string // public namespace-scope names, qualified
}

// DiskPayload is the msgpack record stored per program digest.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema    uint16
	Entry     string
	Digest    project.Digest
	Libraries []LibrarySummary
	// Broken is set when the check reported errors.
	Broken  bool
	Written time.Time
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "checks", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// resultToDiskPayload converts a finished check into its disk record.
func resultToDiskPayload(res *Result) *DiskPayload {
	payload := &DiskPayload{
		Schema:  diskCacheSchemaVersion,
		Entry:   res.Entry,
		Digest:  res.Digest,
		Broken:  res.HasErrors(),
		Written: time.Now().UTC(),
	}
	for _, lib := range res.Libraries {
		payload.Libraries = append(payload.Libraries, LibrarySummary{
			Name:    lib.Title,
			Path:    lib.Path,
			Digest:  lib.Digest,
			Exports: Exports(res.Universe, lib),
		})
	}
	return payload
}

// Exports lists the public namespace-scope names declared by lib, qualified
// and sorted.
func Exports(u *symbols.Universe, lib *symbols.Library) []string {
	if u == nil || lib == nil {
		return nil
	}
	var out []string
	for _, obj := range lib.Objects {
		b := obj.Base()
		if b.Private || b.Depth != 0 {
			continue
		}
		switch obj.Kind() {
		case symbols.KindMember, symbols.KindParam, symbols.KindAlias, symbols.KindNamespace:
			continue
		case symbols.KindScript:
		default:
			if b.Name == source.NoStringID {
				continue
			}
		}
		out = append(out, Qualified(u, obj))
	}
	sort.Strings(out)
	return out
}

// Qualified renders the `a::b::name` path of a namespace-scope object.
func Qualified(u *symbols.Universe, obj symbols.Object) string {
	b := obj.Base()
	name := u.Name(b.Name)
	if sc, ok := obj.(*symbols.Script); ok {
		return "script " + strconv.Quote(sc.Title)
	}
	if b.NS == nil || b.NS.Path == "" {
		return name
	}
	return b.NS.Path + "::" + name
}
