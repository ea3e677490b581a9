package filehash

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/pkg/errors"
	"massnet.org/shasum/database/storage"
	_ "massnet.org/shasum/database/storage/ldbstorage"
	"massnet.org/shasum/logging"
	"massnet.org/shasum/massutil"
)

const (
	defaultDbType = "leveldb"

	// DefaultMemEntries bounds the in-memory tier of a Cache.
	DefaultMemEntries = 4096

	entrySize = 8 + 8 + len(massutil.Hash{})
)

var keyPrefix = []byte("d/")

// ErrInvalidEntry indicates a stored cache value could not be decoded.
var ErrInvalidEntry = errors.New("invalid digest cache entry")

type entry struct {
	size    int64
	modTime int64
	digest  massutil.Hash
}

func (e *entry) matches(info os.FileInfo) bool {
	return e.size == info.Size() && e.modTime == info.ModTime().UnixNano()
}

func (e *entry) bytes() []byte {
	buf := make([]byte, entrySize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(e.size))
	binary.BigEndian.PutUint64(buf[8:16], uint64(e.modTime))
	copy(buf[16:], e.digest[:])
	return buf
}

func decodeEntry(buf []byte) (*entry, error) {
	if len(buf) != entrySize {
		return nil, ErrInvalidEntry
	}
	e := &entry{
		size:    int64(binary.BigEndian.Uint64(buf[0:8])),
		modTime: int64(binary.BigEndian.Uint64(buf[8:16])),
	}
	copy(e.digest[:], buf[16:])
	return e, nil
}

// Cache remembers file digests keyed by absolute path. An entry is only
// trusted while the file keeps the size and modification time it had when
// it was hashed. Lookups go to an in-memory LRU first and then to the store.
type Cache struct {
	l     sync.Mutex
	mem   *lru.Cache
	store storage.Storage
}

// NewCache wraps store. A nil store keeps digests in memory only.
func NewCache(store storage.Storage, memEntries int) *Cache {
	return &Cache{
		mem:   lru.New(memEntries),
		store: store,
	}
}

// OpenCache opens, or creates, a persistent cache under dir.
func OpenCache(dir string) (*Cache, error) {
	store, err := storage.OpenStorage(defaultDbType, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open digest cache %s", dir)
	}
	return NewCache(store, DefaultMemEntries), nil
}

func cacheKey(path string) (string, []byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}
	key := make([]byte, 0, len(keyPrefix)+len(abs))
	key = append(key, keyPrefix...)
	key = append(key, abs...)
	return abs, key, nil
}

// Get returns the cached digest of path if info still describes the file
// that was hashed.
func (c *Cache) Get(path string, info os.FileInfo) (massutil.Hash, bool) {
	abs, key, err := cacheKey(path)
	if err != nil {
		return massutil.Hash{}, false
	}

	c.l.Lock()
	v, ok := c.mem.Get(abs)
	c.l.Unlock()
	if ok {
		if e := v.(*entry); e.matches(info) {
			return e.digest, true
		}
		return massutil.Hash{}, false
	}

	if c.store == nil {
		return massutil.Hash{}, false
	}
	buf, err := c.store.Get(key)
	if err != nil {
		if err != storage.ErrNotFound {
			logging.VPrint(logging.WARN, "read digest cache failed", logging.LogFormat{"path": abs, "err": err})
		}
		return massutil.Hash{}, false
	}
	e, err := decodeEntry(buf)
	if err != nil {
		logging.VPrint(logging.WARN, "drop corrupt digest cache entry", logging.LogFormat{"path": abs, "err": err})
		if err := c.store.Delete(key); err != nil {
			logging.VPrint(logging.WARN, "delete digest cache entry failed", logging.LogFormat{"path": abs, "err": err})
		}
		return massutil.Hash{}, false
	}

	c.l.Lock()
	c.mem.Add(abs, e)
	c.l.Unlock()

	if !e.matches(info) {
		return massutil.Hash{}, false
	}
	return e.digest, true
}

// Put records the digest of path as hashed while described by info.
func (c *Cache) Put(path string, info os.FileInfo, digest massutil.Hash) error {
	abs, key, err := cacheKey(path)
	if err != nil {
		return err
	}
	e := &entry{
		size:    info.Size(),
		modTime: info.ModTime().UnixNano(),
		digest:  digest,
	}

	c.l.Lock()
	c.mem.Add(abs, e)
	c.l.Unlock()

	if c.store == nil {
		return nil
	}
	return errors.Wrapf(c.store.Put(key, e.bytes()), "store digest of %s", abs)
}

// Prune removes persisted entries whose file is gone and returns how many
// were removed.
func (c *Cache) Prune() (int, error) {
	if c.store == nil {
		return 0, nil
	}

	it := c.store.NewIterator(storage.BytesPrefix(keyPrefix))
	defer it.Release()

	batch := c.store.NewBatch()
	defer batch.Release()

	var removed int
	for it.Next() {
		key := it.Key()
		abs := string(key[len(keyPrefix):])
		if _, err := os.Stat(abs); !os.IsNotExist(err) {
			continue
		}
		if err := batch.Delete(key); err != nil {
			return 0, err
		}
		c.l.Lock()
		c.mem.Remove(abs)
		c.l.Unlock()
		removed++
	}
	if err := it.Error(); err != nil {
		return 0, errors.Wrap(err, "iterate digest cache")
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, c.store.Write(batch)
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
