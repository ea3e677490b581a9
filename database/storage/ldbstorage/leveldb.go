package ldbstorage

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"massnet.org/shasum/database/storage"
	"massnet.org/shasum/logging"
)

// DbType is the name this driver registers under.
const DbType = "leveldb"

type levelDB struct {
	db *leveldb.DB
}

type levelBatch struct {
	b *leveldb.Batch
}

type levelIterator struct {
	iter iterator.Iterator
}

func init() {
	storage.RegisterDriver(storage.StorageDriver{
		DbType:      DbType,
		OpenStorage: OpenDB,
	})
}

// OpenDB opens the leveldb database at path, creating it if needed.
func OpenDB(path string) (storage.Storage, error) {
	opts := &opt.Options{
		Filter:             filter.NewBloomFilter(10),
		WriteBuffer:        4 * opt.MiB,
		BlockSize:          4 * opt.KiB,
		BlockCacheCapacity: 8 * opt.MiB,
		Compression:        opt.NoCompression,
	}

	ldb, err := leveldb.OpenFile(path, opts)
	if err != nil {
		logging.CPrint(logging.ERROR, "open leveldb error", logging.LogFormat{
			"path": path,
			"err":  err,
		})
		return nil, err
	}

	logging.VPrint(logging.DEBUG, "open leveldb", logging.LogFormat{"path": path})
	return &levelDB{db: ldb}, nil
}

func (l *levelDB) Close() error {
	return l.db.Close()
}

func (l *levelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (l *levelDB) Put(key, value []byte) error {
	if len(key) == 0 {
		return storage.ErrInvalidKey
	}
	return l.db.Put(key, value, nil)
}

func (l *levelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *levelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *levelDB) NewBatch() storage.Batch {
	return &levelBatch{
		b: new(leveldb.Batch),
	}
}

func (l *levelDB) Write(batch storage.Batch) error {
	lb, ok := batch.(*levelBatch)
	if !ok {
		return storage.ErrInvalidBatch
	}
	return l.db.Write(lb.b, nil)
}

func (l *levelDB) NewIterator(slice *storage.Range) storage.Iterator {
	var r *util.Range
	if slice != nil {
		r = &util.Range{Start: slice.Start, Limit: slice.Limit}
		if len(r.Start) == 0 {
			r.Start = nil
		}
		if len(r.Limit) == 0 {
			r.Limit = nil
		}
	}
	return &levelIterator{iter: l.db.NewIterator(r, nil)}
}

// -------------levelBatch-------------

func (b *levelBatch) Put(key, value []byte) error {
	if len(key) == 0 {
		return storage.ErrInvalidKey
	}
	b.b.Put(key, value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	if len(key) == 0 {
		return storage.ErrInvalidKey
	}
	b.b.Delete(key)
	return nil
}

func (b *levelBatch) Release() {
	b.b = nil
}

// -----------------levelIterator-----------------

func (it *levelIterator) Next() bool {
	return it.iter.Next()
}

func (it *levelIterator) Key() []byte {
	k := it.iter.Key()
	data := make([]byte, len(k))
	copy(data, k)
	return data
}

func (it *levelIterator) Value() []byte {
	v := it.iter.Value()
	data := make([]byte, len(v))
	copy(data, v)
	return data
}

func (it *levelIterator) Release() {
	it.iter.Release()
}

func (it *levelIterator) Error() error {
	return it.iter.Error()
}
