// Package filehash digests whole files. Every file is read fully into memory
// before hashing; files are independent of each other, so many of them are
// hashed in parallel on a bounded worker pool.
package filehash

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"massnet.org/shasum/logging"
	"massnet.org/shasum/massutil"
)

// Result is the outcome of hashing one path.
type Result struct {
	Path   string
	Digest massutil.Hash
	Cached bool
	Err    error
}

// Hasher hashes files on a fixed-size pool of workers.
type Hasher struct {
	pool  *ants.Pool
	cache *Cache
}

// NewHasher creates a Hasher running at most workers files at once. Zero or
// a negative value uses one worker per CPU. cache may be nil.
func NewHasher(workers int, cache *Cache) (*Hasher, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	return &Hasher{
		pool:  pool,
		cache: cache,
	}, nil
}

// Release stops the workers. The cache is owned by the caller.
func (h *Hasher) Release() {
	h.pool.Release()
}

// HashFile reads path and returns its digest.
func (h *Hasher) HashFile(path string) (massutil.Hash, error) {
	r := h.hashFile(path)
	return r.Digest, r.Err
}

func (h *Hasher) hashFile(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Path: path, Err: errors.Wrapf(err, "read file %s", path)}
	}
	if info.IsDir() {
		return Result{Path: path, Err: errors.Errorf("read file %s: is a directory", path)}
	}

	if h.cache != nil {
		if digest, ok := h.cache.Get(path, info); ok {
			logging.VPrint(logging.DEBUG, "digest cache hit", logging.LogFormat{"path": path})
			return Result{Path: path, Digest: digest, Cached: true}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: errors.Wrapf(err, "read file %s", path)}
	}
	digest := massutil.SHA256(data)

	logging.VPrint(logging.DEBUG, "hashed file", logging.LogFormat{
		"path": path,
		"size": len(data),
	})

	if h.cache != nil {
		if err := h.cache.Put(path, info, digest); err != nil {
			logging.CPrint(logging.WARN, "update digest cache failed", logging.LogFormat{"path": path, "err": err})
		}
	}
	return Result{Path: path, Digest: digest}
}

// HashFiles hashes every path and returns the results in the order of paths.
// Files not yet started when ctx is done report ctx.Err().
func (h *Hasher) HashFiles(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		if err := ctx.Err(); err != nil {
			results[i] = Result{Path: path, Err: err}
			continue
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return
			}
			results[i] = h.hashFile(path)
		}
		if err := h.pool.Submit(task); err != nil {
			wg.Done()
			results[i] = Result{Path: path, Err: errors.Wrap(err, "submit task")}
		}
	}
	wg.Wait()

	return results
}
