// Package diskcache memoizes expensive computations as files on disk,
// evicting least-recently-modified entries once a size budget is exceeded.
package diskcache

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	spooky "github.com/dgryski/go-spooky"
	"github.com/fsoeltoni/vocal-remover/errors"
)

// ErrNoSuchKey is returned by Cache.Get when a key does not exist in the cache
var ErrNoSuchKey = errors.New("key does not exist in cache")

// Options represents options for a cache
type Options struct {
	MaxSize         int64 // MaxSize is the maximum total size of the cache in bytes
	BytesUntilFlush int64
}

// Cache represents a disk-based LRU cache
type Cache struct {
	Path            string
	opts            Options
	bytesSinceFlush int64 // bytes written since last flushCapacity
}

// Open creates a cache with contents stored as files in the given directory.
// It creates the directory if it does not already exist.
func Open(path string, opts Options) (*Cache, error) {
	err := os.MkdirAll(path, 0777)
	if err != nil {
		return nil, err
	}
	return &Cache{
		Path: path,
		opts: opts,
	}, nil
}

// OpenTemp creates a temporary directory and returns a cache backed by this
// directory. The user must remove the directory and any files within it when
// done.
func OpenTemp(opts Options) (*Cache, error) {
	path, err := ioutil.TempDir("", "")
	if err != nil {
		return nil, err
	}
	return Open(path, opts)
}

// Get looks up the value for the given key and returns it. If the key does
// not exist then ErrNoSuchKey is returned.
func (c *Cache) Get(key []byte) ([]byte, error) {
	path := filepath.Join(c.Path, hash(key))
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSuchKey
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether the key exists.
func (c *Cache) Exists(key []byte) bool {
	path := filepath.Join(c.Path, hash(key))
	_, err := os.Stat(path)
	return err == nil
}

// Put adds a key/value pair to the cache.
func (c *Cache) Put(key []byte, val []byte) error {
	c.bytesSinceFlush += int64(len(val))
	if c.bytesSinceFlush > c.opts.BytesUntilFlush {
		if err := c.flushCapacity(int64(len(val))); err != nil {
			return fmt.Errorf("error cleaning up cache: %v", err)
		}
		c.bytesSinceFlush = 0
	}

	path := filepath.Join(c.Path, hash(key))
	return ioutil.WriteFile(path, val, 0777)
}

// flushCapacity deletes old entries until there are at least n bytes left
// in the cache budget.
func (c *Cache) flushCapacity(n int64) error {
	files, err := ioutil.ReadDir(c.Path)
	if err != nil {
		return err
	}

	var sum int64
	for _, f := range files {
		sum += f.Size()
	}

	if sum+n <= c.opts.MaxSize {
		return nil
	}

	sort.Sort(byModTime(files))

	for _, f := range files {
		err := os.Remove(filepath.Join(c.Path, f.Name()))
		if err != nil {
			return err
		}
		sum -= f.Size()
		if sum+n <= c.opts.MaxSize {
			break
		}
	}
	return nil
}

type byModTime []os.FileInfo

func (xs byModTime) Len() int           { return len(xs) }
func (xs byModTime) Swap(i, j int)      { xs[i], xs[j] = xs[j], xs[i] }
func (xs byModTime) Less(i, j int) bool { return xs[i].ModTime().Before(xs[j].ModTime()) }

func hash(key []byte) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], spooky.Hash64(key))
	return hex.EncodeToString(buf[:])
}
