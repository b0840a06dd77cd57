package storage

import (
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zond/charsheet"

	cache "github.com/go-pkgz/expirable-cache/v3"
	goccy "github.com/goccy/go-json"
)

// Store is the synchronous string keyed medium every character value and
// metadata entry lives in.
//
// Get returns an error wrapping os.ErrNotExist for missing keys. Del of a
// missing key is not an error.
type Store interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	Del(key string) error
	// Keys returns the keys starting with prefix, in lexical order.
	Keys(prefix string) ([]string, error)
}

// Memory is a Store that forgets everything when the process exits.
type Memory struct {
	m *charsheet.SyncMap[string, string]
}

func NewMemory() *Memory {
	return &Memory{
		m: charsheet.NewSyncMap[string, string](),
	}
}

func (m *Memory) Get(key string) (string, error) {
	if v, found := m.m.GetHas(key); found {
		return v, nil
	}
	return "", charsheet.WithStack(os.ErrNotExist)
}

func (m *Memory) Set(key string, value string) error {
	m.m.Set(key, value)
	return nil
}

func (m *Memory) Del(key string) error {
	m.m.Del(key)
	return nil
}

func (m *Memory) Keys(prefix string) ([]string, error) {
	result := []string{}
	for k := range m.m.Each() {
		if strings.HasPrefix(k, prefix) {
			result = append(result, k)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Cached keeps recently read values of a slower Store in memory.
// Only present values are cached, and every write through the Cached
// invalidates the key, so the backing store must not be written behind its back.
type Cached struct {
	Store
	cache cache.Cache[string, string]
}

func NewCached(backend Store, ttl time.Duration, maxKeys int) *Cached {
	return &Cached{
		Store: backend,
		cache: cache.NewCache[string, string]().WithTTL(ttl).WithMaxKeys(maxKeys).WithLRU(),
	}
}

func (c *Cached) Get(key string) (string, error) {
	if v, found := c.cache.Get(key); found {
		return v, nil
	}
	v, err := c.Store.Get(key)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, v, 0)
	return v, nil
}

func (c *Cached) Set(key string, value string) error {
	c.cache.Invalidate(key)
	return c.Store.Set(key, value)
}

func (c *Cached) Del(key string) error {
	c.cache.Invalidate(key)
	return c.Store.Del(key)
}

// Title holds the current character name outside of the namespaced Store,
// since every namespaced key is derived from it.
type Title interface {
	Title() string
	SetTitle(name string) error
}

type MemoryTitle struct {
	mutex sync.RWMutex
	name  string
}

func NewMemoryTitle(name string) *MemoryTitle {
	return &MemoryTitle{name: name}
}

func (m *MemoryTitle) Title() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.name
}

func (m *MemoryTitle) SetTitle(name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.name = name
	return nil
}

// FileTitle keeps the character name in a small text file.
type FileTitle struct {
	MemoryTitle
	path string
}

// OpenFileTitle reads the title stored at path, or uses def if no file exists yet.
func OpenFileTitle(path string, def string) (*FileTitle, error) {
	result := &FileTitle{path: path}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		result.name = def
	} else if err != nil {
		return nil, charsheet.WithStack(err)
	} else {
		result.name = strings.TrimSpace(string(b))
	}
	return result, nil
}

func (f *FileTitle) SetTitle(name string) error {
	if err := os.WriteFile(f.path, []byte(name+"\n"), 0600); err != nil {
		return charsheet.WithStack(err)
	}
	return f.MemoryTitle.SetTitle(name)
}

// Export returns every entry starting with prefix as a JSON object.
func Export(s Store, prefix string) ([]byte, error) {
	keys, err := s.Keys(prefix)
	if err != nil {
		return nil, charsheet.WithStack(err)
	}
	entries := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := s.Get(key)
		if err != nil {
			return nil, charsheet.WithStack(err)
		}
		entries[key] = v
	}
	return goccy.MarshalIndent(entries, "", "  ")
}

// Import writes every entry of a JSON object produced by Export, and returns the written keys.
func Import(s Store, b []byte) ([]string, error) {
	entries := map[string]string{}
	if err := goccy.Unmarshal(b, &entries); err != nil {
		return nil, charsheet.WithStack(err)
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := s.Set(key, entries[key]); err != nil {
			return nil, charsheet.WithStack(err)
		}
	}
	return keys, nil
}
