package storage

import "sync"

// MemoryStorage is a process-local string map used when no redis is configured.
// Values are lost on restart.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]string),
	}
}

func (that *MemoryStorage) Get(key string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	value, ok := that.data[key]
	return value, ok
}

func (that *MemoryStorage) Set(key, value string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.data[key] = value
}

func (that *MemoryStorage) Delete(keys ...string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, key := range keys {
		delete(that.data, key)
	}
}

func (that *MemoryStorage) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.data)
}
