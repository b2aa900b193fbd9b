package repository

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
)

type memoryKeyValue struct {
	storage *storage.MemoryStorage
	prefix  string
}

func NewMemoryKeyValueRepository(storage *storage.MemoryStorage, prefix string) KeyValueRepository {
	return &memoryKeyValue{
		storage: storage,
		prefix:  prefix,
	}
}

func (that *memoryKeyValue) Get(_ context.Context, key string) (string, error) {
	value, ok := that.storage.Get(that.prefix + key)
	if !ok {
		return "", apperror.ErrKeyNotFound
	}

	return value, nil
}

func (that *memoryKeyValue) Set(_ context.Context, key, value string) error {
	that.storage.Set(that.prefix+key, value)
	return nil
}

func (that *memoryKeyValue) Delete(_ context.Context, keys ...string) error {
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, that.prefix+key)
	}

	that.storage.Delete(prefixed...)
	return nil
}
