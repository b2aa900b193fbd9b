package repository

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
)

// Factory builds the key-value repository of one session namespace.
type Factory func(namespace string) KeyValueRepository

func NewRedisFactory(client *redis.Client, prefix string) Factory {
	return func(namespace string) KeyValueRepository {
		return NewKeyValueRepository(client, prefix+namespace+":")
	}
}

func NewSQLiteFactory(conn *sql.DB, prefix string) Factory {
	return func(namespace string) KeyValueRepository {
		return NewSQLiteKeyValueRepository(conn, prefix+namespace+":")
	}
}

func NewMemoryFactory(memory *storage.MemoryStorage, prefix string) Factory {
	return func(namespace string) KeyValueRepository {
		return NewMemoryKeyValueRepository(memory, prefix+namespace+":")
	}
}

func NewDisabledFactory() Factory {
	return func(string) KeyValueRepository {
		return NewDisabledKeyValueRepository()
	}
}
