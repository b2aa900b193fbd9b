package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

// KeyValueRepository is a string-typed key-value store scoped to one session.
type KeyValueRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type dbKeyValue struct {
	client *redis.Client
	prefix string
}

func NewKeyValueRepository(client *redis.Client, prefix string) KeyValueRepository {
	return &dbKeyValue{
		client: client,
		prefix: prefix,
	}
}

func (that *dbKeyValue) Get(ctx context.Context, key string) (string, error) {
	response, err := that.client.Get(ctx, that.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperror.ErrKeyNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}

	return response, nil
}

func (that *dbKeyValue) Set(ctx context.Context, key, value string) error {
	if err := that.client.Set(ctx, that.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (that *dbKeyValue) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, that.prefix+key)
	}

	if err := that.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}

	return nil
}
