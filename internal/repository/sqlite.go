package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

type sqlKeyValue struct {
	conn   *sql.DB
	prefix string
}

func NewSQLiteKeyValueRepository(conn *sql.DB, prefix string) KeyValueRepository {
	return &sqlKeyValue{
		conn:   conn,
		prefix: prefix,
	}
}

func (that *sqlKeyValue) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM key_values WHERE name = ?`

	var value string

	err := that.conn.QueryRowContext(ctx, query, that.prefix+key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.ErrKeyNotFound
	}

	if err != nil {
		return "", fmt.Errorf("can't get %s: %w", key, err)
	}

	return value, nil
}

func (that *sqlKeyValue) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO key_values (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`

	if _, err := that.conn.ExecContext(ctx, query, that.prefix+key, value); err != nil {
		return fmt.Errorf("can't set %s: %w", key, err)
	}

	return nil
}

func (that *sqlKeyValue) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	args := make([]any, 0, len(keys))
	for _, key := range keys {
		args = append(args, that.prefix+key)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := `DELETE FROM key_values WHERE name IN (` + placeholders + `)`

	if _, err := that.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("can't delete keys: %w", err)
	}

	return nil
}
