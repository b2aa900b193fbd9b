package application

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/config"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		LogLevel: "info",
		Storage:  config.Storage{Driver: driver, KeyPrefix: "tictactoe:"},
		Redis:    config.Redis{Host: "localhost", Port: "6379"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRepositoryFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("Redis driver writes through to redis", func(t *testing.T) {
		// Given: a redis server
		mr := miniredis.RunT(t)
		conf := testConfig(config.DriverRedis)
		host, port, _ := strings.Cut(mr.Addr(), ":")
		conf.Redis.Host, conf.Redis.Port = host, port

		// When: building the factory and writing a key
		factory, closeStore, err := NewRepositoryFactory(ctx, discardLogger(), conf)
		require.NoError(t, err)
		defer closeStore()
		require.NoError(t, factory("abc").Set(ctx, "xWins", "2"))

		// Then: the key is namespaced by prefix and session
		value, err := mr.Get("tictactoe:abc:xWins")
		require.NoError(t, err)
		assert.Equal(t, "2", value)
	})

	t.Run("Redis driver fails when redis is down", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		conf := testConfig(config.DriverRedis)
		host, port, _ := strings.Cut(mr.Addr(), ":")
		conf.Redis.Host, conf.Redis.Port = host, port
		mr.Close()

		_, _, err = NewRepositoryFactory(ctx, discardLogger(), conf)
		require.Error(t, err)
	})

	t.Run("SQLite driver keeps scores across restarts", func(t *testing.T) {
		// Given: a database file in a temp dir
		conf := testConfig(config.DriverSQLite)
		conf.Storage.SQLitePath = filepath.Join(t.TempDir(), "scores.db")

		// When: a value is written and the store is reopened
		factory, closeStore, err := NewRepositoryFactory(ctx, discardLogger(), conf)
		require.NoError(t, err)
		require.NoError(t, factory("abc").Set(ctx, "xWins", "5"))
		closeStore()

		factory, closeStore, err = NewRepositoryFactory(ctx, discardLogger(), conf)
		require.NoError(t, err)
		defer closeStore()

		// Then: the value is still there
		value, err := factory("abc").Get(ctx, "xWins")
		require.NoError(t, err)
		assert.Equal(t, "5", value)
	})

	t.Run("SQLite driver fails on an unusable path", func(t *testing.T) {
		conf := testConfig(config.DriverSQLite)
		conf.Storage.SQLitePath = filepath.Join(t.TempDir(), "missing", "scores.db")

		_, _, err := NewRepositoryFactory(ctx, discardLogger(), conf)
		require.Error(t, err)
	})

	t.Run("Memory driver", func(t *testing.T) {
		factory, closeStore, err := NewRepositoryFactory(ctx, discardLogger(), testConfig(config.DriverMemory))
		require.NoError(t, err)
		defer closeStore()

		require.NoError(t, factory("abc").Set(ctx, "oWins", "1"))
		value, err := factory("abc").Get(ctx, "oWins")
		require.NoError(t, err)
		assert.Equal(t, "1", value)
	})

	t.Run("None driver disables storage", func(t *testing.T) {
		factory, closeStore, err := NewRepositoryFactory(ctx, discardLogger(), testConfig(config.DriverNone))
		require.NoError(t, err)
		defer closeStore()

		_, err = factory("abc").Get(ctx, "xWins")
		require.ErrorIs(t, err, apperror.ErrStorageDisabled)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		_, _, err := NewRepositoryFactory(ctx, discardLogger(), testConfig("etcd"))
		require.ErrorIs(t, err, apperror.ErrUnknownDriver)
	})
}

func TestRunConsole(t *testing.T) {
	// Given: a terminal game where O wins on memory storage
	var out strings.Builder
	in := strings.NewReader("1\n2\n3\n5\n4\n8\nq\n")

	// When: the console runs
	err := RunConsole(discardLogger(), testConfig(config.DriverMemory), in, &out)

	// Then: the win is reported
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Player O wins!")
}
