package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-web/internal/service"
)

func newTestManager(rec *mockRecorder, memory *storage.MemoryStorage) *SessionManager {
	logger := discardLogger()
	factory := repository.NewMemoryFactory(memory, "test:")
	clock := &manualClock{}

	return NewSessionManager(
		logger,
		func(sessionID string) service.ScoreService {
			return service.NewScoreService(logger, factory(sessionID))
		},
		msgcat.MustNew(),
		rec,
		5*time.Second,
		time.Hour,
		service.WithAfterFunc(clock.AfterFunc),
	)
}

func TestSessionManager_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the same session for the same id", func(t *testing.T) {
		// Given: a manager
		rec := &mockRecorder{}
		rec.On("SetActiveSessions", 1).Once()
		rec.On("SetActiveSessions", 2).Once()
		manager := newTestManager(rec, storage.NewMemoryStorage())

		// When: asking for two ids, one of them twice
		first, err := manager.GetOrCreate(ctx, "a")
		require.NoError(t, err)
		again, err := manager.GetOrCreate(ctx, "a")
		require.NoError(t, err)
		other, err := manager.GetOrCreate(ctx, "b")
		require.NoError(t, err)

		// Then: sessions are reused per id
		assert.Same(t, first, again)
		assert.NotSame(t, first, other)
		assert.Equal(t, 2, manager.Len())
		rec.AssertExpectations(t)
	})

	t.Run("Empty id is rejected", func(t *testing.T) {
		manager := newTestManager(newLenientRecorder(), storage.NewMemoryStorage())

		_, err := manager.GetOrCreate(ctx, "")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Scores are isolated per session", func(t *testing.T) {
		// Given: two sessions sharing one store
		memory := storage.NewMemoryStorage()
		manager := newTestManager(newLenientRecorder(), memory)
		alice, err := manager.GetOrCreate(ctx, "alice")
		require.NoError(t, err)
		bob, err := manager.GetOrCreate(ctx, "bob")
		require.NoError(t, err)

		// When: alice's X wins
		playCells(ctx, alice, 0, 3, 1, 4, 2)

		// Then: bob's tally is untouched and the key is namespaced
		assert.Equal(t, entity.ScoreTally{}, bob.View().Scores)
		value, ok := memory.Get("test:alice:xWins")
		require.True(t, ok)
		assert.Equal(t, "1", value)
	})
}

// blockingScores stalls Load until release is closed.
type blockingScores struct {
	service.ScoreService

	loading chan struct{}
	release chan struct{}
}

func (that *blockingScores) Load(ctx context.Context) entity.ScoreTally {
	close(that.loading)
	<-that.release

	return that.ScoreService.Load(ctx)
}

func TestSessionManager_GetOrCreate_Concurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("A slow score load does not block other sessions", func(t *testing.T) {
		// Given: a store where loading "slow" stalls
		logger := discardLogger()
		factory := repository.NewMemoryFactory(storage.NewMemoryStorage(), "test:")
		slow := &blockingScores{loading: make(chan struct{}), release: make(chan struct{})}
		manager := NewSessionManager(
			logger,
			func(sessionID string) service.ScoreService {
				scores := service.NewScoreService(logger, factory(sessionID))
				if sessionID != "slow" {
					return scores
				}

				slow.ScoreService = scores
				return slow
			},
			msgcat.MustNew(),
			newLenientRecorder(),
			5*time.Second,
			time.Hour,
		)

		created := make(chan *Session)
		go func() {
			session, _ := manager.GetOrCreate(ctx, "slow")
			created <- session
		}()
		<-slow.loading

		// When: another session is requested meanwhile
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := manager.GetOrCreate(ctx, "fast")
			assert.NoError(t, err)
		}()

		// Then: it is served without waiting for the slow load
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("GetOrCreate waited for another session's score load")
		}

		close(slow.release)
		require.NotNil(t, <-created)
		assert.Equal(t, 2, manager.Len())
	})

	t.Run("Looking up a session keeps it from eviction", func(t *testing.T) {
		// Given: a session last used two hours ago
		manager := newTestManager(newLenientRecorder(), storage.NewMemoryStorage())
		session, err := manager.GetOrCreate(ctx, "alice")
		require.NoError(t, err)
		session.mu.Lock()
		session.lastSeen = time.Now().Add(-2 * time.Hour)
		session.mu.Unlock()

		// When: it is looked up again before the eviction pass
		again, err := manager.GetOrCreate(ctx, "alice")
		require.NoError(t, err)
		evicted := manager.EvictIdle(time.Now())

		// Then: the lookup counts as use
		assert.Same(t, session, again)
		assert.Equal(t, 0, evicted)
		assert.Equal(t, 1, manager.Len())
	})
}

func TestSessionManager_Get(t *testing.T) {
	manager := newTestManager(newLenientRecorder(), storage.NewMemoryStorage())

	_, err := manager.Get("missing")
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)

	created, err := manager.GetOrCreate(context.Background(), "known")
	require.NoError(t, err)

	found, err := manager.Get("known")
	require.NoError(t, err)
	assert.Same(t, created, found)
}

func TestSessionManager_EvictIdle(t *testing.T) {
	ctx := context.Background()

	t.Run("Drops idle sessions and reloads scores later", func(t *testing.T) {
		// Given: a session with one recorded win
		memory := storage.NewMemoryStorage()
		rec := newLenientRecorder()
		manager := newTestManager(rec, memory)
		session, err := manager.GetOrCreate(ctx, "alice")
		require.NoError(t, err)
		playCells(ctx, session, 0, 3, 1, 4, 2)

		// When: the ttl has passed
		evicted := manager.EvictIdle(time.Now().Add(2 * time.Hour))

		// Then: the session is gone
		assert.Equal(t, 1, evicted)
		assert.Equal(t, 0, manager.Len())
		rec.AssertCalled(t, "SetActiveSessions", 0)

		// When: the player comes back
		back, err := manager.GetOrCreate(ctx, "alice")
		require.NoError(t, err)

		// Then: a new game starts with the persisted score
		assert.NotSame(t, session, back)
		assert.Equal(t, entity.ScoreTally{XWins: 1}, back.View().Scores)
		assert.Equal(t, entity.Board{}, back.View().Board)
	})

	t.Run("Keeps recent and subscribed sessions", func(t *testing.T) {
		// Given: one fresh session and one old but subscribed session
		manager := newTestManager(newLenientRecorder(), storage.NewMemoryStorage())
		_, err := manager.GetOrCreate(ctx, "fresh")
		require.NoError(t, err)
		watched, err := manager.GetOrCreate(ctx, "watched")
		require.NoError(t, err)
		watched.Subscribe(func(View) {})

		// When: evicting with a cutoff before now, then one far in the future
		assert.Equal(t, 0, manager.EvictIdle(time.Now()))
		assert.Equal(t, 1, manager.EvictIdle(time.Now().Add(2*time.Hour)))

		// Then: only the subscribed session is left
		_, err = manager.Get("watched")
		require.NoError(t, err)
	})
}

func TestSessionManager_Run(t *testing.T) {
	// Given: a manager running in the background
	manager := newTestManager(newLenientRecorder(), storage.NewMemoryStorage())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		manager.Run(ctx)
		close(done)
	}()

	// When: the context is canceled
	cancel()

	// Then: Run returns
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}

	manager.Close()
	assert.Equal(t, 0, manager.Len())
}
