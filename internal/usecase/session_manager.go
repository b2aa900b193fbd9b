package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/service"
)

// ScoresFactory builds the score service persisted under one session namespace.
type ScoresFactory func(sessionID string) service.ScoreService

type SessionManager struct {
	logger      *slog.Logger
	newScores   ScoresFactory
	texts       texts
	recorder    recorder
	celebration time.Duration
	ttl         time.Duration
	options     []service.CelebrationOption

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(
	logger *slog.Logger,
	newScores ScoresFactory,
	texts texts,
	recorder recorder,
	celebration, ttl time.Duration,
	opts ...service.CelebrationOption,
) *SessionManager {
	return &SessionManager{
		logger:      logger.With("component", "sessions"),
		newScores:   newScores,
		texts:       texts,
		recorder:    recorder,
		celebration: celebration,
		ttl:         ttl,
		options:     opts,
		sessions:    make(map[string]*Session),
	}
}

// GetOrCreate returns the session with id, creating it and loading its scores on first use.
// Scores are loaded without holding the manager lock.
func (that *SessionManager) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", apperror.ErrSessionNotFound)
	}

	if session, ok := that.lookup(id); ok {
		return session, nil
	}

	created := NewSession(ctx, that.logger, id, that.newScores(id), that.texts, that.recorder, that.celebration, that.options...)

	that.mu.Lock()
	defer that.mu.Unlock()

	if session, ok := that.sessions[id]; ok {
		created.Close()
		session.touch()

		return session, nil
	}

	that.sessions[id] = created
	that.recorder.SetActiveSessions(len(that.sessions))

	that.logger.Debug("session created", "session", id)

	return created, nil
}

// lookup returns a known session and marks it as used so eviction keeps it.
func (that *SessionManager) lookup(id string) (*Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if ok {
		session.touch()
	}

	return session, ok
}

func (that *SessionManager) Get(id string) (*Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return session, nil
}

func (that *SessionManager) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.sessions)
}

// EvictIdle drops sessions without subscribers that were last used before now minus the ttl.
// Persisted scores survive eviction and are loaded again on the next visit.
func (that *SessionManager) EvictIdle(now time.Time) int {
	cutoff := now.Add(-that.ttl)

	that.mu.Lock()
	defer that.mu.Unlock()

	evicted := 0
	for id, session := range that.sessions {
		if !session.Idle(cutoff) {
			continue
		}

		session.Close()
		delete(that.sessions, id)
		evicted++
	}

	if evicted > 0 {
		that.recorder.SetActiveSessions(len(that.sessions))
		that.logger.Info("evicted idle sessions", "count", evicted, "remaining", len(that.sessions))
	}

	return evicted
}

// Run evicts idle sessions periodically until ctx is done.
func (that *SessionManager) Run(ctx context.Context) {
	interval := min(that.ttl, time.Minute)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			that.EvictIdle(now)
		}
	}
}

func (that *SessionManager) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, session := range that.sessions {
		session.Close()
		delete(that.sessions, id)
	}

	that.recorder.SetActiveSessions(0)
}
