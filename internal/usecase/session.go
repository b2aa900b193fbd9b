package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-web/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-web/internal/service"
)

type recorder interface {
	MoveMade()
	GameFinished(result string)
	ScoresReset()
	SetActiveSessions(count int)
}

type texts interface {
	Text(key string, data any, fallback string) string
}

type markText struct {
	Mark entity.Cell
}

// Session is one player's screen: a game, its score tally and the win celebration.
// All actions are serialized by the session mutex.
type Session struct {
	ID string

	logger   *slog.Logger
	scores   service.ScoreService
	texts    texts
	recorder recorder

	// publishMu is taken before mu is released so views reach subscribers in the order they were taken.
	publishMu sync.Mutex

	mu          sync.Mutex
	game        *entity.Game
	celebration *service.Celebration
	subscribers map[int]func(View)
	nextSubID   int
	lastSeen    time.Time
}

func NewSession(
	ctx context.Context,
	logger *slog.Logger,
	id string,
	scores service.ScoreService,
	texts texts,
	recorder recorder,
	celebrationDuration time.Duration,
	opts ...service.CelebrationOption,
) *Session {
	session := &Session{
		ID:          id,
		logger:      logger.With("session", id),
		scores:      scores,
		texts:       texts,
		recorder:    recorder,
		game:        entity.NewGame(),
		subscribers: make(map[int]func(View)),
		lastSeen:    time.Now(),
	}

	session.celebration = service.NewCelebration(celebrationDuration, session.celebrationEnded, opts...)
	scores.Load(ctx)

	return session
}

// SelectCell places the current mark on cell. Invalid selections leave the game untouched.
func (that *Session) SelectCell(ctx context.Context, cell int) View {
	log := that.logger.With("method", "SelectCell", "cell", cell)

	that.mu.Lock()
	that.lastSeen = time.Now()

	event := that.game.PlaceMark(cell)
	if event.Type == entity.EventIgnored {
		view := that.view()
		that.mu.Unlock()

		log.Debug("selection ignored")
		return view
	}

	that.recorder.MoveMade()

	var notifications []entity.Notification
	switch event.Type {
	case entity.EventWon:
		that.scores.RecordWin(ctx, event.Mark)
		that.celebration.Start()
		that.recorder.GameFinished(metrics.ResultWin)

		notifications = append(notifications, entity.Notification{
			Level:   entity.LevelSuccess,
			Message: that.texts.Text(msgcat.KeyWin, markText{Mark: event.Mark}, fmt.Sprintf("Player %s wins!", event.Mark)),
		})
		log.Info("game won", "winner", event.Mark)
	case entity.EventDrawn:
		that.recorder.GameFinished(metrics.ResultDraw)

		notifications = append(notifications, entity.Notification{
			Level:   entity.LevelInfo,
			Message: that.texts.Text(msgcat.KeyDraw, nil, "It's a draw!"),
		})
		log.Info("game drawn")
	default:
		log.Debug("mark placed", "mark", event.Mark)
	}

	view := that.view()
	view.Notifications = notifications
	that.unlockAndPublish(view)

	return view
}

// ResetGame starts a new game and ends any running celebration. Scores are kept.
func (that *Session) ResetGame(_ context.Context) View {
	that.mu.Lock()
	that.lastSeen = time.Now()

	that.game.Reset()
	that.celebration.Stop()
	that.logger.Debug("game reset")

	view := that.view()
	that.unlockAndPublish(view)

	return view
}

// ResetScores zeroes the tally and removes the persisted counters. The game is kept.
func (that *Session) ResetScores(ctx context.Context) View {
	that.mu.Lock()
	that.lastSeen = time.Now()

	that.scores.Clear(ctx)
	that.recorder.ScoresReset()

	that.logger.Info("scores reset")

	view := that.view()
	view.Notifications = []entity.Notification{{
		Level:   entity.LevelSuccess,
		Message: that.texts.Text(msgcat.KeyScoresReset, nil, "Scores reset!"),
	}}
	that.unlockAndPublish(view)

	return view
}

func (that *Session) View() View {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastSeen = time.Now()

	return that.view()
}

// Subscribe registers fn to receive every view produced by this session,
// including the one pushed when a celebration ends. Call the returned func to stop.
func (that *Session) Subscribe(fn func(View)) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.nextSubID
	that.nextSubID++
	that.subscribers[id] = fn

	return func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		delete(that.subscribers, id)
	}
}

// Idle reports whether nobody is listening and no action happened since before.
func (that *Session) Idle(before time.Time) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.subscribers) == 0 && that.lastSeen.Before(before)
}

func (that *Session) Close() {
	that.celebration.Stop()

	that.mu.Lock()
	defer that.mu.Unlock()

	clear(that.subscribers)
}

func (that *Session) celebrationEnded() {
	that.logger.Debug("celebration ended")

	that.mu.Lock()
	that.unlockAndPublish(that.view())
}

// touch marks the session as used now.
func (that *Session) touch() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastSeen = time.Now()
}

// unlockAndPublish releases mu and delivers view to the current subscribers.
// The caller must hold mu. Subscribers must not call back into the session.
func (that *Session) unlockAndPublish(view View) {
	subscribers := that.subscriberList()

	that.publishMu.Lock()
	defer that.publishMu.Unlock()

	that.mu.Unlock()
	publish(subscribers, view)
}

func (that *Session) view() View {
	return View{
		Board:       that.game.Board,
		Status:      that.game.Status,
		StatusLine:  that.game.StatusLine(),
		NextPlayer:  that.game.Turn,
		Winner:      that.game.Winner,
		Scores:      that.scores.Tally(),
		Celebrating: that.celebration.Active(),
	}
}

func (that *Session) subscriberList() []func(View) {
	subscribers := make([]func(View), 0, len(that.subscribers))
	for _, fn := range that.subscribers {
		subscribers = append(subscribers, fn)
	}

	return subscribers
}

func publish(subscribers []func(View), view View) {
	for _, fn := range subscribers {
		fn(view)
	}
}
