package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

// ScoreService keeps the win tally of a session in sync with its key-value store.
// Storage failures never reach the caller: the tally degrades to what is in memory.
type ScoreService interface {
	Load(ctx context.Context) entity.ScoreTally
	RecordWin(ctx context.Context, mark entity.Cell) entity.ScoreTally
	Clear(ctx context.Context)
	Tally() entity.ScoreTally
}

type keyValueRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type scoreService struct {
	logger *slog.Logger
	repo   keyValueRepo
	tally  entity.ScoreTally
}

func NewScoreService(logger *slog.Logger, repo keyValueRepo) ScoreService {
	return &scoreService{
		logger: logger.With("component", "score"),
		repo:   repo,
	}
}

func (that *scoreService) Load(ctx context.Context) entity.ScoreTally {
	that.tally = entity.ScoreTally{
		XWins: that.readCounter(ctx, entity.XWinsKey),
		OWins: that.readCounter(ctx, entity.OWinsKey),
	}

	return that.tally
}

func (that *scoreService) RecordWin(ctx context.Context, mark entity.Cell) entity.ScoreTally {
	if !mark.IsMark() {
		return that.tally
	}

	wins := that.tally.Increment(mark)
	key := entity.ScoreKey(mark)

	if err := that.repo.Set(ctx, key, strconv.Itoa(wins)); err != nil {
		that.logFailure("RecordWin", key, err)
	}

	return that.tally
}

func (that *scoreService) Clear(ctx context.Context) {
	that.tally = entity.ScoreTally{}

	if err := that.repo.Delete(ctx, entity.XWinsKey, entity.OWinsKey); err != nil {
		that.logFailure("Clear", entity.XWinsKey+","+entity.OWinsKey, err)
	}
}

func (that *scoreService) Tally() entity.ScoreTally {
	return that.tally
}

// readCounter treats a missing, malformed or unreadable value as zero.
func (that *scoreService) readCounter(ctx context.Context, key string) int {
	raw, err := that.repo.Get(ctx, key)
	if errors.Is(err, apperror.ErrKeyNotFound) {
		return 0
	}

	if err != nil {
		that.logFailure("Load", key, err)
		return 0
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		that.logger.Warn("ignoring malformed counter", "key", key, "value", raw)
		return 0
	}

	return value
}

func (that *scoreService) logFailure(method, key string, err error) {
	log := that.logger.With("method", method, "key", key)

	if errors.Is(err, apperror.ErrStorageDisabled) {
		log.Debug("persistent storage disabled")
		return
	}

	log.Warn("score storage unavailable", "error", err)
}
