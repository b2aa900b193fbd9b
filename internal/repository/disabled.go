package repository

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

// disabledKeyValue stands in for a host without persistent storage.
type disabledKeyValue struct{}

func NewDisabledKeyValueRepository() KeyValueRepository {
	return disabledKeyValue{}
}

func (disabledKeyValue) Get(context.Context, string) (string, error) {
	return "", apperror.ErrStorageDisabled
}

func (disabledKeyValue) Set(context.Context, string, string) error {
	return apperror.ErrStorageDisabled
}

func (disabledKeyValue) Delete(context.Context, ...string) error {
	return apperror.ErrStorageDisabled
}
