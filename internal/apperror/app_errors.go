package apperror

import "errors"

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrStorageDisabled  = errors.New("persistent storage is disabled")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrUnknownAction    = errors.New("unknown action")
	ErrUnknownDriver    = errors.New("unknown storage driver")
	ErrTemplateNotFound = errors.New("template not found")
)
