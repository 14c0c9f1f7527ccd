package apperr

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrMalformed = errors.New("malformed content")
	ErrDuplicate = errors.New("duplicate slug")
)
