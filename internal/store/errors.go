package store

import "errors"

var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	ErrReadOnly = errors.New("read-only transaction")
)
