package cache

import "errors"

var (
	// ErrEmptyKey is returned when a backend is asked for the empty key.
	ErrEmptyKey = errors.New("cache: empty key")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache: closed")
)
