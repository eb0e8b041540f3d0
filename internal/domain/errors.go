package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrStale        = errors.New("cache entry stale")
	ErrMaintenance  = errors.New("upstream is being updated")
	ErrMissingParam = errors.New("missing required parameter")
	ErrPreseason    = errors.New("season has not started")
)
