package worker

import "errors"

var (
	// ErrInvalidSize is returned by New when the requested worker count is below one.
	ErrInvalidSize = errors.New("worker: pool size must be at least 1")
	// ErrChannelClosed is returned when submitting after shutdown has begun.
	ErrChannelClosed = errors.New("worker: task channel closed")
	ErrNilTask       = errors.New("worker: nil task")
)
