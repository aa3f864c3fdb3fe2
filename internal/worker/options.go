package worker

import "log/slog"

// PanicHandler is called on the worker goroutine after a task panicked.
type PanicHandler func(workerID int, taskID uint64, recovered any, stack []byte)

type Option func(*Pool)

// WithName sets the pool label used in logs and metrics. Default "default".
func WithName(name string) Option {
	return func(p *Pool) {
		if name != "" {
			p.name = name
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) { p.onPanic = h }
}
