// Package memory holds in-process repositories used when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/baharkarakas/hello-server/internal/models"
)

// AccessLogs keeps the most recent entries in a fixed-size ring.
type AccessLogs struct {
	mu   sync.RWMutex
	buf  []models.AccessLog
	next int
	full bool
}

func NewAccessLogs(capacity int) *AccessLogs {
	if capacity <= 0 {
		capacity = 1024
	}
	return &AccessLogs{buf: make([]models.AccessLog, capacity)}
}

func (r *AccessLogs) Create(_ context.Context, l models.AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = l
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

func (r *AccessLogs) Recent(_ context.Context, limit int) ([]models.AccessLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.next
	if r.full {
		n = len(r.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.AccessLog, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out, nil
}
