package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/hello-server/internal/models"
	repo "github.com/baharkarakas/hello-server/internal/repository"
	"github.com/baharkarakas/hello-server/internal/worker"
)

// Executor is the part of worker.Pool the services need.
type Executor interface {
	Execute(task worker.Task) error
}

// AccessLogService persists access log entries off the request path by
// pushing each write onto the worker pool.
type AccessLogService struct {
	logs  repo.AccessLogs
	exec  Executor
	log   *slog.Logger
	write time.Duration
}

func NewAccessLogService(logs repo.AccessLogs, exec Executor, log *slog.Logger) *AccessLogService {
	if log == nil {
		log = slog.Default()
	}
	return &AccessLogService{logs: logs, exec: exec, log: log, write: 5 * time.Second}
}

// Record fills in ID and CreatedAt and queues the write. It never blocks on
// the repository; entries that cannot be queued are dropped with a warning.
func (s *AccessLogService) Record(l models.AccessLog) {
	if err := l.Validate(); err != nil {
		s.log.Warn("access log rejected", "err", err)
		return
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	err := s.exec.Execute(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.write)
		defer cancel()
		if err := s.logs.Create(ctx, l); err != nil {
			s.log.Warn("access log write failed", "id", l.ID, "err", err)
		}
	})
	if err != nil {
		s.log.Warn("access log dropped", "id", l.ID, "path", l.Path, "err", err)
	}
}

func (s *AccessLogService) Recent(ctx context.Context, limit int) ([]models.AccessLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.logs.Recent(ctx, limit)
}
