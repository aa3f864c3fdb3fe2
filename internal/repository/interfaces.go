package repository

import (
	"context"

	"github.com/baharkarakas/hello-server/internal/models"
)

type AccessLogs interface {
	Create(ctx context.Context, l models.AccessLog) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]models.AccessLog, error)
}
