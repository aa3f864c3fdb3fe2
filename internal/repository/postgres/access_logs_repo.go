package postgres

import (
	"context"

	"github.com/baharkarakas/hello-server/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type accessLogsRepo struct{ pool *pgxpool.Pool }

func (r *accessLogsRepo) Create(ctx context.Context, l models.AccessLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_logs(id, request_id, method, path, status, bytes, duration_ms, remote_addr, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		l.ID, l.RequestID, l.Method, l.Path, l.Status, l.Bytes,
		float64(l.Duration.Microseconds())/1000, l.RemoteAddr, l.CreatedAt,
	)
	return err
}

func (r *accessLogsRepo) Recent(ctx context.Context, limit int) ([]models.AccessLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, request_id, method, path, status, bytes, duration_ms, remote_addr, created_at
		 FROM access_logs ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AccessLog, error) {
		var l models.AccessLog
		var ms float64
		err := row.Scan(&l.ID, &l.RequestID, &l.Method, &l.Path, &l.Status, &l.Bytes, &ms, &l.RemoteAddr, &l.CreatedAt)
		l.Duration = msToDuration(ms)
		return l, err
	})
}
