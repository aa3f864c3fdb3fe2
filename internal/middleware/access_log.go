package middleware

import (
	"net/http"
	"time"

	"github.com/baharkarakas/hello-server/internal/models"
)

// AccessLog hands a models.AccessLog for every finished request to record.
func AccessLog(record func(models.AccessLog)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := recorder(w)

			next.ServeHTTP(rec, r)

			record(models.AccessLog{
				RequestID:  RequestIDFrom(r.Context()),
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     rec.status,
				Bytes:      rec.bytes,
				Duration:   time.Since(start),
				RemoteAddr: r.RemoteAddr,
				CreatedAt:  start.UTC(),
			})
		})
	}
}
