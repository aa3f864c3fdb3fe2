package models

import (
	"errors"
	"strings"
	"time"
)

// AccessLog is one served request on the connection server.
type AccessLog struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"request_id"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	Status     int           `json:"status"`
	Bytes      int           `json:"bytes"`
	Duration   time.Duration `json:"duration_ns"`
	RemoteAddr string        `json:"remote_addr"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (l *AccessLog) Validate() error {
	if strings.TrimSpace(l.Method) == "" {
		return errors.New("method required")
	}
	if l.Status < 100 || l.Status > 599 {
		return errors.New("status out of range")
	}
	return nil
}
