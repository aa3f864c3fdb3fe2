package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/baharkarakas/hello-server/internal/metrics"
	"github.com/baharkarakas/hello-server/internal/worker"
)

type Executor interface {
	Execute(task worker.Task) error
}

type ConnHandler interface {
	ServeConn(conn net.Conn)
}

// Server accepts connections and hands each one to the pool as a task.
type Server struct {
	ln      net.Listener
	exec    Executor
	handler ConnHandler
	limit   int
	log     *slog.Logger

	closeOnce sync.Once
	accepted  int
}

// New builds a Server. limit > 0 stops accepting after that many connections.
func New(ln net.Listener, exec Executor, handler ConnHandler, limit int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{ln: ln, exec: exec, handler: handler, limit: limit, log: log}
}

func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve runs the accept loop until the connection limit is reached, ctx is
// cancelled or the listener fails. The listener is closed on return. Serve
// does not wait for submitted connections; shut the pool down for that.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.closeListener)
	defer stop()
	defer s.closeListener()

	s.log.Info("server starting", "addr", s.ln.Addr().String(), "limit", s.limit)

	var backoff time.Duration
	for s.limit <= 0 || s.accepted < s.limit {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if isTemporary(err) {
				backoff = nextBackoff(backoff)
				s.log.Warn("accept failed, retrying", "err", err, "backoff", backoff.String())
				select {
				case <-time.After(backoff):
					continue
				case <-ctx.Done():
					return nil
				}
			}
			return err
		}
		backoff = 0
		s.accepted++
		metrics.ConnectionsAccepted.Inc()
		s.dispatch(conn)
	}

	s.log.Info("connection limit reached", "accepted", s.accepted)
	return nil
}

func (s *Server) dispatch(conn net.Conn) {
	err := s.exec.Execute(func() { s.handler.ServeConn(conn) })
	if err != nil {
		s.log.Error("connection rejected", "remote", conn.RemoteAddr().String(), "err", err)
		_ = conn.Close()
	}
}

// Accepted is the number of connections accepted so far. Only meaningful after Serve returns.
func (s *Server) Accepted() int { return s.accepted }

func (s *Server) closeListener() {
	s.closeOnce.Do(func() { _ = s.ln.Close() })
}

func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}
