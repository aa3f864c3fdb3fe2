package api

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/baharkarakas/hello-server/internal/api/httpx"
)

// ConnHandler serves exactly one HTTP/1.x request per connection.
type ConnHandler struct {
	router  http.Handler
	timeout time.Duration
	log     *slog.Logger
}

func NewConnHandler(router http.Handler, timeout time.Duration, log *slog.Logger) *ConnHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ConnHandler{router: router, timeout: timeout, log: log}
}

// ServeConn reads one request, routes it and writes the response. The
// connection is always closed on return.
func (h *ConnHandler) ServeConn(conn net.Conn) {
	defer conn.Close()

	if h.timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(h.timeout))
	}
	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		h.log.Debug("read request", "remote", conn.RemoteAddr().String(), "err", err)
		rw := httpx.NewConnResponseWriter()
		httpx.WriteError(rw, http.StatusBadRequest, "bad_request", "malformed request", nil)
		h.write(conn, rw, nil)
		return
	}
	defer req.Body.Close()
	req.RemoteAddr = conn.RemoteAddr().String()
	// a handler may legitimately hold the connection longer than the read timeout
	_ = conn.SetReadDeadline(time.Time{})

	rw := httpx.NewConnResponseWriter()
	h.router.ServeHTTP(rw, req)
	h.write(conn, rw, req)
}

func (h *ConnHandler) write(conn net.Conn, rw *httpx.ConnResponseWriter, req *http.Request) {
	if h.timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(h.timeout))
	}
	if err := rw.WriteTo(conn, req); err != nil {
		h.log.Debug("write response", "remote", conn.RemoteAddr().String(), "err", err)
	}
}
