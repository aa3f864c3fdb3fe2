package httpx

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
)

// ConnResponseWriter buffers a handler's response so it can be written to a
// raw connection in one piece with an exact Content-Length.
type ConnResponseWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func NewConnResponseWriter() *ConnResponseWriter {
	return &ConnResponseWriter{header: make(http.Header)}
}

func (w *ConnResponseWriter) Header() http.Header { return w.header }

// WriteHeader keeps the first status, like net/http.
func (w *ConnResponseWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *ConnResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *ConnResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *ConnResponseWriter) Body() []byte { return w.body.Bytes() }

// WriteTo serializes the buffered response as HTTP/1.1 with Connection: close.
// req may be nil; a HEAD request gets headers only.
func (w *ConnResponseWriter) WriteTo(dst io.Writer, req *http.Request) error {
	h := w.header.Clone()
	if h.Get("Content-Type") == "" && w.body.Len() > 0 {
		h.Set("Content-Type", http.DetectContentType(w.body.Bytes()))
	}
	h.Set("Content-Length", strconv.Itoa(w.body.Len()))

	resp := &http.Response{
		StatusCode:    w.Status(),
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(w.body.Bytes())),
		ContentLength: int64(w.body.Len()),
		Close:         true,
		Request:       req,
	}
	return resp.Write(dst)
}
