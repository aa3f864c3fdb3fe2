package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/baharkarakas/hello-server/internal/api/httpx"
)

//go:embed static/*.html
var staticFS embed.FS

const (
	helloPage    = "hello.html"
	notFoundPage = "404.html"
)

// Site serves the hello pages. A task running Sleep holds its worker for the
// whole delay.
type Site struct {
	pages fs.FS
	delay time.Duration
}

// NewSite reads pages from docRoot, or from the built-in copies when docRoot is empty.
func NewSite(docRoot string, delay time.Duration) *Site {
	var pages fs.FS
	if docRoot != "" {
		pages = os.DirFS(docRoot)
	} else {
		pages, _ = fs.Sub(staticFS, "static")
	}
	return &Site{pages: pages, delay: delay}
}

func (s *Site) Hello(w http.ResponseWriter, r *http.Request) {
	s.page(w, http.StatusOK, helloPage)
}

func (s *Site) Sleep(w http.ResponseWriter, r *http.Request) {
	time.Sleep(s.delay)
	s.page(w, http.StatusOK, helloPage)
}

func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	s.page(w, http.StatusNotFound, notFoundPage)
}

func (s *Site) page(w http.ResponseWriter, status int, name string) {
	b, err := fs.ReadFile(s.pages, name)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "page_unavailable", "page unavailable", map[string]string{"page": name})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
