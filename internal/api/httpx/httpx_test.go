package httpx

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusBadRequest, "bad_request", "malformed request", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	var body APIError
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "bad_request" || body.Error != "malformed request" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestConnResponseWriterRoundTrip(t *testing.T) {
	w := NewConnResponseWriter()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.WriteHeader(http.StatusOK) // ignored
	_, _ = w.Write([]byte("<h1>missing</h1>"))

	var out bytes.Buffer
	if err := w.WriteTo(&out, nil); err != nil {
		t.Fatal(err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(&out), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if string(body) != "<h1>missing</h1>" {
		t.Errorf("unexpected body %q", body)
	}
	if resp.ContentLength != int64(len(body)) {
		t.Errorf("content length %d, body %d", resp.ContentLength, len(body))
	}
	if !resp.Close {
		t.Error("expected Connection: close")
	}
}

func TestConnResponseWriterImplicitOK(t *testing.T) {
	w := NewConnResponseWriter()
	if w.Status() != http.StatusOK {
		t.Errorf("expected default 200, got %d", w.Status())
	}
	_, _ = w.Write([]byte("hi"))
	if w.Status() != http.StatusOK || string(w.Body()) != "hi" {
		t.Errorf("unexpected status %d body %q", w.Status(), w.Body())
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Password string `json:"password"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"password":"x"}`))
	if err := DecodeJSON(req, &v); err != nil || v.Password != "x" {
		t.Fatalf("decode: %v %+v", err, v)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(""))
	if err := DecodeJSON(req, &v); err == nil {
		t.Error("expected error for empty body")
	}
	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{"))
	if err := DecodeJSON(req, &v); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
