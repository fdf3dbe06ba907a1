package httpcore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/yndnr/wirehttp/internal/core/domain"
	"github.com/yndnr/wirehttp/internal/telemetry/logger"
)

func newRenderResponse(t *testing.T, views string) (*Response, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	res := newTestResponse(&buf)
	res.logger = logger.Nop()
	res.SetViews(views)
	return res, &buf
}

func writeView(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestRender_Success(t *testing.T) {
	dir := t.TempDir()
	page := "<h1>héllo</h1>"
	writeView(t, dir, "pages/index.html", []byte(page))

	res, buf := newRenderResponse(t, dir)
	if err := res.Render("pages/index.html"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	status, headers, body := splitWire(t, buf.String())
	if status != "HTTP/1.1 200 OK" {
		t.Errorf("status line = %q", status)
	}
	if body != page {
		t.Errorf("body = %q, want %q", body, page)
	}
	joined := strings.Join(headers, "|")
	if !strings.Contains(joined, "Content-Type: text/html") {
		t.Errorf("headers %q missing text/html", headers)
	}
	if !strings.Contains(joined, "Content-Length: "+strconv.Itoa(len(page))) {
		t.Errorf("headers %q missing byte length %d", headers, len(page))
	}
}

func TestRender_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "binary.html", []byte{0xff, 0xfe, 0x00})
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	writeView(t, filepath.Dir(dir), "outside.html", []byte("secret"))

	tests := []struct {
		name string
		file string
	}{
		{"missing file", "missing.html"},
		{"directory", "sub"},
		{"invalid utf-8", "binary.html"},
		{"escape attempt", "../outside.html"},
		{"absolute path", "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, buf := newRenderResponse(t, dir)
			err := res.Render(tt.file)
			if !errors.Is(err, domain.ErrRenderNotFound) {
				t.Errorf("Render() error = %v, want %v", err, domain.ErrRenderNotFound)
			}

			status, _, body := splitWire(t, buf.String())
			if status != "HTTP/1.1 404 Not Found" {
				t.Errorf("status line = %q", status)
			}
			if body != tt.file+" NOT FOUND" {
				t.Errorf("body = %q, want %q", body, tt.file+" NOT FOUND")
			}
		})
	}
}

func TestRender_MissingViewsDir(t *testing.T) {
	res, buf := newRenderResponse(t, filepath.Join(t.TempDir(), "absent"))
	if err := res.Render("index.html"); !errors.Is(err, domain.ErrRenderNotFound) {
		t.Errorf("Render() error = %v, want %v", err, domain.ErrRenderNotFound)
	}
	if !strings.HasPrefix(buf.String(), "HTTP/1.1 404 Not Found") {
		t.Errorf("response = %q", buf.String())
	}
}

func TestRender_OpenFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	writeView(t, dir, "locked.html", []byte("x"))
	if err := os.Chmod(filepath.Join(dir, "locked.html"), 0o000); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}

	res, buf := newRenderResponse(t, dir)
	err := res.Render("locked.html")
	if !errors.Is(err, domain.ErrRenderIO) {
		t.Errorf("Render() error = %v, want %v", err, domain.ErrRenderIO)
	}
	status, _, body := splitWire(t, buf.String())
	if status != "HTTP/1.1 500 Server Error" {
		t.Errorf("status line = %q", status)
	}
	if body != "Internal server exception" {
		t.Errorf("body = %q", body)
	}
}
