package httpcore

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/yndnr/wirehttp/internal/core/domain"
)

// SetViews changes the directory Render resolves files against.
func (r *Response) SetViews(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = dir
}

// Render sends the file named by file, relative to the views directory,
// as text/html.
//
// A file that is missing, is a directory, lies outside the views
// directory, or is not valid UTF-8 yields a 404 whose body names the file,
// and domain.ErrRenderNotFound is returned. Any other open failure is
// logged and answered with a 500.
func (r *Response) Render(file string) error {
	r.mu.Lock()
	views := r.views
	r.mu.Unlock()

	if !filepath.IsLocal(filepath.FromSlash(file)) {
		return r.renderNotFound(file)
	}

	f, err := os.Open(filepath.Join(views, filepath.FromSlash(file)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r.renderNotFound(file)
		}
		return r.renderFailed(file, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return r.renderFailed(file, err)
	}
	if info.IsDir() {
		return r.renderNotFound(file)
	}

	data, err := io.ReadAll(f)
	if err != nil || !utf8.Valid(data) {
		return r.renderNotFound(file)
	}

	r.headers.Set("Content-Type", domain.MimeTextHTML.String())
	r.headers.Set("Content-Length", strconv.Itoa(len(data)))
	return r.SendBytes(data)
}

func (r *Response) renderNotFound(file string) error {
	r.SetStatus(domain.StatusNotFound)
	if err := r.Send(file + " NOT FOUND"); err != nil {
		return err
	}
	return domain.ErrRenderNotFound.WithDetails(file)
}

func (r *Response) renderFailed(file string, cause error) error {
	r.logger.Error("failed to open view", "file", file, "error", cause)
	r.SetStatus(domain.StatusServerError)
	if err := r.Send(internalErrorBody); err != nil {
		return err
	}
	return domain.ErrRenderIO.WithDetails(file).WithCause(cause)
}
