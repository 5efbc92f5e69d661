// Package form decodes and validates the site's HTML forms. Validation
// failures are reported as *Error before anything reaches the backend.
package form

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"pycsa-web/internal/media"
)

const maxMemory = 10 << 20

// Error is a form-level validation message.
type Error struct {
	Message string
	Fields  []ValidationError
}

func (e *Error) Error() string {
	return e.Message
}

func newError(msg string) *Error {
	return &Error{Message: msg}
}

func parse(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return fmt.Errorf("failed to parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}
	return nil
}

func value(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

func checked(r *http.Request, key string) bool {
	switch r.PostFormValue(key) {
	case "on", "true", "1":
		return true
	}
	return false
}

// lines splits a textarea into trimmed, non-blank lines.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// paragraphs splits a textarea on blank lines.
func paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// listValues collects repeated fields (details, info) falling back to a
// single textarea split by split.
func listValues(r *http.Request, key string, split func(string) []string) []string {
	values := r.PostForm[key]
	if len(values) == 1 {
		return split(values[0])
	}
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// picked is the content of a file input. discard counts, by file name, the
// pending files the browser could not take out of the input itself and
// asked to drop instead.
type picked struct {
	files    []*media.File
	rejected []string
	discard  map[string]int
}

// uploads reads and validates the files of the key input. Rejected files
// that were also discarded are not reported.
func uploads(r *http.Request, key string) (*picked, error) {
	p := &picked{}
	if r.MultipartForm == nil {
		return p, nil
	}

	for _, name := range r.MultipartForm.Value["discard_image"] {
		if p.discard == nil {
			p.discard = map[string]int{}
		}
		p.discard[name]++
	}

	for _, fh := range r.MultipartForm.File[key] {
		if fh.Filename == "" || fh.Size == 0 {
			continue
		}
		f, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		if err := media.ValidateFile(f); err != nil {
			if p.discard[f.Name] > 0 {
				p.discard[f.Name]--
				continue
			}
			p.rejected = append(p.rejected, err.Error())
			continue
		}
		p.files = append(p.files, f)
	}
	return p, nil
}

func readFile(fh *multipart.FileHeader) (*media.File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, media.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return &media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// addImages adds the picked files to sel, recording a limit error as an
// image error, then drops the discarded ones.
func addImages(sel *media.Selection, p *picked, imageErrors []string) []string {
	if len(p.files) == 0 {
		return imageErrors
	}
	if err := sel.Add(p.files...); err != nil {
		return append(imageErrors, err.Error())
	}
	added := sel.Added()
	for i := len(added) - 1; i >= 0; i-- {
		if p.discard[added[i].Name] > 0 {
			p.discard[added[i].Name]--
			sel.RemoveAdded(i)
		}
	}
	return imageErrors
}
