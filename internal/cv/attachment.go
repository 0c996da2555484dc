package cv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	httpclient "smarthire/pkg/http"
)

// AttachmentDescriptor names one attachment of an inbound message: a URL to
// download or base64 content, plus optional filename and content type hints.
type AttachmentDescriptor struct {
	URL         string `json:"url,omitempty"`
	Content     string `json:"content,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

var ErrAttachmentFetch = errors.New("attachment fetch failed")

// AttachmentFetchError reports an attachment whose bytes could not be obtained.
type AttachmentFetchError struct {
	Filename   string
	URL        string
	StatusCode int
	Err        error
}

func (e *AttachmentFetchError) Error() string {
	name := e.Filename
	if name == "" {
		name = e.URL
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("attachment %q: fetch returned status %d", name, e.StatusCode)
	}
	return fmt.Sprintf("attachment %q: %v", name, e.Err)
}

func (e *AttachmentFetchError) Unwrap() error { return e.Err }

func (e *AttachmentFetchError) Is(target error) bool { return target == ErrAttachmentFetch }

// Fetcher downloads remote attachments.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Materializer turns descriptors into bytes and short-lived temp files.
type Materializer struct {
	fetcher Fetcher
	tempDir string
}

func NewMaterializer(fetcher Fetcher) *Materializer {
	return &Materializer{fetcher: fetcher}
}

// Load returns the attachment bytes. Inline content wins over a URL.
func (m *Materializer) Load(ctx context.Context, d AttachmentDescriptor) ([]byte, error) {
	switch {
	case d.Content != "":
		data, err := decodeBase64(d.Content)
		if err != nil {
			return nil, &AttachmentFetchError{Filename: d.Filename, Err: fmt.Errorf("decode inline content: %w", err)}
		}
		return data, nil

	case d.URL != "":
		if m.fetcher == nil {
			return nil, &AttachmentFetchError{Filename: d.Filename, URL: d.URL, Err: errors.New("no fetcher configured")}
		}
		data, err := m.fetcher.Fetch(ctx, d.URL)
		if err != nil {
			fe := &AttachmentFetchError{Filename: d.Filename, URL: d.URL, Err: err}
			var se *httpclient.StatusError
			if errors.As(err, &se) {
				fe.StatusCode = se.StatusCode
			}
			return nil, fe
		}
		return data, nil

	default:
		return nil, &AttachmentFetchError{Filename: d.Filename, Err: errors.New("attachment has neither url nor content")}
	}
}

// Materialize writes the attachment to a temp file, hands it to fn and removes
// the file on every return path.
func (m *Materializer) Materialize(ctx context.Context, d AttachmentDescriptor, fn func(path string, data []byte) error) error {
	data, err := m.Load(ctx, d)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(m.tempDir, "attachment-*"+suffixFor(d))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return fn(path, data)
}

var safeSuffix = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

var suffixByContentType = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/plain":    ".txt",
	"text/markdown": ".md",
	"text/csv":      ".csv",
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/tiff":    ".tiff",
	"image/bmp":     ".bmp",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
}

// suffixFor keeps the filename hint's extension so format detection can see it.
func suffixFor(d AttachmentDescriptor) string {
	if ext := filepath.Ext(filepath.Base(d.Filename)); safeSuffix.MatchString(ext) {
		return ext
	}
	ct := strings.ToLower(strings.TrimSpace(d.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return suffixByContentType[ct]
}

// decodeBase64 accepts standard or URL alphabets, padded or not, with an optional data URL prefix.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)

	var lastErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
