package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarthire/internal/config"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 5, time.UTC) }

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"cv.pdf":               "cv.pdf",
		"My Resume (1).docx":   "My_Resume_1_.docx",
		"../../etc/passwd":     "passwd",
		`C:\Users\jane\cv.pdf`: "cv.pdf",
		"":                     "attachment",
		"...":                  "attachment",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestLocal_Archive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	l := NewLocal(dir)
	l.now = fixedNow

	ref, err := l.Archive(context.Background(), "../cv.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "20240301T123000.000000005-cv.pdf"), ref)
	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestLocal_ArchiveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocal(t.TempDir()).Archive(ctx, "cv.pdf", nil, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestS3_Archive(t *testing.T) {
	var (
		mu      sync.Mutex
		gotPath string
		gotType string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3(config.S3Config{
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "secret",
		Bucket:    "resumes",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	s.now = fixedNow

	ref, err := s.Archive(context.Background(), "jane doe.pdf", []byte("bytes"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "s3://resumes/attachments/20240301T123000.000000005-jane_doe.pdf", ref)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/resumes/attachments/20240301T123000.000000005-jane_doe.pdf", gotPath)
	assert.Equal(t, "application/pdf", gotType)
	assert.Equal(t, "bytes", string(gotBody))
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	t.Run("defaults to local", func(t *testing.T) {
		cfg := &config.Config{LocalUploadsDir: t.TempDir()}
		_, ok := Open(context.Background(), cfg).(*Local)
		assert.True(t, ok)
	})

	t.Run("s3 without bucket falls back", func(t *testing.T) {
		cfg := &config.Config{ArchiveBackend: BackendS3, LocalUploadsDir: t.TempDir()}
		_, ok := Open(context.Background(), cfg).(*Local)
		assert.True(t, ok)
	})

	t.Run("drive with bad credentials falls back", func(t *testing.T) {
		cfg := &config.Config{
			GoogleServiceAccountJSON: "does-not-exist.json",
			GoogleDriveFolderID:      "folder",
			LocalDataDir:             t.TempDir(),
			LocalUploadsDir:          t.TempDir(),
		}
		_, ok := Open(context.Background(), cfg).(*Local)
		assert.True(t, ok)
	})

	t.Run("s3 configured", func(t *testing.T) {
		cfg := &config.Config{
			ArchiveBackend: BackendS3,
			S3:             config.S3Config{Bucket: "b", Region: "us-east-1", Endpoint: "http://127.0.0.1:9000"},
		}
		_, ok := Open(context.Background(), cfg).(*S3)
		assert.True(t, ok)
	})
}
