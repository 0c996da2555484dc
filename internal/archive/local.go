package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Local writes attachments into a directory on disk.
type Local struct {
	dir string
	now func() time.Time
}

func NewLocal(dir string) *Local {
	return &Local{dir: dir, now: time.Now}
}

func (l *Local) Archive(ctx context.Context, filename string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	path := filepath.Join(l.dir, objectName(l.now(), filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
