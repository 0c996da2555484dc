package archive

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"smarthire/internal/config"
	"smarthire/internal/logger"
)

// Archive stores the original bytes of an attachment and returns a reference
// to where they ended up (a URL, object key or file path).
type Archive interface {
	Archive(ctx context.Context, filename string, data []byte, mimeType string) (string, error)
}

const (
	BackendDrive = "drive"
	BackendS3    = "s3"
	BackendLocal = "local"
)

// Open picks the archive backend once at startup. A remote backend that cannot
// be constructed falls back to the local uploads directory.
func Open(ctx context.Context, cfg *config.Config) Archive {
	log := logger.Component("archive")

	backend := cfg.ArchiveBackend
	if backend == "" {
		backend = BackendLocal
		if cfg.GoogleServiceAccountJSON != "" && cfg.GoogleDriveFolderID != "" {
			backend = BackendDrive
		}
	}

	switch backend {
	case BackendDrive:
		creds, err := cfg.ServiceAccountJSON()
		if err == nil {
			var d *Drive
			d, err = NewDrive(ctx, creds, cfg.GoogleDriveFolderID)
			if err == nil {
				log.Info().Str("backend", BackendDrive).Msg("attachment archive ready")
				return d
			}
		}
		log.Warn().Err(err).Msg("drive archive unavailable, using local uploads directory")
	case BackendS3:
		s, err := NewS3(cfg.S3)
		if err == nil {
			log.Info().Str("backend", BackendS3).Str("bucket", cfg.S3.Bucket).Msg("attachment archive ready")
			return s
		}
		log.Warn().Err(err).Msg("s3 archive unavailable, using local uploads directory")
	}

	log.Info().Str("backend", BackendLocal).Str("dir", cfg.LocalUploadsDir).Msg("attachment archive ready")
	return NewLocal(cfg.LocalUploadsDir)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces a client-supplied name to a single safe path element.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "attachment"
	}
	return name
}

// objectName prefixes the sanitized filename with a UTC timestamp so repeated
// uploads of "cv.pdf" do not collide.
func objectName(now time.Time, filename string) string {
	return now.UTC().Format("20060102T150405.000000000") + "-" + SanitizeFilename(filename)
}
