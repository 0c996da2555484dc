package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Drive uploads attachments into a Google Drive folder.
type Drive struct {
	svc      *drive.Service
	folderID string
}

func NewDrive(ctx context.Context, credsJSON []byte, folderID string) (*Drive, error) {
	if folderID == "" {
		return nil, errors.New("drive folder id is not configured")
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credsJSON),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewDriveWithService(svc, folderID), nil
}

func NewDriveWithService(svc *drive.Service, folderID string) *Drive {
	return &Drive{svc: svc, folderID: folderID}
}

// Archive returns the file's web view link, or its id when Drive omits the link.
func (d *Drive) Archive(ctx context.Context, filename string, data []byte, mimeType string) (string, error) {
	meta := &drive.File{
		Name:    SanitizeFilename(filename),
		Parents: []string{d.folderID},
	}
	if mimeType != "" {
		meta.MimeType = mimeType
	}

	f, err := d.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id", "webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %q to drive: %w", meta.Name, err)
	}
	if f.WebViewLink != "" {
		return f.WebViewLink, nil
	}
	return f.Id, nil
}
