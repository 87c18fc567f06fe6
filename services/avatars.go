package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var ErrAvatarsDisabled = errors.New("avatars: storage not configured")

// AvatarStore keeps profile images and returns a public URL for them.
type AvatarStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// DriveAvatars uploads avatars into a shared Google Drive folder.
type DriveAvatars struct {
	Service  *drive.Service
	FolderID string
}

// NewDriveAvatars authenticates with a service-account key file.
func NewDriveAvatars(ctx context.Context, credentialsFile, folderID string, opts ...option.ClientOption) (*DriveAvatars, error) {
	if credentialsFile != "" {
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
		cfg, err := google.JWTConfigFromJSON(b, drive.DriveFileScope)
		if err != nil {
			return nil, fmt.Errorf("drive jwt config: %w", err)
		}
		opts = append(opts, option.WithTokenSource(cfg.TokenSource(ctx)))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &DriveAvatars{Service: svc, FolderID: folderID}, nil
}

func (d *DriveAvatars) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if d == nil || d.Service == nil {
		return "", ErrAvatarsDisabled
	}
	meta := &drive.File{Name: name, MimeType: contentType}
	if d.FolderID != "" {
		meta.Parents = []string{d.FolderID}
	}
	f, err := d.Service.Files.Create(meta).
		Media(body, googleapi.ContentType(contentType)).
		Fields("id", "webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	_, err = d.Service.Permissions.Create(f.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("share avatar %s: %w", f.Id, err)
	}

	if f.WebContentLink != "" {
		return f.WebContentLink, nil
	}
	return "https://drive.google.com/uc?export=view&id=" + f.Id, nil
}
