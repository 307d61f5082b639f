package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/export"
)

const (
	xlsxMimeType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
)

// DriveSharer uploads exports to Google Drive and returns the web link.
type DriveSharer struct {
	service  *drive.Service
	logger   *slog.Logger
	folderID string
	convert  bool
}

var _ export.Sharer = (*DriveSharer)(nil)

// DriveOption configures a DriveSharer.
type DriveOption func(*DriveSharer)

// WithFolder uploads into the given Drive folder.
func WithFolder(id string) DriveOption {
	return func(d *DriveSharer) {
		d.folderID = id
	}
}

// WithConversion stores the upload as a Google Sheet instead of an .xlsx
// file.
func WithConversion(convert bool) DriveOption {
	return func(d *DriveSharer) {
		d.convert = convert
	}
}

// WithDriveLogger sets the logger.
func WithDriveLogger(l *slog.Logger) DriveOption {
	return func(d *DriveSharer) {
		d.logger = l
	}
}

// NewDriveSharer creates a sharer from ready client options, such as
// option.WithHTTPClient.
func NewDriveSharer(ctx context.Context, clientOpts []option.ClientOption, opts ...DriveOption) (*DriveSharer, error) {
	srv, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	d := &DriveSharer{service: srv}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = common.LoggerOrDefault(d.logger)
	return d, nil
}

// NewDriveSharerFromConfig authorizes with the stored token. It returns
// ErrNotAuthorized until `ledger auth drive` has been run.
func NewDriveSharerFromConfig(ctx context.Context, cfg DriveConfig, opts ...DriveOption) (*DriveSharer, error) {
	client, err := AuthorizedClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]DriveOption{WithFolder(cfg.FolderID)}, opts...)
	return NewDriveSharer(ctx, []option.ClientOption{option.WithHTTPClient(client)}, opts...)
}

// Name implements export.Sharer.
func (d *DriveSharer) Name() string { return "drive" }

// Share implements export.Sharer.
func (d *DriveSharer) Share(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	meta := &drive.File{Name: filepath.Base(path)}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}
	if d.convert {
		meta.MimeType = spreadsheetMimeType
	}

	created, err := d.service.Files.Create(meta).
		Media(f, googleapi.ContentType(xlsxMimeType)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
			return "", fmt.Errorf("%w: %v", export.ErrShareUnavailable, err)
		}
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	d.logger.Info("uploaded export to drive", "file_id", created.Id, "name", meta.Name)
	return created.WebViewLink, nil
}
