package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// DefaultPrefix starts every export file name.
const DefaultPrefix = "ACC_export"

// SharedViaPath is recorded when no share target took the file.
const SharedViaPath = "path"

// ErrShareUnavailable is returned by a Sharer that cannot run in the
// current environment. The chain moves on without logging a warning.
var ErrShareUnavailable = errors.New("share target unavailable")

// Sharer hands a stored file to the user.
type Sharer interface {
	Name() string
	// Share returns a link when the target produces one.
	Share(ctx context.Context, path string) (string, error)
}

// Request is the history to export.
type Request struct {
	FilterKey    string
	FilterLabel  string
	Transactions []model.Transaction
	Categories   []model.Category
	Totals       model.Totals
}

// Outcome describes a finished export.
type Outcome struct {
	Path      string
	Writer    string
	SharedVia string
	Link      string
	Rows      int
}

// Unshared returns a notice when the file was only stored, or nil.
func (o Outcome) Unshared() *common.ShareUnavailable {
	if o.SharedVia != SharedViaPath {
		return nil
	}
	return &common.ShareUnavailable{Path: o.Path}
}

// Config configures an Exporter.
type Config struct {
	Dir    string
	Prefix string
}

// Exporter runs the export pipeline: guard, rows, document, primary
// writer, fallback writer, persist, share chain.
type Exporter struct {
	primary  Writer
	fallback Writer
	logger   *slog.Logger
	now      func() time.Time
	sharers  []Sharer
	config   Config
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithWriters replaces the primary and fallback writers.
func WithWriters(primary, fallback Writer) Option {
	return func(e *Exporter) {
		e.primary, e.fallback = primary, fallback
	}
}

// WithSharers sets the share chain, tried in order.
func WithSharers(sharers ...Sharer) Option {
	return func(e *Exporter) {
		e.sharers = sharers
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithClock overrides the time source used in file names.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// NewExporter creates an exporter writing into cfg.Dir.
func NewExporter(cfg Config, opts ...Option) (*Exporter, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: export.dir", common.ErrMissingConfig)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	e := &Exporter{
		config:   cfg,
		primary:  ExcelizeWriter{},
		fallback: PlainWriter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = common.LoggerOrDefault(e.logger)
	return e, nil
}

// Export writes req to a new file and shares it. An empty request produces
// no file. A failed share is not an error; the outcome then records the
// stored path.
func (e *Exporter) Export(ctx context.Context, req Request) (Outcome, error) {
	if len(req.Transactions) == 0 {
		return Outcome{}, &common.ExportError{Stage: "guard", Err: common.ErrNothingToExport}
	}

	rows := BuildRows(req.Transactions, req.Categories)
	doc := NewDocument(rows, req.Totals, req.FilterLabel)

	data, writer, err := e.render(doc)
	if err != nil {
		return Outcome{}, &common.ExportError{Stage: "write", Err: err}
	}

	path, err := e.persist(req.FilterKey, data)
	if err != nil {
		return Outcome{}, &common.ExportError{Stage: "persist", Err: err}
	}

	outcome := Outcome{Path: path, Writer: writer, Rows: len(rows)}
	e.logger.Info("export written",
		"path", path,
		"writer", writer,
		"rows", len(rows),
		"bytes", len(data))

	outcome.SharedVia, outcome.Link = e.share(ctx, path)
	return outcome, nil
}

// render tries the primary writer, then the fallback.
func (e *Exporter) render(doc Document) ([]byte, string, error) {
	data, primaryErr := safeWrite(e.primary, doc)
	if primaryErr == nil {
		return data, e.primary.Name(), nil
	}
	e.logger.Warn("primary writer failed, using fallback",
		"writer", e.primary.Name(),
		"error", primaryErr)

	data, fallbackErr := safeWrite(e.fallback, doc)
	if fallbackErr == nil {
		return data, e.fallback.Name(), nil
	}
	e.logger.Error("fallback writer failed",
		"writer", e.fallback.Name(),
		"error", fallbackErr)

	return nil, "", errors.Join(primaryErr, fallbackErr)
}

// safeWrite runs a writer into memory, turning a panic into an error.
func safeWrite(w Writer, doc Document) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s writer panicked: %v", w.Name(), r)
		}
	}()

	var buf bytes.Buffer
	if err := w.Write(&buf, doc); err != nil {
		return nil, fmt.Errorf("%s writer: %w", w.Name(), err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%s writer produced no output", w.Name())
	}
	return buf.Bytes(), nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName builds <prefix>_<filter>_<unixMillis>.xlsx with the filter made
// safe for file systems.
func FileName(prefix, filterKey string, at time.Time) string {
	filter := unsafeFileChars.ReplaceAllString(filterKey, "_")
	if filter == "" || filter == "_" {
		filter = model.FilterAll
	}
	return fmt.Sprintf("%s_%s_%d.xlsx", prefix, filter, at.UnixMilli())
}

// persist writes data next to its final name and renames it into place so
// that a failure never leaves a partial file behind.
func (e *Exporter) persist(filterKey string, data []byte) (string, error) {
	if err := os.MkdirAll(e.config.Dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.config.Dir, FileName(e.config.Prefix, filterKey, e.now()))

	tmp, err := os.CreateTemp(e.config.Dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Chmod(tmpPath, 0640); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to set export permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	return path, nil
}

// share walks the chain until a target accepts the file.
func (e *Exporter) share(ctx context.Context, path string) (string, string) {
	for _, s := range e.sharers {
		if ctx.Err() != nil {
			break
		}
		link, err := s.Share(ctx, path)
		if err == nil {
			e.logger.Info("export shared", "via", s.Name(), "link", link)
			return s.Name(), link
		}
		if errors.Is(err, ErrShareUnavailable) {
			e.logger.Debug("share target unavailable", "via", s.Name(), "error", err)
			continue
		}
		e.logger.Warn("share target failed", "via", s.Name(), "error", err)
	}
	return SharedViaPath, ""
}
