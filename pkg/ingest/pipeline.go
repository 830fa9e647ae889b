package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/dmitrymomot/docvault/pkg/file"
	"github.com/dmitrymomot/docvault/pkg/logger"
)

// MaxNameAttempts is how many stored names are tried for one item before a
// name collision is reported as a failure.
const MaxNameAttempts = 3

var errMissingStream = errors.New("upload has no content stream")

// Namer assigns stored file names. Implementations must keep the extension of
// original and should make collisions unlikely.
type Namer interface {
	Generate(original string) string
}

// SizeProbe reports the stored size of a path relative to the storage root.
type SizeProbe interface {
	Size(ctx context.Context, path string) (int64, error)
}

// Pipeline ingests batches of uploads into storage.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	settings     Settings
	storage      file.Storage
	namer        Namer
	probe        SizeProbe
	logger       *slog.Logger
	nameAttempts int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSizeProbe replaces the size lookup. Defaults to the storage itself.
func WithSizeProbe(probe SizeProbe) Option {
	return func(p *Pipeline) {
		if probe != nil {
			p.probe = probe
		}
	}
}

// WithNameAttempts changes how many names are tried on collision.
func WithNameAttempts(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.nameAttempts = n
		}
	}
}

// New creates a pipeline writing into storage with names from namer.
func New(settings Settings, storage file.Storage, namer Namer, opts ...Option) *Pipeline {
	p := &Pipeline{
		settings:     settings,
		storage:      storage,
		namer:        namer,
		probe:        storage,
		logger:       logger.Discard(),
		nameAttempts: MaxNameAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("ingest"))
	return p
}

// Settings returns the configuration the pipeline was built with.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Ingest stores every item of req in order and reports one result per item.
// It fails only with ErrNoFiles, before touching storage.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*BatchResult, error) {
	if len(req.Items) == 0 {
		p.logger.WarnContext(ctx, "rejected batch without files")
		return nil, ErrNoFiles
	}

	start := time.Now()
	p.logger.InfoContext(ctx, "starting batch ingestion", logger.Count("files", len(req.Items)))

	details := make([]FileResult, 0, len(req.Items))
	for _, item := range req.Items {
		result, err := p.Store(ctx, item, req.Directory)
		if err != nil {
			result = failedResult(item.Filename, err)
		}
		details = append(details, result)
	}

	batch := Aggregate(details)
	p.logger.InfoContext(ctx, "batch ingestion completed",
		logger.Count("success", batch.SuccessCount),
		logger.Count("failed", batch.FailedCount),
		logger.Duration(time.Since(start)),
	)
	return &batch, nil
}

// Store runs every step for a single item. A non-nil error is always an
// *ItemError and the returned FileResult is then empty. Panics raised while
// processing the item are recovered into an ErrItemPanic error.
func (p *Pipeline) Store(ctx context.Context, item Item, override *string) (result FileResult, err error) {
	log := p.logger.With(logger.Filename(item.Filename))

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic while processing file", slog.Any("panic", r))
			result, err = FileResult{}, panicError(item.Filename, r)
		}
	}()

	log.DebugContext(ctx, "processing file")

	if !IsAllowed(item.Filename, p.settings.AllowedExtensions) {
		ext := Extension(item.Filename)
		log.WarnContext(ctx, "file extension not allowed", logger.Extension(ext))
		return FileResult{}, extensionError(item.Filename, ext)
	}

	dir := ResolveDirectory(override, item.Filename)
	log = log.With(logger.Directory(dir))
	log.DebugContext(ctx, "preparing destination directory")

	if err := p.storage.MkdirAll(ctx, dir); err != nil {
		log.ErrorContext(ctx, "failed to create directory", logger.Error(err))
		return FileResult{}, ioError(item.Filename, err)
	}

	stored, err := p.save(ctx, log, item, dir)
	if err != nil {
		log.ErrorContext(ctx, "failed to save file", logger.Error(err))
		return FileResult{}, ioError(item.Filename, err)
	}

	size, err := p.probe.Size(ctx, stored.RelativePath)
	if err != nil {
		log.ErrorContext(ctx, "failed to determine file size",
			logger.StoredPath(stored.Location),
			logger.Error(err),
		)
		if delErr := p.storage.Delete(context.WithoutCancel(ctx), stored.RelativePath); delErr != nil {
			log.WarnContext(ctx, "failed to remove unverified file", logger.Error(delErr))
		}
		return FileResult{}, ioError(item.Filename, err)
	}

	log.InfoContext(ctx, "file saved",
		logger.StoredPath(stored.Location),
		logger.Size(size),
		logger.MIMEType(stored.MIMEType),
	)
	return successResult(item.Filename, stored.Location, dir, size), nil
}

// save streams the item into dir under a fresh name, asking the namer again
// when storage reports the name as taken.
func (p *Pipeline) save(ctx context.Context, log *slog.Logger, item Item, dir string) (*file.File, error) {
	if item.Open == nil {
		return nil, errMissingStream
	}

	var lastErr error
	for attempt := 1; attempt <= p.nameAttempts; attempt++ {
		target := path.Join(dir, p.namer.Generate(item.Filename))
		log.DebugContext(ctx, "generated stored name", logger.StoredPath(target), slog.Int("attempt", attempt))

		// Skip names already present without opening the stream. Save still
		// refuses to overwrite if another writer takes the name meanwhile.
		if p.storage.Exists(ctx, target) {
			lastErr = fmt.Errorf("%w: %s", file.ErrFileExists, target)
			log.WarnContext(ctx, "stored name already taken", logger.StoredPath(target))
			continue
		}

		stored, err := p.saveOnce(ctx, item, target)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, file.ErrFileExists) {
			return nil, err
		}
		lastErr = err
		log.WarnContext(ctx, "stored name already taken", logger.StoredPath(target))
	}

	return nil, fmt.Errorf("no free name after %d attempts: %w", p.nameAttempts, lastErr)
}

func (p *Pipeline) saveOnce(ctx context.Context, item Item, target string) (*file.File, error) {
	src, err := item.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", file.ErrFailedToReadFile, err)
	}
	defer func() { _ = src.Close() }()

	return p.storage.Save(ctx, src, target)
}
