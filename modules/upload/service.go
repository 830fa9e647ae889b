package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/docvault/handler"
	"github.com/dmitrymomot/docvault/pkg/binder"
	"github.com/dmitrymomot/docvault/pkg/ingest"
	"github.com/dmitrymomot/docvault/pkg/logger"
)

// Ingester runs a batch through the ingestion pipeline.
type Ingester interface {
	Ingest(ctx context.Context, req ingest.Request) (*ingest.BatchResult, error)
}

// Service exposes batch uploads over HTTP.
type Service struct {
	ingester     Ingester
	logger       *slog.Logger
	maxMemory    int64
	maxBodySize  int64
	errorHandler handler.ErrorHandler[handler.Context]
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger and, unless one was given explicitly,
// the logger of the default JSON error handler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxMemory sets how much of a multipart body is held in memory before
// file parts spill to temporary files.
func WithMaxMemory(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMemory = n
		}
	}
}

// WithMaxUploadSize caps the request body. Larger requests are answered with
// 413. Zero means no limit.
func WithMaxUploadSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// WithErrorHandler replaces the JSON error handler.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		s.errorHandler = h
	}
}

// New creates an upload service backed by ingester.
func New(ingester Ingester, opts ...Option) *Service {
	s := &Service{
		ingester:  ingester,
		logger:    logger.Discard(),
		maxMemory: binder.DefaultMaxMemory,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("upload"))
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.logger)
	}
	return s
}

// Handle returns the service routes:
//
//	POST /multi/  multipart upload of one or more "files" parts
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/multi/", handler.Wrap(s.uploadMany,
		handler.WithBinders[handler.Context, UploadRequest](
			binder.Form(binder.WithMaxMemory(s.maxMemory)),
			binder.Query(),
		),
		handler.WithErrorHandler[handler.Context, UploadRequest](s.errorHandler),
	))

	if s.maxBodySize > 0 {
		return http.MaxBytesHandler(r, s.maxBodySize)
	}
	return r
}

// UploadRequest is a multipart batch. The destination directory may be given
// as a dir_name query parameter or form field; the query parameter wins.
type UploadRequest struct {
	Files       []*multipart.FileHeader `file:"files"`
	DirName     *string                 `query:"dir_name"`
	FormDirName *string                 `form:"dir_name"`
}

// Directory returns the requested override, or nil when none was sent.
// An empty query value does not hide the form field.
func (r UploadRequest) Directory() *string {
	if r.DirName != nil && *r.DirName != "" {
		return r.DirName
	}
	return r.FormDirName
}

func (s *Service) uploadMany(ctx handler.Context, req UploadRequest) handler.Response {
	if form := ctx.Request().MultipartForm; form != nil {
		defer func() {
			if err := form.RemoveAll(); err != nil {
				s.logger.WarnContext(ctx, "failed to remove multipart temp files", logger.Error(err))
			}
		}()
	}

	result, err := s.ingester.Ingest(ctx, ingest.Request{
		Items:     items(req.Files),
		Directory: req.Directory(),
	})
	if err != nil {
		if errors.Is(err, ingest.ErrNoFiles) {
			return handler.JSONError(fmt.Errorf("%w: %v", ErrNoFiles, err))
		}
		return handler.JSONError(err)
	}

	status := http.StatusMultiStatus
	if result.AllFailed() {
		status = http.StatusUnprocessableEntity
	}

	s.logger.InfoContext(ctx, "upload batch processed",
		logger.Count("success_count", result.SuccessCount),
		logger.Count("failed_count", result.FailedCount),
		slog.Int("status", status),
	)

	return handler.JSON(result, handler.WithJSONStatus(status), handler.WithoutEnvelope())
}

// items adapts multipart file headers to pipeline items.
func items(files []*multipart.FileHeader) []ingest.Item {
	out := make([]ingest.Item, 0, len(files))
	for _, fh := range files {
		if fh == nil {
			continue
		}
		out = append(out, ingest.Item{
			Filename: clientFilename(fh),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return out
}

// clientFilename returns the filename exactly as the client sent it.
// multipart strips directory components from FileHeader.Filename, so the raw
// Content-Disposition parameter is read instead.
func clientFilename(fh *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(fh.Header.Get("Content-Disposition"))
	if err != nil || params["filename"] == "" {
		return fh.Filename
	}
	return params["filename"]
}
