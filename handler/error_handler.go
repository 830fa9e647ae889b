package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/docvault/pkg/binder"
	"github.com/dmitrymomot/docvault/pkg/logger"
)

// NewErrorHandler returns an ErrorHandler that answers with a JSON error body
// ({"error":{"code","message"}}) and logs the failure. Client errors are
// logged at warn, server errors at error. Request ids are expected to come
// from the logger's context extractors.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx Context, err error) {
		if err == nil {
			return
		}

		httpErr := classify(err)
		r := ctx.Request()
		attrs := []any{
			logger.Error(err),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", httpErr.Code),
		}
		if httpErr.Code >= http.StatusInternalServerError {
			log.ErrorContext(ctx, "request failed", attrs...)
		} else {
			log.WarnContext(ctx, "request rejected", attrs...)
		}

		resp := JSONError(joinHTTPError(httpErr, err))
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(ctx, "failed to render error response", logger.Error(renderErr))
		}
	}
}

// classify maps err to the HTTPError that describes it to clients.
func classify(err error) HTTPError {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, binder.ErrRequestTooLarge):
		return ErrRequestEntityTooLarge
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return ErrUnsupportedMediaType
	case errors.Is(err, binder.ErrInvalidForm), errors.Is(err, binder.ErrInvalidQuery):
		return ErrBadRequest
	default:
		return ErrInternalServerError
	}
}

// joinHTTPError keeps err's text as the client message while letting
// JSONError find the status.
func joinHTTPError(httpErr HTTPError, err error) error {
	var existing HTTPError
	if errors.As(err, &existing) {
		return err
	}
	return &classifiedError{HTTPError: httpErr, err: err}
}

type classifiedError struct {
	HTTPError
	err error
}

func (e *classifiedError) Error() string { return e.err.Error() }

func (e *classifiedError) Unwrap() []error { return []error{e.HTTPError, e.err} }
