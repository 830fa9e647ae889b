package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSONResponse is the standard JSON envelope.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// jsonResponse implements Response for JSON rendering
type jsonResponse struct {
	status int
	body   JSONResponse
	raw    bool
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	if j.raw {
		return json.NewEncoder(w).Encode(j.body.Data)
	}
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to response
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// WithoutEnvelope writes the data value itself instead of {"data": ...}.
// Meta is dropped. Has no effect on error responses.
func WithoutEnvelope() JSONOption {
	return func(r *jsonResponse) {
		r.raw = r.body.Error == nil
	}
}

// JSON creates a JSON response with options.
// Passing an error is the same as calling JSONError.
func JSON(v any, opts ...JSONOption) Response {
	if err, ok := v.(error); ok {
		return JSONError(err, opts...)
	}

	r := &jsonResponse{status: http.StatusOK}
	if body, ok := v.(JSONResponse); ok {
		r.body = body
	} else {
		r.body.Data = v
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError creates a JSON error response. The status and code come from an
// HTTPError anywhere in the chain; other errors become 500 with a generic
// message so internal details are not exposed.
func JSONError(err error, opts ...JSONOption) Response {
	status, detail := errorToDetail(err)
	r := &jsonResponse{
		status: status,
		body:   JSONResponse{Error: detail},
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errorToDetail converts err to a status code and ErrorDetail.
func errorToDetail(err error) (int, *ErrorDetail) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, &ErrorDetail{
			Code:    httpErr.Key,
			Message: errorMessage(err, httpErr),
		}
	}
	return http.StatusInternalServerError, &ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

// errorMessage prefers the wrapping error's text for client errors so
// callers can attach context, and falls back to the status text.
func errorMessage(err error, httpErr HTTPError) string {
	if httpErr.Code < http.StatusInternalServerError && err.Error() != httpErr.Key {
		return err.Error()
	}
	return http.StatusText(httpErr.Code)
}
