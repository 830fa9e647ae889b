package binder

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
)

// DefaultMaxMemory is the default maximum memory used for parsing multipart forms (10MB).
// Larger file parts are spooled to temporary files.
const DefaultMaxMemory = 10 << 20 // 10 MB

// maxBoundaryLength is the RFC 2046 limit for a multipart boundary.
const maxBoundaryLength = 70

// FormOption configures the Form binder.
type FormOption func(*formOptions)

type formOptions struct {
	maxMemory int64
}

// WithMaxMemory sets how much of a multipart body is kept in memory.
func WithMaxMemory(n int64) FormOption {
	return func(o *formOptions) {
		if n > 0 {
			o.maxMemory = n
		}
	}
}

// Form creates a unified binder for both form data and file uploads.
// It handles application/x-www-form-urlencoded and multipart/form-data content types.
//
// Supported struct tags:
//   - `form:"name"` - binds to form field "name"
//   - `form:"-"`    - skips the field
//   - `file:"name"` - binds to uploaded file "name"
//   - `file:"-"`    - skips the field
//
// Supported types for file fields:
//   - *multipart.FileHeader - single file
//   - []*multipart.FileHeader - multiple files
//
// File headers are bound as received. Filenames are not rewritten, so callers
// see exactly what the client sent and must sanitize before using a name on
// disk.
//
// A body rejected by http.MaxBytesReader is reported as ErrRequestTooLarge.
//
// Example:
//
//	type UploadRequest struct {
//		Files   []*multipart.FileHeader `file:"files"`
//		DirName *string                 `form:"dir_name"`
//	}
func Form(opts ...FormOption) func(r *http.Request, v any) error {
	o := &formOptions{maxMemory: DefaultMaxMemory}
	for _, opt := range opts {
		opt(o)
	}

	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: missing content-type header, expected application/x-www-form-urlencoded or multipart/form-data", ErrMissingContentType)
		}

		// Extract media type without parameters
		mediaType := contentType
		if idx := strings.Index(contentType, ";"); idx != -1 {
			mediaType = strings.TrimSpace(contentType[:idx])
		}
		mediaType = strings.ToLower(mediaType)

		var values map[string][]string
		var files map[string][]*multipart.FileHeader

		switch {
		case mediaType == "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return formError(err)
			}
			values = r.PostForm

		case mediaType == "multipart/form-data":
			// Validate multipart content type and boundary for security
			_, params, err := mime.ParseMediaType(contentType)
			if err != nil {
				return fmt.Errorf("%w: malformed content type with boundary", ErrInvalidForm)
			}

			boundary, ok := params["boundary"]
			if !ok || boundary == "" {
				return fmt.Errorf("%w: missing boundary in content type", ErrInvalidForm)
			}

			if !validateBoundary(boundary) {
				return fmt.Errorf("%w: invalid boundary parameter", ErrInvalidForm)
			}

			if err := r.ParseMultipartForm(o.maxMemory); err != nil {
				return formError(err)
			}

			if r.MultipartForm != nil {
				values = r.MultipartForm.Value
				files = r.MultipartForm.File
			} else {
				values = make(map[string][]string)
			}

		default:
			return fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mediaType)
		}

		// Temporary files are removed by the caller via r.MultipartForm.RemoveAll
		// once the uploads have been consumed.
		return bindFormAndFiles(v, values, files, ErrInvalidForm)
	}
}

// formError classifies a form parsing failure.
func formError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Errorf("%w: limit is %d bytes", ErrRequestTooLarge, maxBytesErr.Limit)
	}
	return fmt.Errorf("%w: %v", ErrInvalidForm, err)
}

// validateBoundary checks a multipart boundary against RFC 2046: 1 to 70
// characters from the bchars set, not ending with a space.
func validateBoundary(boundary string) bool {
	if boundary == "" || len(boundary) > maxBoundaryLength {
		return false
	}
	if strings.HasSuffix(boundary, " ") {
		return false
	}
	for _, c := range boundary {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("'()+_,-./:=? ", c):
		default:
			return false
		}
	}
	return true
}

// bindFormAndFiles binds both form values and files to a struct.
// Only fields carrying a form or file tag are considered.
func bindFormAndFiles(v any, values map[string][]string, files map[string][]*multipart.FileHeader, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", bindErr)
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", bindErr)
	}

	rt := rv.Type()

	for i := range rv.NumField() {
		field := rv.Field(i)
		fieldType := rt.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		if formTag, ok := fieldType.Tag.Lookup("form"); ok {
			paramName, _, _ := strings.Cut(formTag, ",")
			if paramName != "" && paramName != "-" {
				if fieldValues := values[paramName]; len(fieldValues) > 0 {
					if err := setFieldValue(field, fieldType.Type, fieldValues); err != nil {
						return fmt.Errorf("%w: field %s: %v", bindErr, fieldType.Name, err)
					}
				}
			}
		}

		if fileTag, ok := fieldType.Tag.Lookup("file"); ok && fileTag != "" && fileTag != "-" {
			if fileHeaders := files[fileTag]; len(fileHeaders) > 0 {
				if err := setFileField(field, fieldType.Type, fileHeaders); err != nil {
					return fmt.Errorf("%w: field %s: %v", bindErr, fieldType.Name, err)
				}
			}
		}
	}

	return nil
}

var fileHeaderType = reflect.TypeOf((*multipart.FileHeader)(nil))

// setFileField sets file values to struct fields.
func setFileField(field reflect.Value, fieldType reflect.Type, fileHeaders []*multipart.FileHeader) error {
	if fieldType.Kind() == reflect.Slice {
		if fieldType.Elem() != fileHeaderType {
			return fmt.Errorf("unsupported slice element type for file field: %v", fieldType.Elem())
		}

		slice := reflect.MakeSlice(fieldType, len(fileHeaders), len(fileHeaders))
		for i, fh := range fileHeaders {
			slice.Index(i).Set(reflect.ValueOf(fh))
		}
		field.Set(slice)
		return nil
	}

	if fieldType == fileHeaderType {
		field.Set(reflect.ValueOf(fileHeaders[0]))
		return nil
	}

	return fmt.Errorf("unsupported type for file field: %v (expected *multipart.FileHeader or []*multipart.FileHeader)", fieldType)
}
