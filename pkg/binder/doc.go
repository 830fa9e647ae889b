// Package binder provides HTTP request data binding for handlers built with
// the handler package.
//
// Binders share one signature, func(r *http.Request, v any) error, and fill
// a pointer to struct from one part of the request. They are applied in order
// by handler.WithBinders, so a single request struct can combine sources:
//
//	type UploadRequest struct {
//		Files      []*multipart.FileHeader `file:"files"`
//		DirName    *string                 `query:"dir_name"`
//		DirNameAlt *string                 `form:"dir_name"`
//	}
//
//	h := handler.Wrap(upload,
//		handler.WithBinders[handler.Context, UploadRequest](
//			binder.Form(),
//			binder.Query(),
//		),
//	)
//
// # Available Binders
//
//   - Form(): form values and file uploads from multipart/form-data or urlencoded requests
//   - Query(): URL query parameters
//
// Pointer fields stay nil when the value is absent, which lets handlers tell
// "not sent" apart from an empty string.
//
// # Error Handling
//
//   - ErrMissingContentType: Missing Content-Type header
//   - ErrUnsupportedMediaType: Content type is neither form nor multipart
//   - ErrInvalidForm: Malformed body or boundary, or a value of the wrong type
//   - ErrInvalidQuery: A query value of the wrong type
//   - ErrRequestTooLarge: The body exceeded an http.MaxBytesReader limit
package binder
