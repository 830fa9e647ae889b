package binder

import "net/http"

// Query creates a query parameter binder function.
//
// It supports struct tags for custom parameter names:
//   - `query:"name"` - binds to query parameter "name"
//   - `query:"-"` - skips the field
//   - `query:"name,omitempty"` - same as query:"name" for parsing
//
// Fields without a query tag are left alone, so the same struct can also
// carry form and file fields. An empty name (`query:",omitempty"`) falls back
// to the lower-cased field name.
//
// Example:
//
//	type UploadQuery struct {
//		DirName *string `query:"dir_name"` // Optional
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
