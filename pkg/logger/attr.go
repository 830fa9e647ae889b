package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Filename records the client supplied file name.
func Filename(name string) slog.Attr {
	return slog.String("filename", name)
}

// Extension records a file extension; an empty one is logged as "(none)".
func Extension(ext string) slog.Attr {
	if ext == "" {
		ext = "(none)"
	}
	return slog.String("extension", ext)
}

// Directory records the sanitized destination directory.
func Directory(dir string) slog.Attr {
	return slog.String("directory", dir)
}

// StoredPath records where a file ended up in storage.
func StoredPath(path string) slog.Attr {
	return slog.String("stored_path", path)
}

// Size records a byte count under the key "size".
func Size(n int64) slog.Attr {
	return slog.Int64("size", n)
}

// MIMEType records a detected content type.
func MIMEType(t string) slog.Attr {
	return slog.String("mime_type", t)
}

// Count records a named counter, e.g. Count("success", 3).
func Count(name string, n int) slog.Attr {
	return slog.Int(name, n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
