package file

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"path"
	"strings"
)

// DefaultMIMEType is recorded when the content gives no better answer.
const DefaultMIMEType = "application/octet-stream"

// sniffLen is the maximum number of bytes http.DetectContentType looks at.
const sniffLen = 512

// File represents stored file metadata.
type File struct {
	Name         string // Base name of the stored object
	Dir          string // Directory relative to the storage root
	RelativePath string // Dir joined with Name, always slash separated
	Location     string // Backend specific full location (absolute path or s3:// URL)
	Size         int64  // Bytes actually written
	MIMEType     string // Detected from content, never from the extension
	Extension    string // Lower-cased extension of Name including the dot
}

// Storage is the persistence backend used by the ingestion pipeline.
// Paths are relative to the backend root and slash separated.
type Storage interface {
	// MkdirAll ensures dir exists. Existing directories are not an error.
	MkdirAll(ctx context.Context, dir string) error
	// Save streams r to path. It never overwrites: when path is taken the
	// returned error wraps ErrFileExists.
	Save(ctx context.Context, r io.Reader, path string) (*File, error)
	// Size returns the stored size of path in bytes.
	Size(ctx context.Context, path string) (int64, error)
	// Exists checks if a file or directory exists.
	Exists(ctx context.Context, path string) bool
	// Delete removes a single file.
	Delete(ctx context.Context, path string) error
	// Location returns the full backend location of path, as reported to clients.
	Location(path string) string
	// Ping reports whether the backend is reachable and usable.
	Ping(ctx context.Context) error
}

// DetectMIMEType identifies content from its first bytes.
// Uses http.DetectContentType on magic bytes rather than trusting file
// extensions (prevents spoofing). Empty input yields DefaultMIMEType.
func DetectMIMEType(head []byte) string {
	if len(head) == 0 {
		return DefaultMIMEType
	}
	return http.DetectContentType(head)
}

// sniff wraps r so the first bytes can be inspected without consuming them.
// The returned reader yields the complete original stream.
func sniff(r io.Reader) (io.Reader, string) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen) // short reads are expected for small files
	return br, DetectMIMEType(head)
}

// newFile builds metadata for a stored object at the slash separated rel path.
func newFile(rel, location string, size int64, mimeType string) *File {
	dir, name := path.Split(rel)
	return &File{
		Name:         name,
		Dir:          strings.TrimSuffix(dir, "/"),
		RelativePath: rel,
		Location:     location,
		Size:         size,
		MIMEType:     mimeType,
		Extension:    strings.ToLower(path.Ext(name)),
	}
}

// contextReader fails reads once ctx is done, so uploads that the SDK drives
// from its own goroutines still observe cancellation.
type contextReader struct {
	ctx context.Context
	r   io.Reader
	n   int64
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
