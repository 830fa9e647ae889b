package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// copyBufferSize balances memory usage and syscall overhead.
const copyBufferSize = 32 * 1024

// LocalStorage implements Storage for the local filesystem.
// All operations are confined to baseDir to prevent path traversal attacks.
// Safe for concurrent use: Save creates files exclusively, so two writers can
// never share a destination.
type LocalStorage struct {
	baseDir       string        // Absolute path - all files stored within this directory
	dirPerm       os.FileMode   // Permissions for created directories
	filePerm      os.FileMode   // Permissions for created files
	uploadTimeout time.Duration // Optional timeout to prevent hanging uploads
}

// LocalOption defines a function that configures LocalStorage.
type LocalOption func(*LocalStorage)

// WithLocalUploadTimeout sets the timeout for save operations.
// If not set, relies on context deadline from caller.
func WithLocalUploadTimeout(timeout time.Duration) LocalOption {
	return func(s *LocalStorage) {
		s.uploadTimeout = timeout
	}
}

// WithDirPerm sets permissions for directories created by MkdirAll.
func WithDirPerm(perm os.FileMode) LocalOption {
	return func(s *LocalStorage) {
		s.dirPerm = perm
	}
}

// WithFilePerm sets permissions for files created by Save.
func WithFilePerm(perm os.FileMode) LocalOption {
	return func(s *LocalStorage) {
		s.filePerm = perm
	}
}

// NewLocalStorage creates a new local filesystem storage.
// baseDir is resolved to absolute path and created if it doesn't exist.
func NewLocalStorage(baseDir string, opts ...LocalOption) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	// Must resolve to absolute path for security - prevents relative path confusion
	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	s := &LocalStorage{
		baseDir:  absBaseDir,
		dirPerm:  0755,
		filePerm: 0644,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(absBaseDir, s.dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	return s, nil
}

// BaseDir returns the absolute storage root.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// MkdirAll creates dir and any missing parents.
func (s *LocalStorage) MkdirAll(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	absPath, err := s.resolvePath(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(absPath, s.dirPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}
	return nil
}

// Save streams r into a new file at path.
// The parent directory must exist. The file is created exclusively, so an
// existing file is reported as ErrFileExists and left untouched. Cancellation
// is checked between chunks and partial files are removed on any error.
func (s *LocalStorage) Save(ctx context.Context, r io.Reader, path string) (*File, error) {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}
	if absPath == s.baseDir {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.filePerm)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return nil, fmt.Errorf("%w: %s", ErrFileExists, path)
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, filepath.Dir(path))
		default:
			return nil, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err)
		}
	}

	src, mimeType := sniff(r)
	written, err := copyWithContext(ctx, dst, src)
	if closeErr := dst.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: %v", ErrFailedToWriteFile, closeErr)
	}
	if err != nil {
		_ = os.Remove(absPath) // Clean up partial file
		return nil, err
	}

	return newFile(s.relative(absPath, path), absPath, written, mimeType), nil
}

// Size returns the size of the file at path.
func (s *LocalStorage) Size(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return 0, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	return info.Size(), nil
}

// Delete removes a single file.
// Verifies the target is a file, not a directory, to prevent accidental data loss.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	return nil
}

// Exists checks if a file or directory exists.
// Returns false for invalid paths or on context cancellation.
func (s *LocalStorage) Exists(ctx context.Context, path string) bool {
	if ctx.Err() != nil {
		return false
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return false
	}

	_, err = os.Stat(absPath)
	return err == nil
}

// Location returns the absolute filesystem path for path.
// Invalid paths are returned joined but unresolved; they are rejected by every
// other operation.
func (s *LocalStorage) Location(path string) string {
	absPath, err := s.resolvePath(path)
	if err != nil {
		return filepath.Join(s.baseDir, path)
	}
	return absPath
}

// Ping checks that the storage root is still an accessible directory.
func (s *LocalStorage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.baseDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrStorageUnavailable, s.baseDir)
	}
	return nil
}

// resolvePath validates and resolves a path within the base directory.
// Critical security function that prevents path traversal attacks by ensuring
// all resolved paths stay within baseDir bounds using string prefix checking.
func (s *LocalStorage) resolvePath(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	path = filepath.Clean(filepath.FromSlash(path))
	absPath := filepath.Join(s.baseDir, path)

	absPath, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	// Security check: ensure path stays within baseDir (prevents ../ attacks)
	if !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) && absPath != s.baseDir {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	return absPath, nil
}

// relative converts absPath back to a slash separated path under baseDir.
func (s *LocalStorage) relative(absPath, fallback string) string {
	rel, err := filepath.Rel(s.baseDir, absPath)
	if err != nil {
		return filepath.ToSlash(fallback)
	}
	return filepath.ToSlash(rel)
}

// copyWithContext copies src to dst in fixed-size chunks, checking ctx between
// chunks so large uploads can be abandoned early.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	written := int64(0)
	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			nw, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return written, fmt.Errorf("%w: %v", ErrFailedToWriteFile, writeErr)
			}
			written += int64(nw)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("%w: %v", ErrFailedToReadFile, readErr)
		}
	}
}
