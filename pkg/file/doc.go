// Package file stores uploaded documents on a local filesystem or an
// S3-compatible object store.
//
// Both backends implement Storage, which is shaped around streaming ingestion:
// the caller creates a directory, then streams an io.Reader of unknown length
// to a relative path. Save never overwrites an existing object. A taken path is
// reported as ErrFileExists so the caller can pick another name.
//
//	storage, err := file.NewLocalStorage("/var/lib/docvault")
//	if err != nil {
//		return err
//	}
//
//	if err := storage.MkdirAll(ctx, "reports"); err != nil {
//		return err
//	}
//
//	f, err := storage.Save(ctx, body, "reports/q1_20250301T101500Z_3f9c2a1b7d4e.pdf")
//	switch {
//	case errors.Is(err, file.ErrFileExists):
//		// pick another name and retry
//	case err != nil:
//		return err
//	}
//	fmt.Println(f.Location, f.Size, f.MIMEType)
//
// Using S3 storage:
//
//	storage, err := file.NewS3Storage(ctx, file.S3Config{
//		Bucket:      "documents",
//		Region:      "us-east-1",
//		AccessKeyID: "key",
//		SecretKey:   "secret",
//	})
//
// S3Storage uploads through the multipart manager, so bodies do not need a
// known length, and makes each upload conditional on the key being absent.
//
// # Security Considerations
//
//   - LocalStorage confines every path to its base directory
//   - Save creates files with O_EXCL and removes partial files on failure
//   - MIME types are detected from content, never from the extension
//
// # Error Handling
//
// S3-specific errors are mapped to generic file errors for consistency:
//   - NoSuchBucket -> ErrBucketNotFound
//   - NoSuchKey, NotFound -> ErrFileNotFound
//   - PreconditionFailed -> ErrFileExists
//   - AccessDenied -> ErrAccessDenied
package file
