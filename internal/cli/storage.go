package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrymomot/docvault/pkg/file"
)

// newStorage builds the backend selected by STORAGE_DRIVER. The local driver
// is rooted at DOC_LOCATION_STORE; the S3 driver uses S3_PREFIX as its root.
func newStorage(ctx context.Context, cfg Config) (file.Storage, error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver)); driver {
	case "", DriverLocal:
		storage, err := file.NewLocalStorage(cfg.Ingest.StorageRoot)
		if err != nil {
			return nil, err
		}
		return storage, nil

	case DriverS3:
		opts := []file.S3Option{file.WithS3UploadTimeout(cfg.S3.UploadTimeout)}
		if cfg.S3.PartSize > 0 {
			opts = append(opts, file.WithS3PartSize(cfg.S3.PartSize))
		}
		storage, err := file.NewS3Storage(ctx, file.S3Config{
			Bucket:         cfg.S3.Bucket,
			Region:         cfg.S3.Region,
			AccessKeyID:    cfg.S3.AccessKeyID,
			SecretKey:      cfg.S3.SecretKey,
			Endpoint:       cfg.S3.Endpoint,
			Prefix:         cfg.S3.Prefix,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		}, opts...)
		if err != nil {
			return nil, err
		}
		return storage, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageDriver, driver)
	}
}
