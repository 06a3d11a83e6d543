package di

import (
	"context"
	"fmt"

	"kanban_backend/internal/platform/config"
	"kanban_backend/internal/platform/storage"
)

// NewImageStore creates the profile image store selected by STORAGE_DRIVER.
// uploadDir is non-empty only for local storage and is served under /uploads.
func NewImageStore(ctx context.Context, cfg config.Config) (store storage.ImageStore, uploadDir string, err error) {
	switch cfg.Storage.Driver {
	case "s3":
		s3, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("create s3 store: %w", err)
		}
		return s3, "", nil
	case "local", "":
		local := storage.NewLocalStore(cfg.UploadDir)
		return local, local.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
