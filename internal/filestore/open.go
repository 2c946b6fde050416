package filestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ErlanBelekov/campus-marketplace/config"
)

// Open builds the FileStore selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*FileStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		backend, err := NewMinioBackend(ctx, client, cfg.MinioBucket)
		if err != nil {
			return nil, err
		}
		logger.Info("blob storage ready", "backend", "minio", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
		return New(backend, logger), nil
	default:
		backend, err := NewLocalBackend(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		logger.Info("blob storage ready", "backend", "local", "root", backend.Root())
		return New(backend, logger), nil
	}
}
