package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/minio/minio-go/v7"
)

// minioAPI is the subset of *minio.Client the backend uses, so tests can run
// without a MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}

func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}

func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

// MinioBackend stores blobs as objects named "<dir>/<name>" in one bucket.
type MinioBackend struct {
	api    minioAPI
	bucket string
}

func NewMinioBackend(ctx context.Context, client *minio.Client, bucket string) (*MinioBackend, error) {
	return newMinioBackend(ctx, minioClientWrapper{c: client}, bucket)
}

func newMinioBackend(ctx context.Context, api minioAPI, bucket string) (*MinioBackend, error) {
	b := &MinioBackend{api: api, bucket: bucket}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return b, nil
}

func (b *MinioBackend) Location(dir, name string) string {
	return b.bucket + "/" + dir + "/" + name
}

func (b *MinioBackend) Write(ctx context.Context, dir, name string, data []byte) error {
	_, err := b.api.PutObject(ctx, b.bucket, dir+"/"+name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (b *MinioBackend) Read(ctx context.Context, dir, name string) ([]byte, error) {
	obj, err := b.api.GetObject(ctx, b.bucket, dir+"/"+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, b.readErr(dir, name, err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; a missing key only shows up on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, b.readErr(dir, name, err)
	}
	return data, nil
}

func (b *MinioBackend) Remove(ctx context.Context, dir, name string) error {
	err := b.api.RemoveObject(ctx, b.bucket, dir+"/"+name, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (b *MinioBackend) Ping(ctx context.Context) error {
	ok, err := b.api.BucketExists(ctx, b.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", b.bucket)
	}
	return nil
}

func (b *MinioBackend) readErr(dir, name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", domain.ErrBlobNotFound, b.Location(dir, name))
	}
	return fmt.Errorf("get object: %w", err)
}
