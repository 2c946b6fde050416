package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

// LocalBackend stores blobs as plain files under root/<dir>/<name>.
type LocalBackend struct {
	root string
}

// NewLocalBackend resolves root and creates every namespace directory. An
// error here means the process cannot serve images and should not start.
func NewLocalBackend(root string) (*LocalBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %q: %w", root, err)
	}

	for _, kind := range []domain.BlobKind{domain.BlobKindUser, domain.BlobKindProduct} {
		dir := filepath.Join(abs, kind.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}

	return &LocalBackend{root: abs}, nil
}

func (b *LocalBackend) Root() string {
	return b.root
}

func (b *LocalBackend) Location(dir, name string) string {
	return filepath.Join(b.root, dir, name)
}

func (b *LocalBackend) Write(_ context.Context, dir, name string, data []byte) error {
	return os.WriteFile(b.Location(dir, name), data, 0o644)
}

func (b *LocalBackend) Read(_ context.Context, dir, name string) ([]byte, error) {
	path := b.Location(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlobNotFound, path)
		}
		return nil, err
	}
	return data, nil
}

func (b *LocalBackend) Remove(_ context.Context, dir, name string) error {
	err := os.Remove(b.Location(dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *LocalBackend) Ping(_ context.Context) error {
	info, err := os.Stat(b.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", b.root)
	}
	return nil
}
