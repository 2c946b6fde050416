package filestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newLocalStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")
	backend, err := NewLocalBackend(root)
	require.NoError(t, err)
	return New(backend, discard), root
}

func TestNewLocalBackend_CreatesNamespaces(t *testing.T) {
	_, root := newLocalStore(t)

	for _, dir := range []string{"users", "products"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestNewLocalBackend_FailsWhenRootIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewLocalBackend(file)
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	s, root := newLocalStore(t)
	ctx := context.Background()
	data := []byte{0xff, 0xd8, 0xff, 0x00, 0x01}

	id, err := s.Store(ctx, domain.BlobKindProduct, 7, data, "photo.jpg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "product_7_"), id)
	assert.True(t, strings.HasSuffix(id, ".jpg"), id)
	assert.FileExists(t, filepath.Join(root, "products", id))

	got, err := s.Load(ctx, domain.BlobKindProduct, id)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_NamesAreUnique(t *testing.T) {
	s, _ := newLocalStore(t)
	ctx := context.Background()

	a, err := s.Store(ctx, domain.BlobKindUser, 1, []byte("a"), "a.png")
	require.NoError(t, err)
	b, err := s.Store(ctx, domain.BlobKindUser, 1, []byte("b"), "a.png")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_Extension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", ".jpg"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"", ""},
		{"dir.d/file", ""},
	}

	s, _ := newLocalStore(t)
	s.newID = func() string { return "fixed" }

	for _, tc := range tests {
		id, err := s.Store(context.Background(), domain.BlobKindUser, 3, []byte("x"), tc.filename)
		require.NoError(t, err)
		assert.Equal(t, "user_3_fixed"+tc.want, id, tc.filename)
	}
}

func TestStore_EmptyDataIsNoop(t *testing.T) {
	s, root := newLocalStore(t)

	id, err := s.Store(context.Background(), domain.BlobKindUser, 1, nil, "a.jpg")
	require.NoError(t, err)
	assert.Empty(t, id)

	entries, err := os.ReadDir(filepath.Join(root, "users"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_OverwritesSameName(t *testing.T) {
	s, _ := newLocalStore(t)
	s.newID = func() string { return "same" }
	ctx := context.Background()

	id, err := s.Store(ctx, domain.BlobKindUser, 1, []byte("first"), "a.jpg")
	require.NoError(t, err)
	_, err = s.Store(ctx, domain.BlobKindUser, 1, []byte("second"), "a.jpg")
	require.NoError(t, err)

	got, err := s.Load(ctx, domain.BlobKindUser, id)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestLoad_Missing(t *testing.T) {
	s, _ := newLocalStore(t)

	for _, id := range []string{"user_1_nope.jpg", "", "../secret", "a/b"} {
		_, err := s.Load(context.Background(), domain.BlobKindUser, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
		assert.ErrorIs(t, err, domain.ErrBlobNotFound, id)
	}
}

func TestLoad_WrongNamespace(t *testing.T) {
	s, _ := newLocalStore(t)
	id, err := s.Store(context.Background(), domain.BlobKindUser, 1, []byte("x"), "a.jpg")
	require.NoError(t, err)

	_, err = s.Load(context.Background(), domain.BlobKindProduct, id)
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
}

func TestDelete_IsIdempotent(t *testing.T) {
	s, root := newLocalStore(t)
	ctx := context.Background()

	id, err := s.Store(ctx, domain.BlobKindProduct, 2, []byte("x"), "a.png")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, domain.BlobKindProduct, id))
	assert.NoFileExists(t, filepath.Join(root, "products", id))
	require.NoError(t, s.Delete(ctx, domain.BlobKindProduct, id))
	require.NoError(t, s.Delete(ctx, domain.BlobKindProduct, "never-existed.jpg"))
	require.NoError(t, s.Delete(ctx, domain.BlobKindProduct, "../../etc/passwd"))
}

func TestStore_ConcurrentDistinctBlobs(t *testing.T) {
	s, _ := newLocalStore(t)
	ctx := context.Background()

	const n = 32
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.Store(ctx, domain.BlobKindProduct, int64(i), []byte(fmt.Sprintf("blob-%d", i)), "x.bin")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		got, err := s.Load(ctx, domain.BlobKindProduct, id)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("blob-%d", i), string(got))
	}
}

func TestPing(t *testing.T) {
	s, root := newLocalStore(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(root))
	assert.Error(t, s.Ping(context.Background()))
}
