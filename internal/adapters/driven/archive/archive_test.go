package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

func TestFSArchive_PutGetList(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFSArchive(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "raw/vision/2026-02-10/b.json", []byte(`{"b":1}`)))
	require.NoError(t, a.Put(ctx, "raw/vision/2026-02-10/a.json", []byte(`{"a":1}`)))
	require.NoError(t, a.Put(ctx, "analysis/evening/2026-02-10-1.json", []byte(`{}`)))

	data, err := a.Get(ctx, "raw/vision/2026-02-10/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "raw", "vision", "2026-02-10", "a.json"))
	assert.NoError(t, err)

	keys, err := a.List(ctx, "raw/")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw/vision/2026-02-10/a.json", "raw/vision/2026-02-10/b.json"}, keys)

	all, err := a.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFSArchive_PutReplaces(t *testing.T) {
	a, err := NewFSArchive(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "k.json", []byte("1")))
	require.NoError(t, a.Put(ctx, "k.json", []byte("2")))

	data, err := a.Get(ctx, "k.json")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestFSArchive_Errors(t *testing.T) {
	a, err := NewFSArchive(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = a.Get(ctx, "missing.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, key := range []string{"", "../x.json", "/abs.json"} {
		assert.ErrorIs(t, a.Put(ctx, key, []byte("x")), domain.ErrInvalidInput, key)
	}
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), S3Config{Endpoint: "localhost:9000"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMapS3Error(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, mapS3Error("k", notFound), domain.ErrNotFound)

	other := errors.New("connection refused")
	err := mapS3Error("k", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
