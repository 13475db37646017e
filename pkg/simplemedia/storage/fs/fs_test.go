package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
	fsstorage "github.com/tendant/simple-media/pkg/simplemedia/storage/fs"
)

func TestFSBackend(t *testing.T) {
	baseDir := t.TempDir()
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: baseDir})
	require.NoError(t, err)

	ctx := context.Background()
	key := simplemedia.LocalMediaKey("abcdef123")
	data := "plain text media"

	require.NoError(t, backend.UploadWithParams(ctx, strings.NewReader(data), simplemedia.UploadParams{ObjectKey: key}))

	_, err = os.Stat(filepath.Join(baseDir, "local_content", "ab", "cd", "ef123"))
	require.NoError(t, err)

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.True(t, strings.HasPrefix(meta.ContentType, "text/plain"))

	reader, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, data, string(got))

	require.NoError(t, backend.Delete(ctx, key))
	_, err = backend.Download(ctx, key)
	assert.ErrorIs(t, err, simplemedia.ErrObjectNotFound)

	// Empty shard directories are removed.
	_, err = os.Stat(filepath.Join(baseDir, "local_content"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	err = backend.UploadWithParams(context.Background(), strings.NewReader("x"), simplemedia.UploadParams{ObjectKey: "../outside"})
	assert.Error(t, err)
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := fsstorage.New(fsstorage.Config{})
	assert.Error(t, err)
}
