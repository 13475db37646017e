package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "local_content/ab/c1/23"
	testData := "Hello, World! This is test data."

	t.Run("Upload", func(t *testing.T) {
		err := backend.UploadWithParams(ctx, strings.NewReader(testData), simplemedia.UploadParams{ObjectKey: testKey})
		assert.NoError(t, err)
	})

	t.Run("GetObjectMeta", func(t *testing.T) {
		meta, err := backend.GetObjectMeta(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testData, string(data))
	})

	t.Run("UploadWithParams", func(t *testing.T) {
		key := "remote_content/other.org/xy/z7/89"
		err := backend.UploadWithParams(ctx, strings.NewReader(testData), simplemedia.UploadParams{
			ObjectKey: key,
			MimeType:  "image/png",
		})
		require.NoError(t, err)

		meta, err := backend.GetObjectMeta(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "image/png", meta.ContentType)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		_, err := backend.GetObjectMeta(ctx, testKey)
		assert.ErrorIs(t, err, simplemedia.ErrObjectNotFound)

		_, err = backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, simplemedia.ErrObjectNotFound)

		assert.ErrorIs(t, backend.Delete(ctx, testKey), simplemedia.ErrObjectNotFound)
	})
}
