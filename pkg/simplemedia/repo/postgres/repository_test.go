package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

func TestPostgresRepository_LocalMedia(t *testing.T) {
	RunTest(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()

		_, err := repo.GetLocalMedia(ctx, "missing")
		assert.ErrorIs(t, err, simplemedia.ErrMediaNotFound)

		media := &simplemedia.LocalMedia{
			MediaID:     "abc123",
			MediaType:   "image/png",
			MediaLength: 1024,
			UploadName:  "cat.png",
			UserID:      "@alice:matrix.example.org",
			CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, repo.StoreLocalMedia(ctx, media))

		got, err := repo.GetLocalMedia(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, media.MediaType, got.MediaType)
		assert.Equal(t, media.MediaLength, got.MediaLength)
		assert.Equal(t, media.UploadName, got.UploadName)
		assert.True(t, media.CreatedAt.Equal(got.CreatedAt))
	})
}

func TestPostgresRepository_RemoteMedia(t *testing.T) {
	RunTest(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()

		media := &simplemedia.RemoteMedia{
			ServerName:   "other.example.org",
			MediaID:      "xyz789",
			FilesystemID: "f00dbeef",
			MediaType:    "text/plain",
			MediaLength:  12,
			CreatedAt:    time.Now().UTC(),
		}
		require.NoError(t, repo.StoreCachedRemoteMedia(ctx, media))

		// Re-caching replaces the filesystem id.
		media.FilesystemID = "cafebabe"
		require.NoError(t, repo.StoreCachedRemoteMedia(ctx, media))

		got, err := repo.GetCachedRemoteMedia(ctx, "other.example.org", "xyz789")
		require.NoError(t, err)
		assert.Equal(t, "cafebabe", got.FilesystemID)

		_, err = repo.GetCachedRemoteMedia(ctx, "other.example.org", "nope")
		assert.ErrorIs(t, err, simplemedia.ErrMediaNotFound)
	})
}
