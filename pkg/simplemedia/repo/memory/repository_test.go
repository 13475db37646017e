package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

func TestRepository_LocalMedia(t *testing.T) {
	repo := New()
	ctx := context.Background()

	_, err := repo.GetLocalMedia(ctx, "abc123")
	assert.ErrorIs(t, err, simplemedia.ErrMediaNotFound)

	media := &simplemedia.LocalMedia{
		MediaID:     "abc123",
		MediaType:   "image/png",
		MediaLength: 42,
		UploadName:  "cat.png",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.StoreLocalMedia(ctx, media))

	got, err := repo.GetLocalMedia(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, *media, *got)

	// Returned values are copies.
	got.Quarantined = true
	again, err := repo.GetLocalMedia(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, again.Quarantined)
}

func TestRepository_RemoteMedia(t *testing.T) {
	repo := New()
	ctx := context.Background()

	media := &simplemedia.RemoteMedia{
		ServerName:   "other.example.org",
		MediaID:      "xyz789",
		FilesystemID: "f00dbeef",
		MediaType:    "text/plain",
	}
	require.NoError(t, repo.StoreCachedRemoteMedia(ctx, media))

	got, err := repo.GetCachedRemoteMedia(ctx, "other.example.org", "xyz789")
	require.NoError(t, err)
	assert.Equal(t, "f00dbeef", got.FilesystemID)

	_, err = repo.GetCachedRemoteMedia(ctx, "third.example.org", "xyz789")
	assert.ErrorIs(t, err, simplemedia.ErrMediaNotFound)
}
