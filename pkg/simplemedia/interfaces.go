package simplemedia

import (
	"context"
	"io"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for media metadata persistence.
// Lookups return ErrMediaNotFound when no row exists.
type Repository interface {
	StoreLocalMedia(ctx context.Context, media *LocalMedia) error
	GetLocalMedia(ctx context.Context, mediaID string) (*LocalMedia, error)

	StoreCachedRemoteMedia(ctx context.Context, media *RemoteMedia) error
	GetCachedRemoteMedia(ctx context.Context, serverName, mediaID string) (*RemoteMedia, error)
}

// Fetcher downloads media from the server that owns it.
type Fetcher interface {
	Fetch(ctx context.Context, serverName, mediaID string) (*FetchedMedia, error)
}
