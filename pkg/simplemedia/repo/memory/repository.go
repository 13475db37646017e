package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Repository is an in-memory implementation of simplemedia.Repository
type Repository struct {
	mu     sync.RWMutex
	local  map[string]simplemedia.LocalMedia
	remote map[remoteKey]simplemedia.RemoteMedia
}

type remoteKey struct {
	serverName string
	mediaID    string
}

// New creates a new in-memory repository
func New() simplemedia.Repository {
	return &Repository{
		local:  make(map[string]simplemedia.LocalMedia),
		remote: make(map[remoteKey]simplemedia.RemoteMedia),
	}
}

func (r *Repository) StoreLocalMedia(ctx context.Context, media *simplemedia.LocalMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.local[media.MediaID] = *media
	return nil
}

func (r *Repository) GetLocalMedia(ctx context.Context, mediaID string) (*simplemedia.LocalMedia, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	media, ok := r.local[mediaID]
	if !ok {
		return nil, simplemedia.ErrMediaNotFound
	}
	return &media, nil
}

func (r *Repository) StoreCachedRemoteMedia(ctx context.Context, media *simplemedia.RemoteMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remote[remoteKey{media.ServerName, media.MediaID}] = *media
	return nil
}

func (r *Repository) GetCachedRemoteMedia(ctx context.Context, serverName, mediaID string) (*simplemedia.RemoteMedia, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	media, ok := r.remote[remoteKey{serverName, mediaID}]
	if !ok {
		return nil, simplemedia.ErrMediaNotFound
	}
	return &media, nil
}
