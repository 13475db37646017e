// Package mediarepo serves local media from storage and fetches, caches and
// serves media owned by other servers. It implements the collaborators the
// download handler dispatches to.
package mediarepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/api"
	"github.com/tendant/simple-media/pkg/simplemedia/metrics"
	"golang.org/x/sync/singleflight"
)

// FetchRecorder observes remote media lookups.
type FetchRecorder interface {
	RecordRemoteFetch(result string, size int64)
}

// Service is the media repository.
type Service struct {
	repository    simplemedia.Repository
	blobStore     simplemedia.BlobStore
	fetcher       simplemedia.Fetcher
	logger        *slog.Logger
	metrics       FetchRecorder
	maxUploadSize int64

	// one remote download per (server, media id) at a time
	inflight singleflight.Group
}

// Option configures a Service
type Option func(*Service)

// WithRepository sets the metadata repository
func WithRepository(repo simplemedia.Repository) Option {
	return func(s *Service) {
		s.repository = repo
	}
}

// WithBlobStore sets the storage backend for local and cached remote media
func WithBlobStore(store simplemedia.BlobStore) Option {
	return func(s *Service) {
		s.blobStore = store
	}
}

// WithFetcher sets the client used to download remote media
func WithFetcher(fetcher simplemedia.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = fetcher
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the remote fetch recorder
func WithMetrics(recorder FetchRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithMaxUploadSize caps the size of locally stored media
func WithMaxUploadSize(size int64) Option {
	return func(s *Service) {
		s.maxUploadSize = size
	}
}

// New creates a media repository. A repository and blob store are required;
// without a fetcher every remote request fails with 502.
func New(options ...Option) (*Service, error) {
	s := &Service{
		logger:        slog.Default(),
		metrics:       noopRecorder{},
		maxUploadSize: 50 << 20,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// StoreLocalMediaRequest describes media to add to the local store.
type StoreLocalMediaRequest struct {
	MediaID    string // generated when empty
	MediaType  string
	UploadName string
	UserID     string
	Body       io.Reader
}

// StoreLocalMedia writes a blob and records it as media owned by this server.
func (s *Service) StoreLocalMedia(ctx context.Context, req StoreLocalMediaRequest) (*simplemedia.LocalMedia, error) {
	mediaID := req.MediaID
	if mediaID == "" {
		mediaID = newFilesystemID()
	}
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	key := simplemedia.LocalMediaKey(mediaID)
	body := &countingReader{r: req.Body, limit: s.maxUploadSize}
	if err := s.blobStore.UploadWithParams(ctx, body, simplemedia.UploadParams{ObjectKey: key, MimeType: mediaType}); err != nil {
		s.removeBlob(ctx, key)
		return nil, &simplemedia.MediaError{MediaID: mediaID, Op: "store", Err: body.uploadError(err)}
	}

	media := &simplemedia.LocalMedia{
		MediaID:     mediaID,
		MediaType:   mediaType,
		MediaLength: body.n,
		UploadName:  req.UploadName,
		UserID:      req.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repository.StoreLocalMedia(ctx, media); err != nil {
		s.removeBlob(ctx, key)
		return nil, &simplemedia.MediaError{MediaID: mediaID, Op: "store", Err: err}
	}

	s.logger.InfoContext(ctx, "Stored local media", "media_id", mediaID, "media_type", mediaType, "media_length", body.n)
	return media, nil
}

// GetLocalMedia responds with media owned by this server.
func (s *Service) GetLocalMedia(w http.ResponseWriter, r *http.Request, mediaID, name string) error {
	ctx := r.Context()

	media, err := s.repository.GetLocalMedia(ctx, mediaID)
	if errors.Is(err, simplemedia.ErrMediaNotFound) {
		api.RespondNotFound(w, r)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load local media %s: %w", mediaID, err)
	}
	if media.Quarantined {
		s.logger.InfoContext(ctx, "Media is quarantined", "media_id", mediaID)
		api.RespondNotFound(w, r)
		return nil
	}

	if name == "" {
		name = media.UploadName
	}
	return s.respondWithBlob(w, r, simplemedia.LocalMediaKey(mediaID), media.MediaType, media.MediaLength, name)
}

// GetRemoteMedia responds with media owned by serverName, downloading and
// caching it first when it is not cached yet.
func (s *Service) GetRemoteMedia(w http.ResponseWriter, r *http.Request, serverName, mediaID, name string) error {
	ctx := r.Context()

	media, err := s.remoteMedia(ctx, serverName, mediaID)
	if err != nil {
		return err
	}
	if media.Quarantined {
		s.logger.InfoContext(ctx, "Media is quarantined", "server_name", serverName, "media_id", mediaID)
		api.RespondNotFound(w, r)
		return nil
	}

	if name == "" {
		name = media.UploadName
	}
	return s.respondWithBlob(w, r, simplemedia.RemoteMediaKey(serverName, media.FilesystemID), media.MediaType, media.MediaLength, name)
}

func (s *Service) remoteMedia(ctx context.Context, serverName, mediaID string) (*simplemedia.RemoteMedia, error) {
	media, err := s.repository.GetCachedRemoteMedia(ctx, serverName, mediaID)
	if err == nil {
		s.metrics.RecordRemoteFetch(metrics.FetchCached, media.MediaLength)
		return media, nil
	}
	if !errors.Is(err, simplemedia.ErrMediaNotFound) {
		return nil, fmt.Errorf("failed to load cached media %s/%s: %w", serverName, mediaID, err)
	}

	// The download outlives any single caller sharing it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.inflight.Do(serverName+"/"+mediaID, func() (interface{}, error) {
		return s.downloadRemote(fetchCtx, serverName, mediaID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*simplemedia.RemoteMedia), nil
}

func (s *Service) downloadRemote(ctx context.Context, serverName, mediaID string) (*simplemedia.RemoteMedia, error) {
	if s.fetcher == nil {
		return nil, s.fetchFailed(ctx, serverName, mediaID, errors.New("remote fetching is not configured"))
	}

	fetched, err := s.fetcher.Fetch(ctx, serverName, mediaID)
	if err != nil {
		return nil, s.fetchFailed(ctx, serverName, mediaID, err)
	}
	defer fetched.Body.Close()

	filesystemID := newFilesystemID()
	key := simplemedia.RemoteMediaKey(serverName, filesystemID)
	body := &countingReader{r: fetched.Body, limit: s.maxUploadSize}
	if err := s.blobStore.UploadWithParams(ctx, body, simplemedia.UploadParams{ObjectKey: key, MimeType: fetched.MediaType}); err != nil {
		s.removeBlob(ctx, key)
		return nil, s.fetchFailed(ctx, serverName, mediaID, body.uploadError(err))
	}

	media := &simplemedia.RemoteMedia{
		ServerName:   serverName,
		MediaID:      mediaID,
		FilesystemID: filesystemID,
		MediaType:    fetched.MediaType,
		MediaLength:  body.n,
		UploadName:   fetched.UploadName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repository.StoreCachedRemoteMedia(ctx, media); err != nil {
		s.removeBlob(ctx, key)
		return nil, s.fetchFailed(ctx, serverName, mediaID, fmt.Errorf("failed to cache remote media: %w", err))
	}

	s.metrics.RecordRemoteFetch(metrics.FetchOK, body.n)
	s.logger.InfoContext(ctx, "Cached remote media",
		"server_name", serverName,
		"media_id", mediaID,
		"filesystem_id", filesystemID,
		"media_length", body.n,
	)
	return media, nil
}

// fetchFailed logs a failed download and maps it to the error sent to the client.
func (s *Service) fetchFailed(ctx context.Context, serverName, mediaID string, err error) error {
	err = &simplemedia.MediaError{ServerName: serverName, MediaID: mediaID, Op: "fetch", Err: err}

	switch {
	case errors.Is(err, simplemedia.ErrRemoteNotFound):
		s.metrics.RecordRemoteFetch(metrics.FetchNotFound, 0)
		s.logger.InfoContext(ctx, "Remote media not found", "server_name", serverName, "media_id", mediaID)
		return api.NewError(http.StatusNotFound, api.CodeNotFound, "Not found")
	case errors.Is(err, simplemedia.ErrTooLarge):
		s.metrics.RecordRemoteFetch(metrics.FetchTooLarge, 0)
		s.logger.WarnContext(ctx, "Remote media too large", "server_name", serverName, "media_id", mediaID)
		return api.NewError(http.StatusBadGateway, api.CodeTooLarge, "Remote media is too large")
	default:
		s.metrics.RecordRemoteFetch(metrics.FetchFailed, 0)
		s.logger.WarnContext(ctx, "Failed to fetch remote media", "server_name", serverName, "media_id", mediaID, "error", err)
		return api.NewError(http.StatusBadGateway, api.CodeUnknown, "Failed to fetch remote media")
	}
}

func (s *Service) respondWithBlob(w http.ResponseWriter, r *http.Request, key, mediaType string, length int64, name string) error {
	ctx := r.Context()

	meta, err := s.blobStore.GetObjectMeta(ctx, key)
	if err != nil {
		return s.blobUnavailable(w, r, key, err)
	}
	if length <= 0 {
		length = meta.Size
	}
	if mediaType == "" {
		mediaType = meta.ContentType
	}

	reader, err := s.blobStore.Download(ctx, key)
	if err != nil {
		return s.blobUnavailable(w, r, key, err)
	}
	defer reader.Close()

	setFileHeaders(w, mediaType, length, name)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, reader); err != nil {
		// Headers are already sent; all we can do is log.
		s.logger.WarnContext(ctx, "Failed to stream media", "key", key, "error", err)
	}
	return nil
}

func (s *Service) blobUnavailable(w http.ResponseWriter, r *http.Request, key string, err error) error {
	if errors.Is(err, simplemedia.ErrObjectNotFound) {
		s.logger.WarnContext(r.Context(), "Media metadata exists but blob is missing", "key", key)
		api.RespondNotFound(w, r)
		return nil
	}
	return fmt.Errorf("failed to open media %s: %w", key, err)
}

// removeBlob deletes a blob whose metadata could not be recorded.
func (s *Service) removeBlob(ctx context.Context, key string) {
	if err := s.blobStore.Delete(ctx, key); err != nil && !errors.Is(err, simplemedia.ErrObjectNotFound) {
		s.logger.WarnContext(ctx, "Failed to remove orphaned blob", "key", key, "error", err)
	}
}

func newFilesystemID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// countingReader counts bytes read and fails with ErrTooLarge past limit
// when limit is positive. tooLarge stays set once the body overflowed, here
// or in the reader it wraps.
type countingReader struct {
	r        io.Reader
	n        int64
	limit    int64
	tooLarge bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.limit > 0 && c.n > c.limit {
		c.tooLarge = true
		return n, simplemedia.ErrTooLarge
	}
	if errors.Is(err, simplemedia.ErrTooLarge) {
		c.tooLarge = true
	}
	return n, err
}

// uploadError restores ErrTooLarge when a blob store reported the overflow
// without wrapping it.
func (c *countingReader) uploadError(err error) error {
	if c.tooLarge && !errors.Is(err, simplemedia.ErrTooLarge) {
		return fmt.Errorf("%w: %v", simplemedia.ErrTooLarge, err)
	}
	return err
}

type noopRecorder struct{}

func (noopRecorder) RecordRemoteFetch(string, int64) {}
