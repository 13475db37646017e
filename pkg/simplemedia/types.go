package simplemedia

import (
	"io"
	"time"
)

// MediaLocator identifies a media item requested by a client.
// ServerName and MediaID are never empty once parsed. FileName is the
// optional name suggested by the request path; "" means none.
type MediaLocator struct {
	ServerName string
	MediaID    string
	FileName   string
}

// LocalMedia describes content owned by this server.
type LocalMedia struct {
	MediaID     string
	MediaType   string
	MediaLength int64
	UploadName  string
	UserID      string
	CreatedAt   time.Time
	Quarantined bool
}

// RemoteMedia describes cached content fetched from another server.
type RemoteMedia struct {
	ServerName   string
	MediaID      string
	FilesystemID string
	MediaType    string
	MediaLength  int64
	UploadName   string
	CreatedAt    time.Time
	Quarantined  bool
}

// FetchedMedia is the result of a federation download. Callers must close Body.
type FetchedMedia struct {
	Body       io.ReadCloser
	MediaType  string
	Length     int64 // -1 when unknown
	UploadName string
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
