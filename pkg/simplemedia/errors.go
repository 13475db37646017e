package simplemedia

import (
	"errors"
	"fmt"
)

var (
	// ErrMediaNotFound indicates no metadata exists for the requested media
	ErrMediaNotFound = errors.New("media not found")

	// ErrObjectNotFound indicates the blob store has no object under the key
	ErrObjectNotFound = errors.New("object not found")

	// ErrTooLarge indicates media exceeded the configured size limit
	ErrTooLarge = errors.New("media too large")

	// ErrRemoteNotFound indicates the owning server reported the media missing
	ErrRemoteNotFound = errors.New("remote media not found")
)

// MediaError records a failed operation on a single media item.
type MediaError struct {
	ServerName string
	MediaID    string
	Op         string
	Err        error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media operation %s failed for %s/%s: %v", e.Op, e.ServerName, e.MediaID, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}
