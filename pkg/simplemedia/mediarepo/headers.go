package mediarepo

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Media types browsers may render inline. Everything else is served as an
// attachment.
var inlineContentTypes = map[string]bool{
	"text/css":            true,
	"text/plain":          true,
	"text/csv":            true,
	"application/json":    true,
	"application/ld+json": true,
	"image/jpeg":          true,
	"image/gif":           true,
	"image/png":           true,
	"image/apng":          true,
	"image/webp":          true,
	"image/avif":          true,
	"video/mp4":           true,
	"video/webm":          true,
	"video/ogg":           true,
	"video/quicktime":     true,
	"audio/mp4":           true,
	"audio/webm":          true,
	"audio/aac":           true,
	"audio/mpeg":          true,
	"audio/ogg":           true,
	"audio/wave":          true,
	"audio/wav":           true,
	"audio/x-wav":         true,
	"audio/x-pn-wav":      true,
	"audio/flac":          true,
	"audio/x-flac":        true,
}

func setFileHeaders(w http.ResponseWriter, mediaType string, length int64, name string) {
	h := w.Header()

	if strings.HasPrefix(strings.ToLower(mediaType), "text/") && !strings.Contains(strings.ToLower(mediaType), "charset") {
		mediaType += "; charset=UTF-8"
	}
	h.Set("Content-Type", mediaType)
	h.Set("Content-Disposition", contentDisposition(mediaType, name))

	if length > 0 {
		h.Set("Content-Length", strconv.FormatInt(length, 10))
	}

	// Media never changes once stored.
	h.Set("Cache-Control", "public,max-age=86400,s-maxage=86400")
}

func contentDisposition(mediaType, name string) string {
	disposition := "attachment"
	if base, _, err := mime.ParseMediaType(mediaType); err == nil && inlineContentTypes[base] {
		disposition = "inline"
	}

	if name == "" {
		return disposition
	}
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": name}); v != "" {
		return v
	}
	return disposition
}
