// Package download implements the media download endpoint. It applies the
// response safety headers and routes each request to the local-serving or
// remote-fetch collaborator.
package download

import (
	"log/slog"
	"net/http"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/api"
)

//go:generate mockgen -destination=mocks/mock_download.go -package=mocks . MediaRepository,ServerNameChecker

const (
	contentSecurityPolicy = "sandbox;" +
		" default-src 'none';" +
		" script-src 'none';" +
		" plugin-types application/pdf;" +
		" style-src 'unsafe-inline';" +
		" media-src 'self';" +
		" object-src 'self';"

	// Limited non-standard form of CSP for IE11
	legacyContentSecurityPolicy = "sandbox;"
)

// Routing decisions reported to the Recorder
const (
	DecisionLocal    = "local"
	DecisionRemote   = "remote"
	DecisionRejected = "rejected"
)

// MediaRepository serves media once the dispatcher has routed the request.
// Both methods own the response from the moment they are called.
type MediaRepository interface {
	GetLocalMedia(w http.ResponseWriter, r *http.Request, mediaID, name string) error
	GetRemoteMedia(w http.ResponseWriter, r *http.Request, serverName, mediaID, name string) error
}

// ServerNameChecker reports whether a server name belongs to this server.
type ServerNameChecker interface {
	IsMine(serverName string) bool
}

// Recorder observes routing decisions.
type Recorder interface {
	RecordDispatch(decision string)
}

// MediaIDParser extracts the media locator from a request. Errors are
// returned to the client as-is.
type MediaIDParser func(r *http.Request) (simplemedia.MediaLocator, error)

// Handler is the download endpoint. It holds no per-request state and is
// safe for concurrent use.
type Handler struct {
	media    MediaRepository
	servers  ServerNameChecker
	parse    MediaIDParser
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Handler
type Option func(*Handler)

// WithLogger sets the logger used for rejected remote requests.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics sets the recorder notified of each routing decision.
func WithMetrics(recorder Recorder) Option {
	return func(h *Handler) {
		if recorder != nil {
			h.recorder = recorder
		}
	}
}

// WithMediaIDParser replaces api.ParseMediaID.
func WithMediaIDParser(parse MediaIDParser) Option {
	return func(h *Handler) {
		if parse != nil {
			h.parse = parse
		}
	}
}

// New creates a download Handler.
func New(media MediaRepository, servers ServerNameChecker, opts ...Option) *Handler {
	h := &Handler{
		media:    media,
		servers:  servers,
		parse:    api.ParseMediaID,
		logger:   slog.Default(),
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.Handler(h.Serve).ServeHTTP(w, r)
}

// Serve handles one download request. The security headers are set before
// anything else so every response, including errors, carries them.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) error {
	SetSecurityHeaders(w)

	loc, err := h.parse(r)
	if err != nil {
		return err
	}

	if h.servers.IsMine(loc.ServerName) {
		h.recorder.RecordDispatch(DecisionLocal)
		return h.media.GetLocalMedia(w, r, loc.MediaID, loc.FileName)
	}

	allowRemote, err := api.ParseBoolean(r, "allow_remote", true)
	if err != nil {
		return err
	}
	if !allowRemote {
		// Reject before any remote fetch is set up.
		h.logger.InfoContext(r.Context(), "Rejecting request for remote media due to allow_remote",
			"server_name", loc.ServerName,
			"media_id", loc.MediaID,
		)
		h.recorder.RecordDispatch(DecisionRejected)
		api.RespondNotFound(w, r)
		return nil
	}

	h.recorder.RecordDispatch(DecisionRemote)
	return h.media.GetRemoteMedia(w, r, loc.ServerName, loc.MediaID, loc.FileName)
}

// SetSecurityHeaders applies the cross-origin and content security policy
// every download response carries.
func SetSecurityHeaders(w http.ResponseWriter) {
	api.SetCORSHeaders(w)
	api.SetCORPHeaders(w)
	h := w.Header()
	h.Set("Content-Security-Policy", contentSecurityPolicy)
	h.Set("X-Content-Security-Policy", legacyContentSecurityPolicy)
	h.Set("Referrer-Policy", "no-referrer")
}

type noopRecorder struct{}

func (noopRecorder) RecordDispatch(string) {}
