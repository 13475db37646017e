package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-media/pkg/simplemedia/api"
	"github.com/tendant/simple-media/pkg/simplemedia/download"
)

// HTTPServer exposes the media repository over the client-server API.
type HTTPServer struct {
	media    download.MediaRepository
	servers  download.ServerNameChecker
	logger   *slog.Logger
	recorder download.Recorder
	gatherer prometheus.Gatherer
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(media download.MediaRepository, servers download.ServerNameChecker, logger *slog.Logger, recorder download.Recorder) *HTTPServer {
	return &HTTPServer{
		media:    media,
		servers:  servers,
		logger:   logger,
		recorder: recorder,
	}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	downloads := download.New(s.media, s.servers,
		download.WithLogger(s.logger),
		download.WithMetrics(s.recorder),
	)
	for _, version := range []string{"r0", "v3"} {
		r.Route("/_matrix/media/"+version, func(r chi.Router) {
			r.Method(http.MethodGet, "/download/*", downloads)
			r.Options("/download/*", handleOptions)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.SetCORSHeaders(w)
		api.Respond(w, r, api.NewError(http.StatusNotFound, api.CodeUnrecognized, "Unrecognized request"))
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	download.SetSecurityHeaders(w)
	w.WriteHeader(http.StatusOK)
}
