package download_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/api"
	"github.com/tendant/simple-media/pkg/simplemedia/download"
	"github.com/tendant/simple-media/pkg/simplemedia/download/mocks"
	"github.com/tendant/simple-media/pkg/simplemedia/identity"
	"go.uber.org/mock/gomock"
)

var expectedHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Cross-Origin-Resource-Policy": "cross-origin",
	"Content-Security-Policy":      "sandbox; default-src 'none'; script-src 'none'; plugin-types application/pdf; style-src 'unsafe-inline'; media-src 'self'; object-src 'self';",
	"X-Content-Security-Policy":    "sandbox;",
	"Referrer-Policy":              "no-referrer",
}

// recordingHandler keeps every log record so tests can assert on them.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) attrs(i int) map[string]string {
	out := map[string]string{}
	h.records[i].Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

type countingRecorder struct {
	decisions []string
}

func (c *countingRecorder) RecordDispatch(decision string) {
	c.decisions = append(c.decisions, decision)
}

type fixture struct {
	media    *mocks.MockMediaRepository
	logs     *recordingHandler
	recorder *countingRecorder
	router   http.Handler
}

func setupDownloadTest(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		media:    mocks.NewMockMediaRepository(ctrl),
		logs:     &recordingHandler{},
		recorder: &countingRecorder{},
	}

	h := download.New(f.media, identity.New("matrix.example.org", "example.org"),
		download.WithLogger(slog.New(f.logs)),
		download.WithMetrics(f.recorder),
	)
	r := chi.NewRouter()
	r.Get("/_matrix/media/v3/download/*", h.ServeHTTP)
	f.router = r
	return f
}

func (f *fixture) do(target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func assertSecurityHeaders(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	for name, value := range expectedHeaders {
		assert.Equal(t, value, w.Header().Get(name), name)
	}
}

func TestDownload_LocalMedia(t *testing.T) {
	f := setupDownloadTest(t)
	f.media.EXPECT().
		GetLocalMedia(gomock.Any(), gomock.Any(), "abc123", "").
		DoAndReturn(func(w http.ResponseWriter, r *http.Request, mediaID, name string) error {
			w.WriteHeader(http.StatusOK)
			return nil
		})

	w := f.do("/_matrix/media/v3/download/matrix.example.org/abc123")

	assert.Equal(t, http.StatusOK, w.Code)
	assertSecurityHeaders(t, w)
	assert.Equal(t, []string{download.DecisionLocal}, f.recorder.decisions)
	assert.Empty(t, f.logs.records)
}

func TestDownload_LocalMediaAliasWithFileName(t *testing.T) {
	f := setupDownloadTest(t)
	f.media.EXPECT().GetLocalMedia(gomock.Any(), gomock.Any(), "abc123", "cat.png").Return(nil)

	w := f.do("/_matrix/media/v3/download/example.org/abc123/cat.png?allow_remote=false")

	assertSecurityHeaders(t, w)
	assert.Equal(t, []string{download.DecisionLocal}, f.recorder.decisions)
}

func TestDownload_RemoteMediaDefaultAllowed(t *testing.T) {
	f := setupDownloadTest(t)
	f.media.EXPECT().GetRemoteMedia(gomock.Any(), gomock.Any(), "other.example.org", "xyz789", "").Return(nil)

	w := f.do("/_matrix/media/v3/download/other.example.org/xyz789")

	assertSecurityHeaders(t, w)
	assert.Equal(t, []string{download.DecisionRemote}, f.recorder.decisions)
}

func TestDownload_RemoteMediaExplicitlyAllowed(t *testing.T) {
	f := setupDownloadTest(t)
	f.media.EXPECT().GetRemoteMedia(gomock.Any(), gomock.Any(), "other.example.org", "xyz789", "doc.pdf").Return(nil)

	f.do("/_matrix/media/v3/download/other.example.org/xyz789/doc.pdf?allow_remote=true")
}

func TestDownload_RemoteMediaDisallowed(t *testing.T) {
	f := setupDownloadTest(t)
	// No expectations: any collaborator call fails the test.

	w := f.do("/_matrix/media/v3/download/other.example.org/xyz789?allow_remote=false")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), api.CodeNotFound)
	assertSecurityHeaders(t, w)

	require.Len(t, f.logs.records, 1)
	assert.Equal(t, slog.LevelInfo, f.logs.records[0].Level)
	attrs := f.logs.attrs(0)
	assert.Equal(t, "other.example.org", attrs["server_name"])
	assert.Equal(t, "xyz789", attrs["media_id"])
	assert.Equal(t, []string{download.DecisionRejected}, f.recorder.decisions)
}

func TestDownload_InvalidAllowRemote(t *testing.T) {
	f := setupDownloadTest(t)

	w := f.do("/_matrix/media/v3/download/other.example.org/xyz789?allow_remote=maybe")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), api.CodeInvalidParam)
	assertSecurityHeaders(t, w)
	assert.Empty(t, f.recorder.decisions)
}

func TestDownload_MalformedLocator(t *testing.T) {
	ctrl := gomock.NewController(t)
	media := mocks.NewMockMediaRepository(ctrl)
	servers := mocks.NewMockServerNameChecker(ctrl)
	// Neither collaborator may be consulted once parsing fails.

	h := download.New(media, servers)
	r := chi.NewRouter()
	r.Get("/_matrix/media/v3/download/*", h.ServeHTTP)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/_matrix/media/v3/download/other.example.org", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), api.CodeUnknown)
	assertSecurityHeaders(t, w)
}

func TestDownload_CollaboratorErrorPassesThrough(t *testing.T) {
	f := setupDownloadTest(t)
	f.media.EXPECT().
		GetRemoteMedia(gomock.Any(), gomock.Any(), "other.example.org", "xyz789", "").
		Return(api.NewError(http.StatusBadGateway, api.CodeUnknown, "Failed to fetch remote media"))

	w := f.do("/_matrix/media/v3/download/other.example.org/xyz789")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assertSecurityHeaders(t, w)
}

func TestDownload_CustomParser(t *testing.T) {
	ctrl := gomock.NewController(t)
	media := mocks.NewMockMediaRepository(ctrl)
	servers := mocks.NewMockServerNameChecker(ctrl)
	parseErr := api.NewError(http.StatusBadRequest, api.CodeUnknown, "bad path")

	h := download.New(media, servers, download.WithMediaIDParser(func(*http.Request) (simplemedia.MediaLocator, error) {
		return simplemedia.MediaLocator{}, parseErr
	}))

	err := h.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, parseErr))
}

func TestDownload_Idempotent(t *testing.T) {
	f := setupDownloadTest(t)
	f.media.EXPECT().GetRemoteMedia(gomock.Any(), gomock.Any(), "other.example.org", "xyz789", "").Return(nil).Times(2)

	first := f.do("/_matrix/media/v3/download/other.example.org/xyz789")
	second := f.do("/_matrix/media/v3/download/other.example.org/xyz789")

	assert.Equal(t, first.Header(), second.Header())
	assert.Equal(t, []string{download.DecisionRemote, download.DecisionRemote}, f.recorder.decisions)
}
