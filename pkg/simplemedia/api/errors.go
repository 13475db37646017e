package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// Matrix error codes used by the media endpoints
const (
	CodeNotFound     = "M_NOT_FOUND"
	CodeUnknown      = "M_UNKNOWN"
	CodeInvalidParam = "M_INVALID_PARAM"
	CodeTooLarge     = "M_TOO_LARGE"
	CodeUnrecognized = "M_UNRECOGNIZED"
)

// Error is an error that carries its own HTTP status and errcode.
type Error struct {
	Status  int
	ErrCode string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// NewError returns an *Error with the given status, errcode and message.
func NewError(status int, errCode, message string) *Error {
	return &Error{Status: status, ErrCode: errCode, Message: message}
}

// ErrorResponse is the JSON body written for every error.
type ErrorResponse struct {
	ErrCode string `json:"errcode"`
	Error   string `json:"error"`
}

// Respond writes err as a JSON error response. An *Error keeps its own
// status; anything else is logged and reported as a 500.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		slog.ErrorContext(r.Context(), "Unhandled error serving request", "method", r.Method, "path", r.URL.Path, "error", err)
		apiErr = NewError(http.StatusInternalServerError, CodeUnknown, "Internal server error")
	}

	render.Status(r, apiErr.Status)
	render.JSON(w, r, ErrorResponse{ErrCode: apiErr.ErrCode, Error: apiErr.Message})
}

// RespondNotFound writes the terminal not-found response.
func RespondNotFound(w http.ResponseWriter, r *http.Request) {
	Respond(w, r, NewError(http.StatusNotFound, CodeNotFound, "Not found"))
}

// Handler adapts an error-returning handler to http.Handler. Returned
// errors are rendered with Respond.
type Handler func(w http.ResponseWriter, r *http.Request) error

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		Respond(w, r, err)
	}
}
