// Package httpapi exposes the journey and story services as a JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/levelup/internal/core/journey"
	"github.com/example/levelup/internal/ports/primary"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes body as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError writes err as {"error": "..."} with the status StatusFor picks.
// Messages of server errors are not exposed.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, errorResponse{Error: msg})
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var (
		templateNotFound *journey.TemplateNotFoundError
		configNotFound   *journey.ConfigNotFoundError
		configParse      *journey.ConfigParseError
	)
	switch {
	case errors.Is(err, primary.ErrNotFound),
		errors.As(err, &templateNotFound),
		errors.As(err, &configNotFound):
		return http.StatusNotFound
	case errors.Is(err, primary.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &configParse):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
