package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"media-job-service/internal/entity"
)

type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Message: msg})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var de *entity.DispatchError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrInvalidState):
		return http.StatusConflict
	case errors.As(err, &de):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceErr hides internal and upstream error text behind a generic
// message; the full error goes to the request logger.
func writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusBadGateway:
		msg = "worker unavailable"
	case http.StatusInternalServerError:
		msg = "internal error"
	}
	if code >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", code).Msg("request failed")
	}
	writeErr(w, code, msg)
}
