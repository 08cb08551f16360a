package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/notionmd/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps err to a status code and a client-safe message. Details
// of server-side failures are logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	switch status {
	case http.StatusBadRequest:
		writeJSON(w, status, errorBody(err.Error()))
	case http.StatusUnauthorized:
		writeJSON(w, status, errorBody("unauthorized"))
	case http.StatusNotFound:
		writeJSON(w, status, errorBody("not found"))
	default:
		msg := "internal error"
		if errors.Is(err, apperr.ErrUnsupportedProperty) {
			msg = "page has an unsupported property type"
		}
		slog.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		writeJSON(w, status, errorBody(msg))
	}
}
