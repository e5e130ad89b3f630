package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"clinic/backend/internal/service"
)

const (
	msgInvalidRequest = "Invalid request"
	msgInvalidFields  = "Unprocessable Entity: One or more fields are invalid"
	msgInternal       = "internal error"
)

type errorResponse struct {
	Message string       `json:"message"`
	Success bool         `json:"success"`
	Code    int          `json:"code"`
	Error   []fieldError `json:"error,omitempty"`
}

type fieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg, Code: status})
}

func writeFieldErrors(w http.ResponseWriter, fields []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Message: msgInvalidFields,
		Code:    http.StatusUnprocessableEntity,
		Error:   fields,
	})
}

// writeServiceError maps the service error taxonomy onto status codes and
// logs the outcome at the matching level.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, action string, err error, attrs ...any) {
	var (
		cErr *service.ConflictError
		vErr *service.ValidationError
		nErr *service.NotFoundError
	)
	switch {
	case errors.As(err, &cErr):
		log.Info(action+" conflict", attrs...)
		writeError(w, http.StatusUnprocessableEntity, cErr.Error())
	case errors.As(err, &vErr):
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		writeError(w, http.StatusUnprocessableEntity, vErr.Error())
	case errors.As(err, &nErr):
		log.Info(action+" not found", attrs...)
		writeError(w, http.StatusNotFound, nErr.Error())
	default:
		log.Error(action+" failed", append([]any{slog.Any("err", err)}, attrs...)...)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
