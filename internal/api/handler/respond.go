package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/pkg/apperrors"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrSessionClosed), errors.Is(err, apperrors.ErrDocumentAlreadySet):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidTerm):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrDatabase):
		// Retryable: the turn was not completed.
		status, message = http.StatusServiceUnavailable, "Temporary storage failure, please retry."
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}
