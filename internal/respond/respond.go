// Package respond writes the JSON bodies shared by every controller.
package respond

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
)

func JSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func ValidationError(w http.ResponseWriter, logger *zap.Logger, traceID, message string, details ...apperrors.ValidationDetail) {
	writeError(w, logger, traceID, http.StatusBadRequest, "VALIDATION_ERROR", message, details)
}

// Error maps an application error to its HTTP status. Unknown errors are
// logged with their cause and reported as a generic 500.
func Error(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		ValidationError(w, logger, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, logger, traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		writeError(w, logger, traceID, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		writeError(w, logger, traceID, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error(), nil)
		return
	}

	logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	writeError(w, logger, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	JSON(w, logger, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
