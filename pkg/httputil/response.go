package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
	"github.com/bcart01v/atlas-cinema-guru/pkg/logger"
	"github.com/bcart01v/atlas-cinema-guru/pkg/validator"
)

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error *ErrorResponse `json:"error"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and writes the error envelope. Server-side
// failures are logged with their cause using the request-scoped logger when
// the RequestLogger middleware is mounted, falling back to fallback.
// The cause never reaches the response body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	body := &ErrorResponse{RequestID: requestID}
	status := http.StatusInternalServerError

	var (
		appErr *apperrors.AppError
		valErr *validator.ValidationError
	)
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		body.Code = appErr.Code
		body.Message = appErr.Message
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		mapped := valErr.AppError()
		body.Code = mapped.Code
		body.Message = mapped.Message
		body.Fields = valErr.Fields()
	default:
		status = apperrors.HTTPStatus(err)
		body.Code, body.Message = sentinelBody(status)
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorEnvelope{Error: body})
}

func sentinelBody(status int) (string, string) {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_PARAMETER", "invalid parameter"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED", "Unauthorized"
	case http.StatusNotFound:
		return "NOT_FOUND", "resource not found"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED", "too many requests"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE", "service unavailable"
	default:
		return "INTERNAL_ERROR", "an internal error occurred"
	}
}

// ParseUUID validates a path parameter as a UUID. The returned error is an
// INVALID_PARAMETER AppError naming the parameter.
func ParseUUID(name, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.InvalidParameter(name, "must be a valid UUID")
	}
	return id, nil
}
