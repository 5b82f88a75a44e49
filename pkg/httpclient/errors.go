package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
)

// remoteErrorEnvelope mirrors httputil.ErrorEnvelope.
type remoteErrorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads a non-2xx response and translates it into an
// AppError. The body is consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}
	return decodeError(resp.StatusCode, body, serviceName)
}

// TranslateError converts a *ServerError from CircuitBreakerClient into an
// AppError. Any other error is returned unchanged.
func TranslateError(err error, serviceName string) error {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return decodeError(serverErr.Status, serverErr.Body, serviceName)
	}
	return err
}

func decodeError(status int, body []byte, serviceName string) error {
	var env remoteErrorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return mapRemoteError(status, env.Error.Code, env.Error.Message, serviceName)
	}
	return fmt.Errorf("%s returned status %d: %s", serviceName, status, string(body))
}

func mapRemoteError(status int, code, message, serviceName string) error {
	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest:
		return apperrors.InvalidParameter("", message)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimited(message)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s: %s", serviceName, message))
	case status >= 500:
		return &apperrors.AppError{
			Code:    code,
			Message: message,
			Status:  status,
			Err:     fmt.Errorf("%s server error (%d/%s): %w", serviceName, status, code, apperrors.ErrDataAccess),
		}
	default:
		return &apperrors.AppError{Code: code, Message: message, Status: status}
	}
}
