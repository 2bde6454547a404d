package llamaparse

import (
	"encoding/json"
	"net/http"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("LLAMAPARSE")

	ErrAPIRequest = errorRegistry.Register(
		"API_REQUEST_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Failed to make request to LlamaParse API",
	)

	ErrAPIResponse = errorRegistry.Register(
		"API_RESPONSE_INVALID",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Invalid response from LlamaParse API",
	)

	ErrAPIUnauthorized = errorRegistry.Register(
		"API_UNAUTHORIZED",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"Invalid or missing LlamaParse API key",
	)

	ErrAPIRateLimit = errorRegistry.Register(
		"API_RATE_LIMIT",
		errx.TypeExternal,
		http.StatusTooManyRequests,
		"LlamaParse API rate limit exceeded",
	)

	ErrInvalidInput = errorRegistry.Register(
		"INVALID_INPUT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Invalid input for document parsing",
	)

	ErrUploadFailed = errorRegistry.Register(
		"UPLOAD_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Failed to upload document to LlamaParse",
	)

	ErrJobFailed = errorRegistry.Register(
		"JOB_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"LlamaParse job ended in error state",
	)

	ErrJobTimeout = errorRegistry.Register(
		"JOB_TIMEOUT",
		errx.TypeExternal,
		http.StatusGatewayTimeout,
		"LlamaParse job did not finish in time",
	)

	ErrMissingAPIKey = errorRegistry.Register(
		"MISSING_API_KEY",
		errx.TypeValidation,
		http.StatusBadRequest,
		"LlamaParse API key not provided",
	)
)

// ParseAPIError maps a non-2xx LlamaParse API response to an errx.Error
func ParseAPIError(statusCode int, body []byte) *errx.Error {
	message := string(body)

	var errResp struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Detail != "" {
			message = errResp.Detail
		} else if errResp.Message != "" {
			message = errResp.Message
		}
	}

	var baseErr *errx.ErrorCode
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		baseErr = ErrAPIUnauthorized
	case http.StatusTooManyRequests:
		baseErr = ErrAPIRateLimit
	case http.StatusBadRequest:
		baseErr = ErrInvalidInput
	default:
		baseErr = ErrAPIRequest
	}

	return errorRegistry.NewWithMessage(baseErr, message).
		WithDetail("status_code", statusCode)
}

// WrapError wraps a standard error with a LlamaParse error code
func WrapError(err error, code *errx.ErrorCode) *errx.Error {
	if err == nil {
		return nil
	}

	var customErr *errx.Error
	if errx.As(err, &customErr) {
		return customErr
	}

	return errorRegistry.NewWithCause(code, err)
}
