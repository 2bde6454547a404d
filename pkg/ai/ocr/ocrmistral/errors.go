package ocrmistral

import (
	"encoding/json"
	"net/http"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("MISTRAL_OCR")

	ErrAPIRequest = errorRegistry.Register(
		"API_REQUEST_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Failed to make request to Mistral API",
	)

	ErrAPIResponse = errorRegistry.Register(
		"API_RESPONSE_INVALID",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Invalid response from Mistral API",
	)

	ErrAPIUnauthorized = errorRegistry.Register(
		"API_UNAUTHORIZED",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"Invalid or missing Mistral API key",
	)

	ErrAPIRateLimit = errorRegistry.Register(
		"API_RATE_LIMIT",
		errx.TypeExternal,
		http.StatusTooManyRequests,
		"Mistral API rate limit exceeded",
	)

	ErrAPIQuotaExceeded = errorRegistry.Register(
		"API_QUOTA_EXCEEDED",
		errx.TypeExternal,
		http.StatusForbidden,
		"Mistral API quota exceeded",
	)

	ErrInvalidInput = errorRegistry.Register(
		"INVALID_INPUT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Invalid input for OCR processing",
	)

	ErrDocumentTooLarge = errorRegistry.Register(
		"DOCUMENT_TOO_LARGE",
		errx.TypeValidation,
		http.StatusRequestEntityTooLarge,
		"Document exceeds maximum size limit",
	)

	ErrMissingAPIKey = errorRegistry.Register(
		"MISSING_API_KEY",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Mistral API key not provided",
	)
)

// MistralAPIError holds the parsed body of a non-2xx API response
type MistralAPIError struct {
	StatusCode int
	Message    string
	Type       string
	Details    map[string]any
}

// ParseAPIError maps a non-2xx Mistral API response to an errx.Error
func ParseAPIError(statusCode int, body []byte) *errx.Error {
	apiErr := &MistralAPIError{
		StatusCode: statusCode,
		Details:    make(map[string]any),
	}

	var errResp struct {
		Error struct {
			Message string         `json:"message"`
			Type    string         `json:"type"`
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error.Message != "" {
			apiErr.Message = errResp.Error.Message
			apiErr.Type = errResp.Error.Type
			apiErr.Details = errResp.Error.Details
		} else if errResp.Message != "" {
			apiErr.Message = errResp.Message
		}
	}

	// If parsing failed, use raw body
	if apiErr.Message == "" {
		apiErr.Message = string(body)
	}

	var baseErr *errx.ErrorCode
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if statusCode == http.StatusForbidden &&
			(apiErr.Type == "quota_exceeded" || apiErr.Type == "insufficient_quota") {
			baseErr = ErrAPIQuotaExceeded
		} else {
			baseErr = ErrAPIUnauthorized
		}
	case http.StatusTooManyRequests:
		baseErr = ErrAPIRateLimit
	case http.StatusBadRequest:
		baseErr = ErrInvalidInput
	case http.StatusRequestEntityTooLarge:
		baseErr = ErrDocumentTooLarge
	default:
		baseErr = ErrAPIRequest
	}

	err := errorRegistry.NewWithMessage(baseErr, apiErr.Message)
	err.WithDetail("status_code", statusCode)

	if apiErr.Type != "" {
		err.WithDetail("error_type", apiErr.Type)
	}

	for k, v := range apiErr.Details {
		err.WithDetail(k, v)
	}

	return err
}

// WrapError wraps a standard error with a Mistral error code
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
