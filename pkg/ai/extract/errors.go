package extract

import (
	"net/http"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("EXTRACT")

	ErrEmptyDocument = errorRegistry.Register(
		"EMPTY_DOCUMENT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Document content cannot be empty",
	)

	ErrInferenceFailed = errorRegistry.Register(
		"INFERENCE_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Model request for entity extraction failed",
	)

	ErrInvalidJSON = errorRegistry.Register(
		"INVALID_JSON",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Model returned invalid JSON",
	)
)

// WrapError wraps a standard error with an extraction error code
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
