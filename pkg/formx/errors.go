package formx

import (
	"net/http"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("FORMX")

	// ErrConfiguration covers malformed rules and unknown field references.
	// Raised at validation time, before any population begins.
	ErrConfiguration = errorRegistry.Register(
		"CONFIGURATION",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Invalid form schema configuration",
	)

	ErrSchemaNotFound = errorRegistry.Register(
		"SCHEMA_NOT_FOUND",
		errx.TypeNotFound,
		http.StatusNotFound,
		"Form schema not found",
	)

	ErrInvalidSchema = errorRegistry.Register(
		"INVALID_SCHEMA",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Form schema is not valid JSON",
	)

	ErrNoEntities = errorRegistry.Register(
		"NO_ENTITIES",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Entity map cannot be empty",
	)
)

// IsConfigurationError reports whether err is a schema configuration error
func IsConfigurationError(err error) bool {
	var xerr *errx.Error
	if !errx.As(err, &xerr) {
		return false
	}
	return xerr.Code == ErrConfiguration.Code
}
