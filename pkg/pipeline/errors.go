package pipeline

import (
	"net/http"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("PIPELINE")

	ErrEmptyDocument = errorRegistry.Register(
		"EMPTY_DOCUMENT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Document content cannot be empty",
	)

	ErrNoContent = errorRegistry.Register(
		"NO_CONTENT",
		errx.TypeBusiness,
		http.StatusUnprocessableEntity,
		"No text content could be recovered from the document",
	)

	ErrStageFailed = errorRegistry.Register(
		"STAGE_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Pipeline stage failed",
	)
)
