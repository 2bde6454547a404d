package store

import (
	"net/http"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("STORE")

	ErrDocumentNotFound = errorRegistry.Register(
		"DOCUMENT_NOT_FOUND",
		errx.TypeNotFound,
		http.StatusNotFound,
		"Document not found",
	)

	ErrStageNotFound = errorRegistry.Register(
		"STAGE_NOT_FOUND",
		errx.TypeNotFound,
		http.StatusNotFound,
		"Stage data not found for document",
	)

	ErrWriteFailed = errorRegistry.Register(
		"WRITE_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Failed to persist document data",
	)

	ErrReadFailed = errorRegistry.Register(
		"READ_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Failed to read document data",
	)

	ErrCorruptData = errorRegistry.Register(
		"CORRUPT_DATA",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Stored document data is not valid JSON",
	)
)
