package services

import (
	apperrors "boardanalyzer/internal/errors"
	"boardanalyzer/internal/validation"
)

// Analyzer errors. They are *AppError values, so the HTTP layer maps them to
// statuses by type; match them with errors.Is.
var (
	ErrNoDocument          = apperrors.NewAppValidationError("no document uploaded")
	ErrUnsupportedFileType = validation.ErrUnsupportedExtension
	ErrDocumentTooLarge    = apperrors.NewTooLargeError("document too large")
	ErrReportNotFound      = apperrors.NewNotFoundError("report")
)
