package watchlist

import (
	"context"
	"errors"
	"strings"

	"github.com/dan-solli/watchlist/pkg/store"
	"github.com/dan-solli/watchlist/pkg/validator"
)

// Error type constants for classification
const (
	ErrTypeValidation = "validation"
	ErrTypeNotFound   = "not_found"
	ErrTypeDatabase   = "database"
	ErrTypeTimeout    = "timeout"
	ErrTypeUnknown    = "unknown"
)

// Re-exported sentinel errors so callers need only this package.
var (
	ErrMovieNotFound      = store.ErrMovieNotFound
	ErrStorageUnavailable = store.ErrStorageUnavailable
	ErrValidation         = validator.ErrValidation
	ErrTitleRequired      = validator.ErrTitleRequired
	ErrYearOutOfRange     = validator.ErrYearOutOfRange
	ErrRatingOutOfRange   = validator.ErrRatingOutOfRange
)

// ClassifyError inspects an error and returns its type classification
// for metrics labels and trace records.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, validator.ErrValidation):
		return ErrTypeValidation
	case errors.Is(err, store.ErrMovieNotFound):
		return ErrTypeNotFound
	case errors.Is(err, store.ErrStorageUnavailable):
		return ErrTypeDatabase
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTypeTimeout
	}

	// Driver errors are not typed consistently across SQLite drivers
	errStrLower := strings.ToLower(err.Error())
	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") ||
		strings.Contains(errStrLower, "disk") ||
		strings.Contains(errStrLower, "locked") {
		return ErrTypeDatabase
	}

	return ErrTypeUnknown
}
