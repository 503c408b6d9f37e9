package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)

	// Load errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyDataset      = errors.New("dataset contains no data rows")

	// User-correctable filter/view errors
	ErrEmptyFilterResult = errors.New("no rows match the current filters")
	ErrMissingColumn     = errors.New("required column missing")
	ErrInvalidTimeRange  = errors.New("invalid time range")
	ErrInvalidPage       = errors.New("invalid page number")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, column)
}

func NewUnsupportedFormatError(ext string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUserInputError reports whether the error is something the user can fix by
// adjusting filters or input, as opposed to a system failure.
func IsUserInputError(err error) bool {
	return errors.Is(err, ErrEmptyFilterResult) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidPage)
}

func IsLoadError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptyDataset)
}
