package convert

import (
	"errors"
	"fmt"
)

// Validation sentinels. Wrapped with the offending value and the configured
// threshold so the user-facing message names both. A validation failure means
// the converter was never invoked.
var (
	// ErrUnsupportedType is returned when the selected document type is not
	// in the configuration.
	ErrUnsupportedType = errors.New("convert: unsupported document type")

	// ErrExtensionMismatch is returned when the upload's extension is not
	// allowed for the selected document type.
	ErrExtensionMismatch = errors.New("convert: file extension not allowed for selected type")

	// ErrUnknownOutputFormat is returned when the selected output format is
	// not one of the configured formats.
	ErrUnknownOutputFormat = errors.New("convert: unknown output format")

	// ErrFileTooLarge is returned when the upload exceeds the size limit.
	ErrFileTooLarge = errors.New("convert: file exceeds maximum size")

	// ErrTooManyPages is returned when a pre-conversion page count exceeds
	// the page limit.
	ErrTooManyPages = errors.New("convert: document exceeds maximum page count")
)

// IsValidationError reports whether err is one of the pre-conversion
// validation sentinels.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrExtensionMismatch) ||
		errors.Is(err, ErrUnknownOutputFormat) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrTooManyPages)
}

// ConversionError wraps a failure raised by a format parser. It carries the
// upload name so the message identifies which file failed. Never retried.
type ConversionError struct {
	Name string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Name, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
