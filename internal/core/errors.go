package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVersion is returned for a version id missing from the catalog.
	ErrUnknownVersion = errors.New("unknown EURING version")

	// ErrUnknownField is returned for a field name missing from a version.
	ErrUnknownField = errors.New("unknown field")

	// ErrSameVersion is returned when source and target versions are identical.
	ErrSameVersion = errors.New("source and target versions are the same, no conversion needed")

	// ErrLowConfidence is returned when auto-detection cannot settle on a version.
	ErrLowConfidence = errors.New("unable to recognize EURING version: low confidence")

	// ErrMandatoryFieldMissing is wrapped by MandatoryFieldError.
	ErrMandatoryFieldMissing = errors.New("mandatory field missing")

	// ErrBatchSizeExceeded is wrapped by BatchSizeError.
	ErrBatchSizeExceeded = errors.New("batch size exceeded")

	// ErrEmptyBatch is returned for a batch without items.
	ErrEmptyBatch = errors.New("batch is empty")

	// ErrDuplicateCode is returned when a lookup update repeats a code.
	ErrDuplicateCode = errors.New("duplicate lookup code")

	// ErrEmptyRecord is returned when the input record is blank.
	ErrEmptyRecord = errors.New("empty EURING record")
)

// FormatErrorKind names the structural check that failed.
type FormatErrorKind string

const (
	FormatLength         FormatErrorKind = "length"
	FormatFieldCount     FormatErrorKind = "field_count"
	FormatMixedDelimiter FormatErrorKind = "mixed_delimiter"
)

// FormatError reports a record that does not fit a version's layout.
type FormatError struct {
	Version  string
	Kind     FormatErrorKind
	Expected int
	Actual   int
	Detail   string
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case FormatLength:
		return fmt.Sprintf("invalid record length for %s: expected %s, got %d", e.Version, e.Detail, e.Actual)
	case FormatFieldCount:
		return fmt.Sprintf("invalid field count for %s: expected %d, got %d", e.Version, e.Expected, e.Actual)
	case FormatMixedDelimiter:
		return fmt.Sprintf("mixed delimiter in %s record: %s", e.Version, e.Detail)
	default:
		return fmt.Sprintf("invalid %s record: %s", e.Version, e.Detail)
	}
}

// BatchSizeError reports a batch rejected before processing.
type BatchSizeError struct {
	Limit int
	Got   int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch size exceeded: %d items, maximum is %d", e.Got, e.Limit)
}

func (e *BatchSizeError) Unwrap() error { return ErrBatchSizeExceeded }

// MandatoryFieldError reports a required target field that stayed empty.
type MandatoryFieldError struct {
	Version string
	Field   string
}

func (e *MandatoryFieldError) Error() string {
	return fmt.Sprintf("mandatory field missing: %s cannot be populated for %s", e.Field, e.Version)
}

func (e *MandatoryFieldError) Unwrap() error { return ErrMandatoryFieldMissing }

// IsFormatError reports whether err is a structural parse failure.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
