package core

// # Error Codes Reference
//
// Errors are mapped to user-facing messages with a code that can be quoted
// to support. Typed and sentinel errors are matched first with errors.As and
// errors.Is; anything else falls through to the substring pattern table.
//
// # Format Errors (FMT001-FMT099)
//
//	FMT001 - Record length does not fit the version layout
//	FMT002 - Field count does not fit the version layout
//	FMT003 - Record mixes separators of different layouts
//
// # Recognition Errors (REC001-REC099)
//
//	REC001 - No version matched with enough confidence
//
// # Conversion Errors (CNV001-CNV099)
//
//	CNV001 - Unknown version id
//	CNV002 - Source and target versions are the same
//	CNV003 - A mandatory target field cannot be populated
//	CNV004 - The record is empty
//
// # Batch Errors (BAT001-BAT099)
//
//	BAT001 - Empty batch
//	BAT002 - Batch larger than the configured cap
//	BAT003 - Too many batches running, retry later
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Unknown field for the version
//	CAT002 - Invalid lookup update (duplicate or empty codes)
//	CAT003 - Catalog storage failure
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgLength = UserMessage{
		Message: "The record length does not match the version layout",
		Action:  "Check for missing or extra characters, or let the version be detected",
		Code:    "FMT001",
	}
	msgFieldCount = UserMessage{
		Message: "The record has the wrong number of fields",
		Action:  "Check the separators in the record",
		Code:    "FMT002",
	}
	msgMixedDelimiter = UserMessage{
		Message: "The record mixes separators of different layouts",
		Action:  "Use a single separator throughout the record",
		Code:    "FMT003",
	}
	msgLowConfidence = UserMessage{
		Message: "The record could not be matched to a EURING version",
		Action:  "Specify the source version explicitly",
		Code:    "REC001",
	}
	msgUnknownVersion = UserMessage{
		Message: "Unknown EURING version",
		Action:  "Use one of the ids listed by /api/versions",
		Code:    "CNV001",
	}
	msgSameVersion = UserMessage{
		Message: "Source and target versions are the same",
		Action:  "Choose a different target version",
		Code:    "CNV002",
	}
	msgMandatory = UserMessage{
		Message: "A mandatory field of the target version cannot be populated",
		Action:  "Supply the missing value in the source record",
		Code:    "CNV003",
	}
	msgEmptyRecord = UserMessage{
		Message: "The record is empty",
		Action:  "Provide a EURING record",
		Code:    "CNV004",
	}
	msgEmptyBatch = UserMessage{
		Message: "The batch contains no items",
		Action:  "Send at least one record",
		Code:    "BAT001",
	}
	msgBatchSize = UserMessage{
		Message: "The batch exceeds the maximum size",
		Action:  "Split the batch into smaller requests",
		Code:    "BAT002",
	}
	msgServerBusy = UserMessage{
		Message: "The server is busy processing other batches",
		Action:  "Please wait a moment and try again",
		Code:    "BAT003",
	}
	msgUnknownField = UserMessage{
		Message: "Unknown field for this version",
		Action:  "Check the field name against the version layout",
		Code:    "CAT001",
	}
	msgInvalidLookup = UserMessage{
		Message: "The lookup table update is invalid",
		Action:  "Send unique, non-empty codes",
		Code:    "CAT002",
	}
	msgStorage = UserMessage{
		Message: "The catalog could not be saved or loaded",
		Action:  "Please try again in a few moments",
		Code:    "CAT003",
	}
)

// sentinelMessages is consulted with errors.Is, in order.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrLowConfidence, msgLowConfidence},
	{ErrUnknownVersion, msgUnknownVersion},
	{ErrSameVersion, msgSameVersion},
	{ErrMandatoryFieldMissing, msgMandatory},
	{ErrEmptyRecord, msgEmptyRecord},
	{ErrEmptyBatch, msgEmptyBatch},
	{ErrBatchSizeExceeded, msgBatchSize},
	{ErrServerBusy, msgServerBusy},
	{ErrUnknownField, msgUnknownField},
	{ErrDuplicateCode, msgInvalidLookup},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages for errors that carry no type. The first match wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Lookup Updates (CAT002)
	// =========================================================================
	{pattern: "lookup code must not be empty", msg: msgInvalidLookup},
	{pattern: "lookup update requires", msg: msgInvalidLookup},

	// =========================================================================
	// Catalog Storage (CAT003)
	// Raised by the store drivers and wrapped by the catalog.
	// =========================================================================
	{pattern: "save catalog", msg: msgStorage},
	{pattern: "load catalog", msg: msgStorage},
	{pattern: "connection refused", msg: msgStorage},
	{pattern: "database is locked", msg: msgStorage},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var fe *FormatError
	if errors.As(err, &fe) {
		switch fe.Kind {
		case FormatFieldCount:
			return msgFieldCount
		case FormatMixedDelimiter:
			return msgMixedDelimiter
		default:
			return msgLength
		}
	}
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
