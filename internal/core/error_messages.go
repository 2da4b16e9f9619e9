// Package core provides the validation engine for business-directory records.
//
// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Codes are grouped by category:
//
// # Reference Errors (REF001-REF099)
//
// Errors raised while loading reference data at startup:
//
//	REF001 - Malformed range: A category code range is not of the form NN-NN
//	         Action: Fix the NAICS code table and restart
//	         Patterns: "malformed category code range"
//
//	REF002 - Malformed geo row: A postal reference row could not be parsed
//	         Action: Check the GeoNames files are tab-separated postal dumps
//	         Patterns: "malformed geo reference row"
//
//	REF003 - Missing reference: A reference table could not be found
//	         Action: Check the configured reference file locations
//	         Patterns: "no such file", "nosuchkey"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Unknown field: The field name is not a record field
//	         Action: Use one of the listed field names
//	         Patterns: "unknown field"
//
//	VAL002 - Invalid input: Records could not be decoded
//	         Action: Send a JSON array of record objects
//	         Patterns: "invalid input"
//
//	VAL003 - Input too large: The request body exceeds the configured limit
//	         Action: Split the batch into smaller requests
//	         Patterns: "request body too large" (checked before VAL002)
//
//	VAL004 - Invalid query: A query parameter is missing or malformed
//	         Action: Check the value and kind parameters
//	         Patterns: "invalid query"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many validation runs in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent runs"
//
//	RUN002 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	RUN003 - Request timeout: Request timed out
//	         Action: Try a smaller batch
//	         Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Missing table: A configured table does not exist
//	        Action: Check the table names in the configuration
//	        Patterns: "does not exist"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// Anything else maps to ERR000.
package core

import (
	"fmt"
	"strings"
)

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Reference Errors (REF001-REF003)
	// =========================================================================
	{
		pattern: "malformed category code range",
		msg: UserMessage{
			Message: "A category code range is not of the form NN-NN",
			Action:  "Fix the NAICS code table and restart",
			Code:    "REF001",
		},
	},
	{
		pattern: "malformed geo reference row",
		msg: UserMessage{
			Message: "A postal reference row could not be parsed",
			Action:  "Check the GeoNames files are tab-separated postal dumps",
			Code:    "REF002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "A reference table could not be found",
			Action:  "Check the configured reference file locations",
			Code:    "REF003",
		},
	},
	{
		pattern: "nosuchkey",
		msg: UserMessage{
			Message: "A reference table could not be found",
			Action:  "Check the configured reference file locations",
			Code:    "REF003",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL004)
	// =========================================================================
	{
		pattern: "unknown field",
		msg: UserMessage{
			Message: "The field name is not a record field",
			Action:  "Use one of the listed field names",
			Code:    "VAL001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The request body exceeds the configured limit",
			Action:  "Split the batch into smaller requests",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid input",
		msg: UserMessage{
			Message: "Records could not be decoded",
			Action:  "Send a JSON array of record objects",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid query",
		msg: UserMessage{
			Message: "A query parameter is missing or malformed",
			Action:  "Check the value and kind parameters",
			Code:    "VAL004",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN003)
	// =========================================================================
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "Too many validation runs in progress",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller batch",
			Code:    "RUN003",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB002)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "A configured table does not exist",
			Action:  "Check the table names in the configuration",
			Code:    "DB002",
		},
	},

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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Patterns are matched case-insensitively, first match wins.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
