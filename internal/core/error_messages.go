// # Error Codes Reference
//
// Table failures carry a short code so an operator reading a run summary or
// an API response can find the cause without the full error chain.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A silver row collided with an existing key
//	        Patterns: "duplicate key", "violates unique"
//
//	DB002 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB003 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB004 - Timeout: Database operation timed out
//	        Patterns: "timeout"
//
//	DB005 - Deadlock: Database was busy with conflicting operations
//	        Patterns: "deadlock"
//
//	DB006 - Missing relation: Table or schema has not been created
//	        Patterns: "does not exist", "catalog error"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Column not found: Extract header lacks an expected column
//	         Patterns: "column not found"
//
//	SRC002 - Invalid CSV: Extract could not be parsed
//	         Patterns: "invalid csv"
//
//	SRC003 - Missing file: Extract file does not exist
//	         Patterns: "no such file"
//
//	SRC004 - Unconfigured: No extract path is configured for the table
//	         Patterns: "no source file configured"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run in progress: Another run holds the only slot
//	RUN002 - Cancelled: The run was cancelled
//	RUN003 - Deadline: The table exceeded its time budget
//	RUN004 - Column mismatch: Conformed rows do not match the table layout
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Unknown table: Key is not registered
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Sentinel errors are matched with errors.Is first. Everything else is
// matched case-insensitively with strings.Contains; the first pattern wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/conform/internal/load"
)

// UserMessage is an operator-facing description of a failure.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorSentinel struct {
	target error
	msg    UserMessage
}

var errorSentinels = []errorSentinel{
	{ErrRunInProgress, UserMessage{
		Message: "Another run is already in progress",
		Action:  "Wait for it to finish and try again",
		Code:    "RUN001",
	}},
	{context.Canceled, UserMessage{
		Message: "The run was cancelled",
		Action:  "Start a new run when ready",
		Code:    "RUN002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "The table exceeded its time budget",
		Action:  "Raise LOAD_TIMEOUT or check database load",
		Code:    "RUN003",
	}},
	{load.ErrColumnMismatch, UserMessage{
		Message: "Conformed rows do not match the silver table layout",
		Action:  "Check the table definition against the migration",
		Code:    "RUN004",
	}},
	{ErrUnknownTable, UserMessage{
		Message: "Unknown table",
		Action:  "List tables to see the valid keys",
		Code:    "TBL001",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A silver row collided with an existing key",
			Action:  "Check that the table was truncated before loading",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A silver row collided with an existing key",
			Action:  "Check that the table was truncated before loading",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check DATABASE_URL and that the server is up",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Rerun the failed tables",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Database operation timed out",
			Action:  "Rerun the failed tables or raise LOAD_TIMEOUT",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Rerun the failed tables",
			Code:    "DB005",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Table or schema has not been created",
			Action:  "Run the migrate command first",
			Code:    "DB006",
		},
	},
	{
		pattern: "catalog error",
		msg: UserMessage{
			Message: "Table or schema has not been created",
			Action:  "Run the migrate command first",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Source
	// =========================================================================
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Extract header lacks an expected column",
			Action:  "Compare the file header with the bronze column list",
			Code:    "SRC001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "Extract could not be parsed as CSV",
			Action:  "Check quoting and delimiters in the file",
			Code:    "SRC002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "Extract file does not exist",
			Action:  "Check SOURCE_DATA_DIR and the manifest",
			Code:    "SRC003",
		},
	},
	{
		pattern: "no source file configured",
		msg: UserMessage{
			Message: "No extract path is configured for the table",
			Action:  "Add the table to the manifest",
			Code:    "SRC004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for details",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-facing message.
// Returns the zero UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range errorSentinels {
		if errors.Is(err, s.target) {
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

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its mapped message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
