// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/composer"
	"github.com/jeranaias/lexora-tui/internal/config"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/session"
	"github.com/jeranaias/lexora-tui/internal/storage"
	"github.com/jeranaias/lexora-tui/internal/upload"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError indicates invalid arguments or local validation failures
	ExitUsageError = 2
	// ExitConfigError indicates an invalid configuration file or environment
	ExitConfigError = 3
	// ExitAuthError indicates a missing session or a 401/403 from the server
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a conversation or key was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates a request ran past its deadline
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ValidationError is a bad flag or argument value.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	if e.Example != "" {
		msg += " (example: " + e.Example + ")"
	}
	return msg
}

// NotFoundError is a missing local resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// errSignedOut is returned by commands that need a session.
var errSignedOut = errors.New("not signed in: run 'lexora signin' first")

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		configErr     config.ValidateErrors
		ttyErr        *TTYRequiredError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &ttyErr),
		errors.Is(err, composer.ErrEmptyQuestion), errors.Is(err, upload.ErrNotPDF),
		errors.Is(err, upload.ErrIsDir), errors.Is(err, model.ErrEmptyTitle),
		errors.Is(err, model.ErrLastConversation), isInvalidRequest(err):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.As(err, &notFoundErr), errors.Is(err, storage.ErrConversationNotFound),
		errors.Is(err, model.ErrConversationNotFound):
		return ExitNotFoundError
	case errors.Is(err, errSignedOut), errors.Is(err, session.ErrNoSession), api.IsUnauthorized(err):
		return ExitAuthError
	case api.IsTimeout(err):
		return ExitTimeoutError
	case api.IsConnection(err):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// isInvalidRequest reports a request the client refused to send.
func isInvalidRequest(err error) bool {
	var ce *api.ClientError
	return errors.As(err, &ce) && ce.Type == api.ErrTypeInvalidRequest
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON envelope in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())
}
