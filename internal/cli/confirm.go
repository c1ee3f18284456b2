// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrCancelled is returned when the user answers no to a confirmation.
var ErrCancelled = errors.New("cancelled")

// ConfirmationOptions controls how a destructive action is confirmed.
type ConfirmationOptions struct {
	// Yes is set by --yes and skips the prompt.
	Yes bool
	// JSONMode forbids prompting; --yes is required.
	JSONMode bool
}

// confirmTTY reports whether a prompt can be shown. Tests replace it.
var confirmTTY = IsTTY

// Confirm asks "<action>? [y/N]" unless opts allow proceeding. Without a
// terminal or in JSON mode, --yes is required.
func Confirm(w io.Writer, action string, opts ConfirmationOptions) error {
	if opts.Yes {
		return nil
	}
	if opts.JSONMode {
		return NewValidationError("flag", "--json", "destructive actions in JSON mode need --yes")
	}
	if !confirmTTY() {
		return NewValidationError("flag", action, "not a terminal, pass --yes to confirm")
	}

	answer, err := readLine(w, fmt.Sprintf("%s? [y/N]: ", action))
	if err != nil {
		return err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return nil
	}
	return ErrCancelled
}
