// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/harissfx/AbsensiESP32/internal/command"
	"github.com/harissfx/AbsensiESP32/internal/config"
	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitNetworkError = 5
	ExitNotFound     = 7
	ExitTimeout      = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is a bad command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError formats a UsageError.
func NewUsageError(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// CommandError wraps a failure with the command that produced it.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// wrap tags err with cmd unless it is nil or already a usage error.
func wrap(cmd string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return err
	}
	return &CommandError{Command: cmd, Err: err}
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *UsageError
	var ve config.ValidateErrors
	switch {
	case errors.As(err, &ue):
		return ExitUsageError
	case errors.As(err, &ve):
		return ExitConfigError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(err, session.ErrUnknownUser):
		return ExitNotFound
	case command.IsNetwork(err), errors.Is(err, link.ErrNotOnline):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}
