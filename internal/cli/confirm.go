// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"
)

// =============================================================================
// CONFIRMATION
// =============================================================================

// ErrConfirmationRequired means a destructive command could not prompt.
var ErrConfirmationRequired = errors.New("confirmation required: pass --yes")

// ConfirmOptions controls Confirm.
type ConfirmOptions struct {
	// Yes skips the prompt (--yes / -y).
	Yes bool
	// JSON forbids prompting; --yes is then mandatory.
	JSON bool
}

// Prompter reads one line of input after showing prompt.
type Prompter func(prompt string) (string, error)

// Confirm asks before a destructive action.
//
// Flow:
//  1. opts.Yes: confirmed without prompting
//  2. opts.JSON or stdin not a terminal: ErrConfirmationRequired
//  3. otherwise prompt "<action>? [y/N]"
func Confirm(action string, opts ConfirmOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if opts.JSON || !IsTTY() {
		return false, ErrConfirmationRequired
	}
	return ConfirmWith(linerPrompt, action)
}

// ConfirmWith prompts through p. An aborted prompt counts as "no".
func ConfirmWith(p Prompter, action string) (bool, error) {
	answer, err := p(fmt.Sprintf("%s? [y/N]: ", action))
	if errors.Is(err, liner.ErrPromptAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func linerPrompt(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	return line.Prompt(prompt)
}
