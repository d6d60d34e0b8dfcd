// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"github.com/harissfx/AbsensiESP32/internal/config"
	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/session"
)

// =============================================================================
// LINK
// =============================================================================

// LinkEventMsg carries one event from the push channel.
type LinkEventMsg struct {
	Event link.Event
}

// LinkClosedMsg means the event channel was closed.
type LinkClosedMsg struct{}

// FlashExpiredMsg ends the emphasis of the check-in with generation Gen.
type FlashExpiredMsg struct {
	Gen uint64
}

// =============================================================================
// COMMANDS
// =============================================================================

// CallDoneMsg reports a finished rename or delete.
type CallDoneMsg struct {
	Call session.Call
	Err  error
}

// RefreshDoneMsg reports whether getUsers was sent.
type RefreshDoneMsg struct {
	Err error
}

// ExportDoneMsg reports a finished CSV download.
type ExportDoneMsg struct {
	Path  string
	Bytes int64
	Err   error
}

// CopyDoneMsg reports a clipboard write.
type CopyDoneMsg struct {
	UID string
	Err error
}

// =============================================================================
// SETTINGS
// =============================================================================

// ConfigReloadedMsg carries a configuration re-read from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ConfigErrorMsg reports a config file that failed to reload.
type ConfigErrorMsg struct {
	Err error
}
