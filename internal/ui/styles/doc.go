// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the attendance dashboard.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Cyan - Brand color, headers, selected row
  - Emerald - Online indicator, success toasts, fresh check-ins
  - Amber - Connecting indicator, pending rows
  - Rose - Offline indicator, error toasts, delete prompts

# Theme (theme.go)

NewTheme detects the terminal's color profile with termenv. The [ui] theme
setting can force "dark", "light" or "ascii" instead of "auto".

# Bars (bars.go)

RenderBar draws the ASCII stat bars of the summary panel.
*/
package styles
