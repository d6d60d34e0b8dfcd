// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the dashboard's reusable widgets.

# Components

Header (header.go) - Title, device host, session uptime and a link state
badge. A spinner runs while the link is connecting.

StatusBar (statusbar.go) - Bottom line with a short note and key hints
rendered by bubbles/help.

Notifier (toast.go) - One toast at a time. Each Show replaces the current
toast and schedules a ToastExpiredMsg; stale expiries are ignored by
generation.

	n := components.NewNotifier(components.DefaultToastDuration)
	cmd := n.Show("Saved", components.SeverityOK)
	...
	case components.ToastExpiredMsg:
		n.Update(msg)

None of the components hold a reference to the session.
*/
package components
