// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

func TestNotifier_DefaultDuration(t *testing.T) {
	n := NewNotifier(0)
	if n.Duration() != 2800*time.Millisecond {
		t.Errorf("Expected 2800ms, got %v", n.Duration())
	}
	n.SetDuration(time.Second)
	if n.Duration() != time.Second {
		t.Errorf("Expected 1s, got %v", n.Duration())
	}
}

func TestNotifier_ShowAndExpire(t *testing.T) {
	n := NewNotifier(10 * time.Millisecond)
	cmd := n.OK("Saved")
	if cmd == nil {
		t.Fatal("Expected a dismissal command")
	}

	toast, ok := n.Current()
	if !ok || toast.Message != "Saved" || toast.Severity != SeverityOK {
		t.Fatalf("Unexpected toast %+v (visible=%v)", toast, ok)
	}

	msg := cmd()
	if !n.Update(msg) {
		t.Fatal("Expiry message should be consumed")
	}
	if n.Visible() {
		t.Error("Toast should be hidden after its timer fires")
	}
}

func TestNotifier_LastOneWins(t *testing.T) {
	n := NewNotifier(time.Hour)
	first := n.OK("first")
	n.Err("second")

	toast, _ := n.Current()
	if toast.Message != "second" || toast.Severity != SeverityErr {
		t.Fatalf("Expected the second toast, got %+v", toast)
	}

	// The first toast's timer must not hide the second.
	n.Update(ToastExpiredMsg{Generation: toast.Generation - 1})
	if !n.Visible() {
		t.Error("Stale expiry hid the current toast")
	}
	_ = first

	n.Update(ToastExpiredMsg{Generation: toast.Generation})
	if n.Visible() {
		t.Error("Current expiry should hide the toast")
	}
}

func TestNotifier_IgnoresOtherMessages(t *testing.T) {
	n := NewNotifier(0)
	n.OK("x")
	if n.Update("not a toast message") {
		t.Error("Foreign message should not be consumed")
	}
	if !n.Visible() {
		t.Error("Toast should still be visible")
	}
	n.Dismiss()
	if n.Visible() {
		t.Error("Dismiss should hide the toast")
	}
}

func TestNotifier_View(t *testing.T) {
	n := NewNotifier(0)
	if n.View(80) != "" {
		t.Error("Empty notifier should render nothing")
	}

	n.Err("Delete failed")
	out := n.View(80)
	if !strings.Contains(out, "[X]") || !strings.Contains(out, "Delete failed") {
		t.Errorf("Error toast missing indicator or text: %q", out)
	}

	n.OK("Renamed")
	out = n.View(80)
	if !strings.Contains(out, "[OK]") || strings.Contains(out, "Delete failed") {
		t.Errorf("Success toast should replace the error: %q", out)
	}
}

func TestWrapToastText(t *testing.T) {
	got := wrapToastText("one two three four", 9)
	if got != "one two\nthree\nfour" {
		t.Errorf("Unexpected wrap %q", got)
	}
	if wrapToastText("short", 0) != "short" {
		t.Error("Zero width should return input")
	}
}
