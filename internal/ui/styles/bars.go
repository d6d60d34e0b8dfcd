// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "strings"

var (
	BarFull    = "#"
	BarEmpty   = "-"
	BarPartial = []string{".", ":", "+"}
)

// RenderBar draws a bar of width cells filled to fraction (clamped to 0..1).
func RenderBar(width int, fraction float64) string {
	if width <= 0 {
		return ""
	}
	if fraction < 0 || fraction != fraction {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	filled := float64(width) * fraction
	full := int(filled)
	partial := int((filled - float64(full)) * float64(len(BarPartial)+1))

	var sb strings.Builder
	sb.Grow(width)
	for i := 0; i < full && i < width; i++ {
		sb.WriteString(BarFull)
	}
	if full < width && partial > 0 {
		sb.WriteString(BarPartial[partial-1])
		full++
	}
	for i := full; i < width; i++ {
		sb.WriteString(BarEmpty)
	}
	return sb.String()
}
