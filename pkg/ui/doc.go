// Package ui renders console output for the wallgrab commands: per-link
// progress, the pacing countdown and end-of-run summaries. Color is applied
// with lipgloss only when stdout is a terminal.
package ui
