// Package testutil collects helpers shared by the package tests.
package testutil

import (
	"regexp"
	"testing"

	"github.com/agbru/mbcalc/internal/ui"
)

// ansiRegex matches CSI sequences (ESC '[' params letter).
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes from s.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// PlainTheme switches the process theme to NoColorTheme for the duration of
// the test. Callers must not run in parallel with tests that read the theme.
func PlainTheme(tb testing.TB) {
	tb.Helper()
	prev := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	tb.Cleanup(func() { ui.SetCurrentTheme(prev) })
}
