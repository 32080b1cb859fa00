// Package ui prints the interactive surface: colored status lines and the
// banner. Color is disabled for dumb terminals and when NO_COLOR is set.
package ui

import (
	"fmt"
	"os"
)

const (
	Reset  = "\x1b[0m"
	Bold   = "\x1b[1m"
	Dim    = "\x1b[2m"
	Red    = "\x1b[31m"
	Green  = "\x1b[32m"
	Yellow = "\x1b[33m"
	Blue   = "\x1b[34m"
	Cyan   = "\x1b[36m"
	Gray   = "\x1b[90m"
)

// SupportsColor reports whether stdout is worth coloring.
func SupportsColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// C wraps s in the given color code when the terminal supports it.
func C(s, color string) string {
	if !SupportsColor() {
		return s
	}
	return color + s + Reset
}

func Info(msg string) { fmt.Println(C("ℹ ", Blue) + msg) }
func OK(msg string)   { fmt.Println(C("✓ ", Green) + msg) }
func Warn(msg string) { fmt.Println(C("! ", Yellow) + msg) }
func Err(msg string)  { fmt.Println(C("✗ ", Red) + msg) }

// Banner prints the tool header once at interactive startup.
func Banner() {
	fmt.Println(C("codexlink", Bold+Cyan) + C(" — link codex to an OpenAI-compatible server", Dim))
}
