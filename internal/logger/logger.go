package logger

import (
	"fmt"
	"strings"
)

// ANSI colors. Terminals without color support print the escapes verbatim,
// which is acceptable for a local tool.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func line(color, level, tag, msg string) {
	fmt.Printf("%s[%s]%s %s%-8s%s %s\n", color, level, reset, bold, tag, reset, msg)
}

// Info prints an informational message with a component tag.
func Info(tag, msg string) {
	line(cyan, " INFO ", tag, msg)
}

// Success prints a success message with a component tag.
func Success(tag, msg string) {
	line(green, "  OK  ", tag, msg)
}

// Warn prints a warning message with a component tag.
func Warn(tag, msg string) {
	line(yellow, " WARN ", tag, msg)
}

// Error prints an error message with a component tag.
func Error(tag, msg string) {
	line(red, " FAIL ", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%s", bold, cyan)
	fmt.Println("  ┌─────────────────────────────────────┐")
	fmt.Printf("  │  EVE Manufacturing Analyzer  %-6s │\n", version)
	fmt.Println("  └─────────────────────────────────────┘")
	fmt.Print(reset)
}

// Section prints a titled separator for grouped output.
func Section(title string) {
	fmt.Printf("\n%s── %s %s%s\n", dim, title, strings.Repeat("─", max(0, 40-len(title))), reset)
}

// Stats prints a single labelled statistic.
func Stats(label string, value int) {
	fmt.Printf("  %-24s %d\n", label, value)
}
