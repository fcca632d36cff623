package main

import (
	"fmt"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// printTag writes a tagged status line to stderr. All CLI progress output
// goes to stderr so stdout stays clean for command results.
func printTag(color, tag, format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(color, tag+" "+fmt.Sprintf(format, args...)))
}

func printStep(format string, args ...any) {
	printTag(colorCyan, "→", format, args...)
}

func printSuccess(format string, args ...any) {
	printTag(colorGreen, "✓", format, args...)
}

func printWarning(format string, args ...any) {
	printTag(colorYellow, "⚠", format, args...)
}

func printError(format string, args ...any) {
	printTag(colorRed, "✗", format, args...)
}
