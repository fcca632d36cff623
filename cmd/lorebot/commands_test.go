package main

import (
	"strings"
	"testing"
)

func TestValidCategory(t *testing.T) {
	if !validCategory("maps") {
		t.Error("maps rejected")
	}
	if validCategory("weather") {
		t.Error("unknown category accepted")
	}
}

func TestColorize_NoColor(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	if got := colorize(colorGreen, "done"); strings.Contains(got, "\033") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", got)
	}

	noColor = false
	if got := colorize(colorGreen, "done"); !strings.Contains(got, colorGreen) {
		t.Errorf("colorize without noColor should contain the color code, got %q", got)
	}
}
