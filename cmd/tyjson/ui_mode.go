package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of --ui.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModeNames = map[string]uiMode{
	"":      uiModeAuto,
	"auto":  uiModeAuto,
	"on":    uiModeOn,
	"true":  uiModeOn,
	"off":   uiModeOff,
	"false": uiModeOff,
}

func readUIMode(value string) (uiMode, error) {
	if mode, ok := uiModeNames[strings.ToLower(strings.TrimSpace(value))]; ok {
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI reports whether to draw the progress view on stderr. In auto
// mode a single unit prints no view, and neither does a dumb terminal.
func shouldUseTUI(mode uiMode, units int) bool {
	if mode != uiModeAuto {
		return mode == uiModeOn
	}
	return units > 1 && os.Getenv("TERM") != "dumb" && isTerminal(os.Stderr)
}
