package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode is the value of --ui. It satisfies pflag.Value so cobra
// rejects bad input while parsing flags.
type progressMode uint8

const (
	progressAuto progressMode = iota
	progressOn
	progressOff
)

var progressModeNames = [...]string{
	progressAuto: "auto",
	progressOn:   "on",
	progressOff:  "off",
}

func (m progressMode) String() string { return progressModeNames[m] }

func (*progressMode) Type() string { return "auto|on|off" }

func (m *progressMode) Set(value string) error {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		*m = progressAuto
		return nil
	}
	for i, name := range progressModeNames {
		if name == key {
			*m = progressMode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// interactive decides whether the bubbletea progress view runs. Only the
// text summary shares the terminal with it.
func (m progressMode) interactive(format string, quiet bool) bool {
	if quiet || format != "text" {
		return false
	}
	switch m {
	case progressOn:
		return true
	case progressOff:
		return false
	}
	return isTerminal(os.Stdout)
}
