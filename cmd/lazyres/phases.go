package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"lazyres/internal/phase"
)

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "List resolve phases in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		writePhaseTable(cmd.OutOrStdout())
		return nil
	},
}

var (
	lazyColor   = color.New(color.FgCyan)
	pluginColor = color.New(color.FgMagenta)
	eagerColor  = color.New(color.FgYellow)
)

func writePhaseTable(out io.Writer) {
	width := 0
	for _, p := range phase.All() {
		width = max(width, runewidth.StringWidth(p.String()))
	}
	for _, p := range phase.All() {
		fmt.Fprintf(out, "%2d  %s  %s\n", int(p), runewidth.FillRight(p.String(), width), phaseTag(p))
	}
}

func phaseTag(p phase.Phase) string {
	switch {
	case p.IsNonLazy():
		return eagerColor.Sprint("file")
	case p.IsPlugin():
		return pluginColor.Sprint("plugin")
	default:
		return lazyColor.Sprint("lazy")
	}
}
