package cmd

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"grimm.is/converge/internal/i18n"
	"grimm.is/converge/internal/reconcile"
)

var (
	colorGood  = lipgloss.Color("#4ECDC4")
	colorAlert = lipgloss.Color("#FF6B6B")
	colorWarn  = lipgloss.Color("#FFE66D")
	colorMuted = lipgloss.Color("#6c757d")

	styleOK      = lipgloss.NewStyle().Foreground(colorGood)
	styleChanged = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	styleFailed  = lipgloss.NewStyle().Foreground(colorAlert).Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorMuted)
)

// printSummary writes one styled line per result plus the commands it ran
// (or, in dry-run, would run).
func printSummary(w io.Writer, results []reconcile.Result, dryRun bool) {
	for _, res := range results {
		switch {
		case res.Failed:
			styledLine(w, styleFailed, Printer.Sprintf(i18n.MsgFailed, res.Kind, res.Name, res.Msg))
		case res.Changed:
			styledLine(w, styleChanged, Printer.Sprintf(i18n.MsgChanged, res.Kind, res.Name, res.State))
		default:
			styledLine(w, styleOK, Printer.Sprintf(i18n.MsgUnchanged, res.Kind, res.Name, res.State))
		}

		msg := i18n.MsgApplied
		if dryRun {
			msg = i18n.MsgPlanned
		}
		for _, c := range res.Commands {
			styledLine(w, styleCommand, "  "+Printer.Sprintf(msg, c))
		}
	}
}

func styledLine(w io.Writer, style lipgloss.Style, line string) {
	Printer.Fprintln(w, style.Render(strings.TrimSuffix(line, "\n")))
}
