package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/hook-guard/errors"
	"github.com/wippyai/hook-guard/guard"
)

var (
	acceptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#90EE90"))

	rejectStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// useColor resolves the color setting against the output stream.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type printer struct {
	w     io.Writer
	color bool
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p printer) accepted(path string, res guard.Result) {
	fmt.Fprintf(p.w, "%s %s\n", p.style(acceptStyle, "ACCEPT"), path)
	fmt.Fprintf(p.w, "  %s %d\n", p.style(labelStyle, "hook wce:"), res.Hook)
	if res.Cbak != 0 {
		fmt.Fprintf(p.w, "  %s %d\n", p.style(labelStyle, "cbak wce:"), res.Cbak)
	}
}

func (p printer) rejected(path string, err error) {
	code := errors.CodeOf(err)
	fmt.Fprintf(p.w, "%s %s\n", p.style(rejectStyle, "REJECT"), path)
	fmt.Fprintf(p.w, "  %s %s (%d)\n", p.style(labelStyle, "code:"), code, uint16(code))
	if desc := code.Description(); desc != "" {
		fmt.Fprintf(p.w, "  %s\n", p.style(dimStyle, desc))
	}
}
