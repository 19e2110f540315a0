package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/cmmoran/filecaster/internal/parser"
	"github.com/cmmoran/filecaster/pkg/action/check"
)

// reporter prints diagnostics and check findings, colored on terminals.
type reporter struct {
	w                         io.Writer
	pos, bad, warn, ok, faint func(format string, a ...any) string
}

func newReporter(f *os.File) *reporter {
	colors := []*color.Color{
		color.New(color.Bold),
		color.New(color.FgRed, color.Bold),
		color.New(color.FgYellow),
		color.New(color.FgGreen),
		color.New(color.Faint),
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return &reporter{
		w:     f,
		pos:   colors[0].SprintfFunc(),
		bad:   colors[1].SprintfFunc(),
		warn:  colors[2].SprintfFunc(),
		ok:    colors[3].SprintfFunc(),
		faint: colors[4].SprintfFunc(),
	}
}

// errors prints one line per diagnostic found in err.
func (r *reporter) errors(err error) {
	for _, d := range parser.Diagnostics(err) {
		if d.Pos.IsValid() {
			_, _ = fmt.Fprintf(r.w, "%s: ", r.pos("%s", d.Pos))
		}
		msg := d.Err.Error()
		if d.Msg != "" {
			msg += ": " + d.Msg
		}
		_, _ = fmt.Fprintln(r.w, r.bad("error")+": "+msg)
	}
}

func (r *reporter) findings(findings []check.Finding, showDiff bool) {
	for _, f := range findings {
		status := r.warn("%s", f.Status)
		if f.Status == check.StatusMissing {
			status = r.bad("%s", f.Status)
		}
		_, _ = fmt.Fprintf(r.w, "%s: %s\n", r.pos("%s", f.File), status)
		if showDiff && f.Diff != "" {
			_, _ = fmt.Fprintln(r.w, r.faint("%s", f.Diff))
		}
	}
}

func (r *reporter) success(format string, a ...any) {
	_, _ = fmt.Fprintln(r.w, r.ok(format, a...))
}
