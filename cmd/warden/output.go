package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spetersoncode/warden/workflow"
	"golang.org/x/term"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printOutput writes the run output, rendered as markdown on a terminal.
func printOutput(w io.Writer, out string) error {
	if isTerminal(w) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if rendered, err := r.Render(out); err == nil {
				_, err = io.WriteString(w, rendered)
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

// printSummary writes a one-line outcome of the run.
func printSummary(w io.Writer, res *workflow.Result) {
	out := termenv.NewOutput(w)
	color := "2"
	if !res.Completed() {
		color = "1"
	}
	status := out.String(string(res.Termination)).Foreground(out.Color(color)).Bold()
	fmt.Fprintf(w, "%s run %s: %s (%s)\n",
		status, res.RunID, strings.Join(res.Path, " -> "), res.Duration.Round(1e6))
	if res.Error != nil {
		fmt.Fprintf(w, "  %s\n", out.String(res.Error.Error()).Faint())
	}
}
