package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Logo printed by the root command
const Logo = `
 _ _ _ _____ __    __    _____ _____ _____ _____
| | | |  _  |  |  |  |  |   __| __  |  _  | __  |
| | | |     |  |__|  |__|  |  |    -|     | __ -|
|_____|__|__|_____|_____|_____|__|__|__|__|_____|
`

// Console writes colored progress messages for the CLI
type Console struct {
	out   io.Writer
	err   io.Writer
	quiet bool
	color bool

	blue    lipgloss.Style
	green   lipgloss.Style
	yellow  lipgloss.Style
	red     lipgloss.Style
	cyan    lipgloss.Style
	magenta lipgloss.Style
	dim     lipgloss.Style

	progress *Progress
}

// Options control console output
type Options struct {
	Quiet   bool
	NoColor bool
}

// NewConsole creates a console writing to stdout and stderr
func NewConsole(opts Options) *Console {
	return NewConsoleWithWriters(os.Stdout, os.Stderr, opts)
}

// NewConsoleWithWriters creates a console on arbitrary writers. Color is
// only used when out is a terminal.
func NewConsoleWithWriters(out, errOut io.Writer, opts Options) *Console {
	c := &Console{
		out:   out,
		err:   errOut,
		quiet: opts.Quiet,
		color: !opts.NoColor && isTerminal(out) && os.Getenv("NO_COLOR") == "",
	}

	r := lipgloss.NewRenderer(out)
	c.blue = r.NewStyle().Foreground(lipgloss.Color("12"))
	c.green = r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	c.yellow = r.NewStyle().Foreground(lipgloss.Color("11"))
	c.red = r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	c.cyan = r.NewStyle().Foreground(lipgloss.Color("14"))
	c.magenta = r.NewStyle().Foreground(lipgloss.Color("13"))
	c.dim = r.NewStyle().Faint(true)
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *Console) paint(s lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return s.Render(text)
}

func (c *Console) println(w io.Writer, s lipgloss.Style, msg string) {
	fmt.Fprintln(w, c.paint(s, msg))
}

// PrintLogo prints the logo
func (c *Console) PrintLogo() {
	if c.quiet {
		return
	}
	fmt.Fprint(c.out, c.paint(c.cyan, Logo))
}

// PrintError prints an error message in red on stderr. Errors are shown even
// in quiet mode.
func (c *Console) PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	c.println(c.err, c.red, msg)
}

// PrintSuccess prints a success message in green
func (c *Console) PrintSuccess(msg string) {
	if c.quiet {
		return
	}
	c.println(c.out, c.green, msg)
}

// PrintInfo prints a label and value
func (c *Console) PrintInfo(label string, value string) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "%s: %s\n", c.paint(c.cyan, label), c.paint(c.yellow, value))
}

// PrintWarning prints a warning message in yellow
func (c *Console) PrintWarning(msg string, args ...interface{}) {
	if c.quiet {
		return
	}
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	c.println(c.out, c.yellow, msg)
}

// PrintNotice prints an attention message in red on stdout
func (c *Console) PrintNotice(msg string) {
	if c.quiet {
		return
	}
	c.println(c.out, c.red, msg)
}

// PrintHighlight prints a highlighted message in magenta
func (c *Console) PrintHighlight(msg string) {
	if c.quiet {
		return
	}
	c.println(c.out, c.magenta, msg)
}

// Println prints an unstyled line
func (c *Console) Println(msg string) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, msg)
}

// Countdown redraws the pacing line. Zero clears it.
func (c *Console) Countdown(remaining int) {
	if c.quiet {
		return
	}
	if remaining <= 0 {
		fmt.Fprint(c.out, "\r"+strings.Repeat(" ", 30)+"\r")
		return
	}
	fmt.Fprint(c.out, "\r"+c.paint(c.yellow, fmt.Sprintf("Waiting %d second(s)...", remaining)))
}

// Attempt announces the download of one link
func (c *Console) Attempt(index, total int, url string) {
	if c.progress == nil || c.progress.Total != total {
		c.progress = NewProgress(total)
	}
	if c.quiet {
		return
	}
	c.println(c.out, c.blue, fmt.Sprintf("(%d/%d) Trying to download: '%s'...", index, total, url))
}

// Saved reports a successful download
func (c *Console) Saved(url string, files int) {
	if c.progress != nil {
		c.progress.Record(true)
	}
	c.PrintSuccess("Download succeeded!")
	if files == 0 {
		c.PrintWarning("No files found at " + url)
	}
}

// Failed reports a download that went to the failure ledger
func (c *Console) Failed(url string, reason error) {
	if c.progress != nil {
		c.progress.Record(false)
	}
	if reason != nil && !c.quiet {
		fmt.Fprintln(c.err, c.paint(c.dim, reason.Error()))
	}
	c.println(c.err, c.red, fmt.Sprintf("Couldn't download '%s'.", url))
}

// Progress returns the tracker for the current run, if any
func (c *Console) Progress() *Progress {
	return c.progress
}

// Stat is one labelled number in a summary block
type Stat struct {
	Label string
	Value int
}

// PrintStats prints a titled block of counts
func (c *Console) PrintStats(title string, stats []Stat) {
	if c.quiet {
		return
	}
	c.println(c.out, c.magenta, title)
	width := 0
	for _, s := range stats {
		if len(s.Label) > width {
			width = len(s.Label)
		}
	}
	for _, s := range stats {
		label := fmt.Sprintf("  %-*s", width, s.Label)
		fmt.Fprintf(c.out, "%s  %s\n", c.paint(c.cyan, label), c.paint(c.yellow, fmt.Sprintf("%d", s.Value)))
	}
}
