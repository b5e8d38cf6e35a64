package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"lazyres/internal/diag"
	"lazyres/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строки исходника с ^ под колонкой, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := prettyPrinter{w: w, fs: fs, opts: opts, lines: make(map[source.FileID][]string)}
	for _, d := range bag.Items() {
		p.diagnostic(d)
	}
}

type prettyPrinter struct {
	w     io.Writer
	fs    *source.FileSet
	opts  PrettyOpts
	lines map[source.FileID][]string
}

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	infoStyle    = color.New(color.FgCyan)
	noteStyle    = color.New(color.FgBlue)
	gutterStyle  = color.New(color.Faint)
)

func (p *prettyPrinter) paint(c *color.Color, s string) string {
	if !p.opts.Color {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

func (p *prettyPrinter) diagnostic(d diag.Diagnostic) {
	sev := severityStyle(d.Severity)
	fmt.Fprintf(p.w, "%s: %s %s: %s\n",
		p.position(d.Primary),
		p.paint(sev, d.Severity.String()),
		d.Code.ID(),
		d.Message)
	p.context(d.Primary)
	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		fmt.Fprintf(p.w, "  %s: %s: %s\n", p.paint(noteStyle, "note"), p.position(n.Span), n.Msg)
	}
}

func (p *prettyPrinter) position(sp source.Span) string {
	path := formatPath(p.fs, sp.File, p.opts.PathMode)
	if path == "" {
		return sp.String()
	}
	if sp.Empty() {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, sp.Line, sp.Col)
}

// context prints up to opts.Context lines before the primary line, the
// line itself and a caret under its column.
func (p *prettyPrinter) context(sp source.Span) {
	if p.opts.Context <= 0 || sp.Empty() {
		return
	}
	lines := p.source(sp.File)
	at := int(sp.Line) - 1
	if at >= len(lines) {
		return
	}
	first := max(0, at-int(p.opts.Context)+1)
	width := len(fmt.Sprint(at + 1))
	for i := first; i <= at; i++ {
		gutter := fmt.Sprintf("%*d |", width, i+1)
		fmt.Fprintf(p.w, " %s %s\n", p.paint(gutterStyle, gutter), lines[i])
	}
	col := max(1, int(sp.Col))
	gutter := strings.Repeat(" ", width) + " |"
	fmt.Fprintf(p.w, " %s %s%s\n", p.paint(gutterStyle, gutter), strings.Repeat(" ", col-1), p.paint(errorStyle, "^"))
}

func (p *prettyPrinter) source(id source.FileID) []string {
	if lines, ok := p.lines[id]; ok {
		return lines
	}
	var lines []string
	if p.fs == nil {
		return nil
	}
	if f := p.fs.Get(id); f != nil {
		if fh, err := os.Open(f.Path); err == nil {
			sc := bufio.NewScanner(fh)
			for sc.Scan() {
				lines = append(lines, sc.Text())
			}
			fh.Close()
		}
	}
	p.lines[id] = lines
	return lines
}

func severityStyle(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorStyle
	case diag.SevWarning:
		return warningStyle
	default:
		return infoStyle
	}
}
