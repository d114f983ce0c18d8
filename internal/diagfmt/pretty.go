package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/diag"
	"quill/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, loc, note *color.Color
	gutter, caret   *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		loc:    mk(color.Faint),
		note:   mk(color.FgGreen),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) string {
	label := sev.Label()
	switch sev {
	case diag.SevError:
		return p.err.Sprint(label)
	case diag.SevWarning:
		return p.warn.Sprint(label)
	}
	return p.info.Sprint(label)
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <sev> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(fs, d.Primary, opts.PathMode)
		if loc != "" {
			loc = p.loc.Sprint(loc) + ": "
		}
		if _, err := fmt.Fprintf(w, "%s%s %s: %s\n", loc, p.severity(d.Severity), p.code.Sprint(d.Code.ID()), d.Message); err != nil {
			return err
		}
		if err := snippet(w, fs, d.Primary, p, opts.Width, ""); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nloc := location(fs, n.Span, opts.PathMode)
			if nloc != "" {
				nloc += ": "
			}
			if _, err := fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("note:"), nloc, n.Msg); err != nil {
				return err
			}
			if err := snippet(w, fs, n.Span, p, opts.Width, "  "); err != nil {
				return err
			}
		}
	}
	return nil
}

// Short prints one line per diagnostic without source context.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) error {
	for _, d := range bag.Items() {
		loc := location(fs, d.Primary, mode)
		if loc != "" {
			loc += ": "
		}
		if _, err := fmt.Fprintf(w, "%s%s %s: %s\n", loc, d.Severity.Label(), d.Code.ID(), d.Message); err != nil {
			return err
		}
	}
	return nil
}

// location renders path:line:col, or "" for spans without a file.
func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if sp.IsZero() || fs == nil {
		return ""
	}
	f := fs.Get(sp.File)
	if f == nil {
		return ""
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, f, mode), start.Line, start.Col)
}

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		if rel, err := source.RelativePath(f.Path, fs.BaseDir()); err == nil {
			return rel
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	}
	return fs.DisplayPath(f, false)
}

// snippet prints the first line of sp with a caret underline. Tabs in the
// prefix are kept so the caret lines up in any terminal tab width.
func snippet(w io.Writer, fs *source.FileSet, sp source.Span, p palette, width uint8, indent string) error {
	if sp.IsZero() || fs == nil {
		return nil
	}
	f := fs.Get(sp.File)
	if f == nil {
		return nil
	}
	start, end := fs.Resolve(sp)
	text := f.Line(start.Line)
	if text == "" && start.Col <= 1 {
		return nil
	}

	col := int(start.Col) - 1
	if col > len(text) {
		col = len(text)
	}
	stop := len(text)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(text))
	}
	if stop < col {
		stop = col
	}

	var pad strings.Builder
	for _, r := range text[:col] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	marks := max(runewidth.StringWidth(text[col:stop]), 1)
	underline := "^" + strings.Repeat("~", marks-1)

	if width > 0 {
		text = runewidth.Truncate(text, int(width), "...")
	}
	num := strconv.FormatUint(uint64(start.Line), 10)
	blank := strings.Repeat(" ", len(num))
	if _, err := fmt.Fprintf(w, "%s%s %s %s\n", indent, p.gutter.Sprint(num), p.gutter.Sprint("|"), text); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s%s %s %s%s\n", indent, blank, p.gutter.Sprint("|"), pad.String(), p.caret.Sprint(underline))
	return err
}
