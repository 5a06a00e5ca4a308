// Package printer implements the terminal-facing diagnostic dumps named
// in spec.md §6's `print = "all" | "ast" | "code" | "none"` template
// metadata option: colorized, width-aware staged output for `gotpl
// generate -v` and `gotpl check`, in the spirit of the teacher's
// engine/debug.go DebugCompile (a sequence of `=== STAGE ===` banners
// dumping intermediate compiler state), upgraded from plain fmt.Println
// banners to color- and terminal-aware ones.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// bannerWidth is the fixed column width stage banners are centered
// within; there is no portable terminal-width query in the pack's
// dependency set, so a conservative constant stands in for it, the same
// way the teacher's own debug output never queried terminal size.
const bannerWidth = 72

const (
	colorReset  = "\x1b[0m"
	colorCyan   = "\x1b[36m"
	colorYellow = "\x1b[33m"
	colorGray   = "\x1b[90m"
)

// Mode is the decoded form of the `print=` template metadata option.
type Mode string

const (
	ModeNone Mode = "none"
	ModeAST  Mode = "ast"
	ModeCode Mode = "code"
	ModeAll  Mode = "all"
)

// ParseMode decodes a `print=` value, defaulting unrecognized or empty
// input to ModeNone.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeAST, ModeCode, ModeAll:
		return Mode(s)
	default:
		return ModeNone
	}
}

// ShowsAST reports whether m calls for the AST dump stage.
func (m Mode) ShowsAST() bool { return m == ModeAST || m == ModeAll }

// ShowsCode reports whether m calls for the generated-code dump stage.
func (m Mode) ShowsCode() bool { return m == ModeCode || m == ModeAll }

// Printer writes staged diagnostic dumps to an underlying writer,
// colorizing output only when that writer is a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// New wraps w. When w is *os.File and refers to a terminal (checked via
// go-isatty, the same detection the pack's CLI-facing repos use before
// deciding to colorize), output is routed through go-colorable so ANSI
// sequences render correctly on Windows consoles too; otherwise color
// codes are omitted entirely rather than left to leak into redirected
// output or log files.
func New(w io.Writer) *Printer {
	f, ok := w.(*os.File)
	if !ok {
		return &Printer{w: w}
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return &Printer{w: w}
	}
	return &Printer{w: colorable.NewColorable(f), color: true}
}

func (p *Printer) colorize(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + colorReset
}

// Section writes a centered, rune-width-aware banner line for title,
// then a trailing newline, matching engine/debug.go's "=== STAGE ==="
// dividers but accounting for titles containing wide or multi-byte
// runes (go-runewidth.StringWidth, rather than len(title), decides how
// much padding to add) so the banner still lines up at a real terminal
// width.
func (p *Printer) Section(title string) {
	label := fmt.Sprintf(" %s ", title)
	pad := bannerWidth - displayWidth(label)
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	right := pad - left
	banner := strings.Repeat("=", left) + label + strings.Repeat("=", right)
	fmt.Fprintln(p.w, p.colorize(colorCyan, banner))
}

// Dump writes label as a dim sub-heading followed by body, indented two
// spaces per line so it reads as nested under the enclosing Section.
func (p *Printer) Dump(label, body string) {
	fmt.Fprintln(p.w, p.colorize(colorYellow, label+":"))
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		fmt.Fprintln(p.w, p.colorize(colorGray, "  "+line))
	}
}

// displayWidth measures s's terminal column width one grapheme cluster
// at a time via uniseg, summing each cluster's go-runewidth rather than
// measuring the whole string at once: a cluster can combine several
// runes (an emoji plus a variation selector, a base letter plus a
// combining accent) into one printed column, which runewidth.StringWidth
// alone — built around single runes — would overcount. Template file
// paths and content titles are otherwise unrestricted input, so banner
// centering uses this rather than byte or rune length.
func displayWidth(s string) int {
	width := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		width += runewidth.StringWidth(gr.Str())
	}
	return width
}

// Linef writes a single unformatted diagnostic line.
func (p *Printer) Linef(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
