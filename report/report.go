// Package report renders the state of a finished simulation as text.
//
// A full report holds a dated banner, the disassembly listing, the
// register file, the CPSR bit table and dumps of the three memories, in
// that order.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/sarchlab/thumbsim/emu"
)

const (
	boxWidth     = 69
	cpsrWidth    = 97
	bannerWidth  = 76
	dateLayout   = "2006/01/02-15:04:05"
	boldOn       = "\x1b[1m"
	styleReset   = "\x1b[0m"
	addressLabel = "Adress"
)

// Writer writes report sections to an io.Writer.
type Writer struct {
	w        io.Writer
	emphasis bool
	width    int
	now      func() time.Time
	err      error
}

// Option configures a Writer.
type Option func(*Writer)

// WithEmphasis turns ANSI bold section titles on or off.
func WithEmphasis(on bool) Option {
	return func(rw *Writer) {
		rw.emphasis = on
	}
}

// WithWidth sets the width of the banner rule.
func WithWidth(width int) Option {
	return func(rw *Writer) {
		if width > 0 {
			rw.width = width
		}
	}
}

// WithClock sets the time source used for the banner date.
func WithClock(now func() time.Time) Option {
	return func(rw *Writer) {
		rw.now = now
	}
}

// TerminalOptions returns the options suited to f. Terminals get bold
// titles and a banner as wide as the window.
func TerminalOptions(f *os.File) []Option {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}

	opts := []Option{WithEmphasis(true)}
	if width, _, err := term.GetSize(fd); err == nil {
		opts = append(opts, WithWidth(width))
	}
	return opts
}

// NewWriter creates a report Writer.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	rw := &Writer{
		w:     w,
		width: bannerWidth,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(rw)
	}

	return rw
}

// Err returns the first write error, if any.
func (rw *Writer) Err() error {
	return rw.err
}

func (rw *Writer) printf(format string, args ...any) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format, args...)
}

// Full writes every section for e. source names the program input.
func (rw *Writer) Full(e *emu.Emulator, source string) error {
	rw.Banner(source)
	rw.Listing(e.DisassembleAll())
	rw.printf("\n")
	rw.Registers(e.Registers())
	rw.printf("\n")
	rw.CPSR(e.StatusRegister())
	rw.printf("\n")
	rw.ProgramMemory(e.ProgramMemory())
	rw.printf("\n")
	rw.DataMemory(e.DataMemory())
	rw.printf("\n")
	rw.StackMemory(e.StackMemory())
	rw.printf("\n")
	return rw.err
}

// Banner writes the header naming the input and the current date.
func (rw *Writer) Banner(source string) {
	rule := strings.Repeat("-", rw.width)
	rw.printf("%s\n", rule)
	rw.printf("%s\n", rw.title(fmt.Sprintf("%23sOutput referring to input %s", "", source)))
	rw.printf("Date: %s\n", rw.now().Format(dateLayout))
	rw.printf("%s\n", rule)
}

// Listing writes a .thumb listing, one tab-indented instruction per line.
func (rw *Writer) Listing(listing []emu.Listing) {
	rw.printf(".thumb\n")
	for _, l := range listing {
		rw.printf("\t%s\n", l.Text)
	}
}

// Registers writes R0 to R12 followed by SP, LR and PC.
func (rw *Writer) Registers(regs [16]uint32) {
	rw.box("Registers R0-R15", boxWidth)
	for i, v := range regs {
		switch uint8(i) {
		case emu.RegSP:
			rw.printf(" SP: 0x%08x\n", v)
		case emu.RegLR:
			rw.printf(" LR: 0x%08x\n", v)
		case emu.RegPC:
			rw.printf(" PC: 0x%08x\n", v)
		default:
			rw.printf("R%02d: 0x%08x\n", i, v)
		}
	}
}

// CPSR writes the status register one bit per column under a field legend.
func (rw *Writer) CPSR(cpsr uint32) {
	rw.box("Register CPSR", cpsrWidth)
	rw.printf("|31 30 29 28 27|26 25|24|23 22 21 20|19 18 17 16|15 14 13 12 11 10| 9  8 |7  6  5 |4  3  2  1  0|\n")
	rw.printf("| N  Z  C  V  Q| Res |J |    Res    |  GE[3:0]  |       Res       | E  A |I  F  T |    mode     |\n")

	var sb strings.Builder
	sb.WriteString("|")
	for i := 31; i > 0; i-- {
		fmt.Fprintf(&sb, "%2d ", cpsr>>i&1)
	}
	fmt.Fprintf(&sb, "%2d|", cpsr&1)
	rw.printf("%s\n", sb.String())

	rw.printf("|%45s%08x%43s\n", "0x", cpsr, "|")
	rw.printf("%s\n", strings.Repeat("-", cpsrWidth))
}

// ProgramMemory dumps the program halfwords.
func (rw *Writer) ProgramMemory(entries []emu.MemoryEntry) {
	rw.box("Program Memory", boxWidth)
	rw.printf("  %s    %8s\n", addressLabel, "Opcode")
	for _, e := range entries {
		rw.printf("0x%08x    0x%04x\n", e.Addr, e.Value)
	}
}

// DataMemory dumps every materialized data word.
func (rw *Writer) DataMemory(entries []emu.MemoryEntry) {
	rw.wordDump("Data Memory", entries)
}

// StackMemory dumps every materialized stack word.
func (rw *Writer) StackMemory(entries []emu.MemoryEntry) {
	rw.wordDump("Stack Memory", entries)
}

func (rw *Writer) wordDump(name string, entries []emu.MemoryEntry) {
	rw.box(name, boxWidth)
	rw.printf("  %s     %8s\n", addressLabel, "Data")
	for _, e := range entries {
		rw.printf("0x%08x    0x%08x\n", e.Addr, e.Value)
	}
}

// box writes a titled frame of the given width.
func (rw *Writer) box(name string, width int) {
	rule := strings.Repeat("-", width)
	inner := width - 2
	left := (inner - len(name)) / 2
	line := fmt.Sprintf("|%*s%s%*s|", left, "", name, inner-left-len(name), "")

	rw.printf("%s\n", rule)
	rw.printf("%s\n", rw.title(line))
	rw.printf("%s\n", rule)
}

func (rw *Writer) title(s string) string {
	if !rw.emphasis {
		return s
	}
	return boldOn + s + styleReset
}
