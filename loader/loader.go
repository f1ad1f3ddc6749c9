// Package loader reads Thumb programs from disk.
//
// Two formats are accepted: 32-bit little-endian ARM ELF executables and
// the plain hex-dump format, where every line holds one 32-bit word:
//
//	00: 30032005
//	04: 0000E7FE
//
// Either way the result is a Program whose Words can be handed to
// emu.Emulator.LoadProgram.
package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// Format names the on-disk format a Program was read from.
type Format int

const (
	// FormatHexDump is the "addr: word" text format.
	FormatHexDump Format = iota
	// FormatELF is a 32-bit ARM ELF executable.
	FormatELF
)

func (f Format) String() string {
	if f == FormatELF {
		return "elf"
	}
	return "hexdump"
}

// Program represents a loaded program ready for execution.
type Program struct {
	// Words holds the halfwords of the code image. Words[i] is loaded at
	// address 2*i.
	Words []uint16
	// EntryPoint is the ELF entry address. It is 0 for hex dumps.
	EntryPoint uint32
	// CodeBase is the address Words[0] is linked at.
	CodeBase uint32
	// Segments contains the loadable ELF segments. Hex dumps have none.
	Segments []Segment
	// Format is the format the program was read from.
	Format Format
}

// StartPC returns the entry point relative to the code image, which the
// emulator loads at address 0.
func (p *Program) StartPC() uint32 {
	return (p.EntryPoint - p.CodeBase) &^ 1
}

// DataSegments returns the loadable segments that are not executable.
func (p *Program) DataSegments() []Segment {
	var segs []Segment
	for _, seg := range p.Segments {
		if seg.Flags&SegmentFlagExecute == 0 {
			segs = append(segs, seg)
		}
	}
	return segs
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads the program at path. Files starting with the ELF magic are
// parsed as ELF, everything else as a hex dump.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	head, _ := r.Peek(len(elfMagic))
	if bytes.Equal(head, elfMagic) {
		return LoadELF(path)
	}

	words, err := ParseHexDump(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Program{Words: words, Format: FormatHexDump}, nil
}
