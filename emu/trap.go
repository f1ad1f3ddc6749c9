package emu

import "fmt"

// TrapKind identifies why control was handed to the trap handler.
type TrapKind uint8

// Trap kinds.
const (
	TrapSoftwareInterrupt TrapKind = iota // SWI #imm8
	TrapBreakpoint                        // BKPT #imm8
	TrapUndefined                         // Unallocated encoding
)

func (k TrapKind) String() string {
	switch k {
	case TrapSoftwareInterrupt:
		return "SWI"
	case TrapBreakpoint:
		return "BKPT"
	case TrapUndefined:
		return "UNDEFINED"
	default:
		return fmt.Sprintf("TrapKind(%d)", uint8(k))
	}
}

// Trap describes one exception-generating instruction.
type Trap struct {
	Kind TrapKind
	Imm  uint32 // Comment field of SWI/BKPT
	Addr uint32 // Address of the instruction
	Word uint16 // Raw instruction word
}

// TrapHandler is the interface for handling SWI, BKPT and undefined
// instructions. There are no exception vectors; the handler sees the trap
// and execution continues with the next instruction.
type TrapHandler interface {
	Handle(trap Trap)
}

// NopTrapHandler ignores every trap.
type NopTrapHandler struct{}

// Handle does nothing.
func (NopTrapHandler) Handle(Trap) {}
