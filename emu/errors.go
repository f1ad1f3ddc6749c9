package emu

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyProgram is returned when loading a program with no words.
	ErrEmptyProgram = errors.New("program is empty")

	// ErrProgramLoaded is returned when program memory is already populated.
	ErrProgramLoaded = errors.New("program already loaded")
)

// FetchError reports an instruction fetch from an address that holds no
// program word.
type FetchError struct {
	Addr uint32
}

func (e *FetchError) Error() string {
	return fmt.Sprintf(
		"At pc=0x%08x Instruction fetched from a location outside of a code section (.text or .exceptions).",
		e.Addr)
}
