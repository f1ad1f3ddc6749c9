package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/thumbsim/insts"
)

// DefaultMaxInstructions bounds Run when no other limit is configured.
const DefaultMaxInstructions = 10000

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Addr is the address the instruction was fetched from.
	Addr uint32

	// Word is the raw instruction word.
	Word uint16

	// Text is the disassembly of the instruction.
	Text string

	// Err is set if the instruction could not be fetched.
	Err error
}

// Termination tells why Run stopped.
type Termination uint8

// Run terminations.
const (
	TerminationFetchFault Termination = iota
	TerminationStepLimit
)

func (t Termination) String() string {
	switch t {
	case TerminationFetchFault:
		return "fetch fault"
	case TerminationStepLimit:
		return "step limit"
	default:
		return fmt.Sprintf("Termination(%d)", uint8(t))
	}
}

// RunResult summarizes a call to Run.
type RunResult struct {
	Reason Termination
	Steps  uint64

	// Err is the *FetchError for TerminationFetchFault and nil otherwise.
	Err error
}

// Listing is one disassembled program word.
type Listing struct {
	Addr uint32
	Word uint16
	Text string
}

// Context carries one decoded instruction through dispatch.
type Context struct {
	Inst    *insts.Instruction
	Addr    uint32
	Execute bool
	Link    *insts.LinkState
	Text    string
}

// Emulator executes Thumb instructions functionally.
type Emulator struct {
	*sim.HookableBase

	regFile     *RegFile
	program     *Memory
	data        *Memory
	stack       *Memory
	decoder     *insts.Decoder
	trapHandler TrapHandler

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// I/O
	stdout io.Writer
	stderr io.Writer

	// Execution state
	link             insts.LinkState
	executing        bool
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithTrapHandler sets the handler for SWI, BKPT and undefined instructions.
func WithTrapHandler(handler TrapHandler) EmulatorOption {
	return func(e *Emulator) {
		e.trapHandler = handler
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.SetSP(sp)
	}
}

// WithStatus sets the initial CPSR value.
func WithStatus(cpsr uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.CPSR = cpsr
	}
}

// WithMaxInstructions sets the maximum number of instructions Run executes.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithEntryPoint sets the address of the first instruction Run executes.
// Bit 0 is ignored.
func WithEntryPoint(pc uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.R[RegPC] = pc &^ 1
	}
}

// NewEmulator creates a new Thumb emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := &RegFile{CPSR: ResetStatus}

	e := &Emulator{
		HookableBase:    sim.NewHookableBase(),
		regFile:         regFile,
		program:         NewMemory(),
		data:            NewMemory(),
		stack:           NewMemory(),
		decoder:         insts.NewDecoder(),
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		maxInstructions: DefaultMaxInstructions,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.alu = NewALU(regFile)
	e.lsu = NewLoadStoreUnit(regFile, e.data, e.stack)
	e.branchUnit = NewBranchUnit(regFile)

	if e.trapHandler == nil {
		e.trapHandler = NopTrapHandler{}
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Registers returns a copy of R0-R15.
func (e *Emulator) Registers() [16]uint32 {
	return e.regFile.R
}

// StatusRegister returns the CPSR.
func (e *Emulator) StatusRegister() uint32 {
	return e.regFile.CPSR
}

// ProgramMemory returns the program words in address order.
func (e *Emulator) ProgramMemory() []MemoryEntry { return e.program.Entries() }

// DataMemory returns the populated data words in address order.
func (e *Emulator) DataMemory() []MemoryEntry { return e.data.Entries() }

// StackMemory returns the populated stack words in address order.
func (e *Emulator) StackMemory() []MemoryEntry { return e.stack.Entries() }

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Executing reports whether the emulator has started executing.
func (e *Emulator) Executing() bool {
	return e.executing
}

// LoadProgram places words in program memory at addresses 0, 2, 4 and so on.
// Program memory is written once; nothing is modified on error.
func (e *Emulator) LoadProgram(words []uint16) error {
	if len(words) == 0 {
		return ErrEmptyProgram
	}
	if e.program.Len() != 0 {
		return ErrProgramLoaded
	}

	for i, w := range words {
		e.program.Write(uint32(i)*2, uint32(w))
	}

	return nil
}

// LoadData writes words to data memory at addr, addr+4 and so on. It
// preloads initialized data before Run and may be called more than once.
func (e *Emulator) LoadData(addr uint32, words []uint32) {
	for i, w := range words {
		e.data.Write(addr+uint32(i)*4, w)
	}
}

// Reset clears registers, memories and execution state. Options given to
// NewEmulator other than the initial register values stay in effect.
func (e *Emulator) Reset() {
	*e.regFile = RegFile{CPSR: ResetStatus}
	e.program = NewMemory()
	e.data = NewMemory()
	e.stack = NewMemory()
	e.lsu = NewLoadStoreUnit(e.regFile, e.data, e.stack)
	e.link = insts.LinkState{}
	e.executing = false
	e.instructionCount = 0
}

// DisassembleAll renders every program word in address order. It does not
// touch registers, flags or memory.
func (e *Emulator) DisassembleAll() []Listing {
	entries := e.program.Entries()
	listing := make([]Listing, 0, len(entries))

	var link insts.LinkState
	for _, entry := range entries {
		word := uint16(entry.Value)
		ctx := &Context{
			Inst: e.decoder.Decode(word),
			Addr: entry.Addr,
			Link: &link,
		}
		e.dispatch(ctx)

		listing = append(listing, Listing{Addr: entry.Addr, Word: word, Text: ctx.Text})
	}

	return listing
}

// Step executes a single instruction.
// A fetch from an address outside program memory returns a *FetchError and
// leaves all state unchanged.
func (e *Emulator) Step() StepResult {
	e.executing = true

	pc := e.regFile.PC()
	word, ok := e.program.Peek(pc)
	if !ok {
		return StepResult{Addr: pc, Err: &FetchError{Addr: pc}}
	}

	ctx := &Context{
		Inst:    e.decoder.Decode(uint16(word)),
		Addr:    pc,
		Execute: true,
		Link:    &e.link,
	}

	e.regFile.takePCWrite()
	e.dispatch(ctx)
	if !e.regFile.takePCWrite() {
		e.regFile.R[RegPC] = pc + 2
	}

	e.instructionCount++

	result := &StepResult{Addr: pc, Word: uint16(word), Text: ctx.Text}
	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    HookPosInstRetired,
		Item:   result,
	})

	return *result
}

// Run executes instructions until a fetch fails or the instruction limit is
// reached.
func (e *Emulator) Run() RunResult {
	var steps uint64
	for {
		if e.maxInstructions > 0 && steps >= e.maxInstructions {
			_, _ = fmt.Fprintf(e.stderr, "step limit of %d instructions exceeded\n", e.maxInstructions)
			return RunResult{Reason: TerminationStepLimit, Steps: steps}
		}

		result := e.Step()
		if result.Err != nil {
			_, _ = fmt.Fprintln(e.stderr, result.Err)
			return RunResult{Reason: TerminationFetchFault, Steps: steps, Err: result.Err}
		}
		steps++
	}
}

// dispatch renders the instruction and, in execute mode, runs it. The link
// state always advances.
func (e *Emulator) dispatch(ctx *Context) {
	ctx.Text = insts.Disassemble(ctx.Inst, ctx.Addr, *ctx.Link)
	if ctx.Execute {
		e.execute(ctx.Inst)
	}
	ctx.Link.Advance(ctx.Inst, ctx.Addr)
}

// execute runs a decoded instruction against the emulator state.
func (e *Emulator) execute(inst *insts.Instruction) {
	switch inst.Format {
	case insts.FormatShiftImm:
		e.executeShiftImm(inst)
	case insts.FormatAddSub:
		e.executeAddSub(inst)
	case insts.FormatImm8:
		e.executeImm8(inst)
	case insts.FormatALU:
		e.executeALU(inst)
	case insts.FormatHiReg:
		e.executeHiReg(inst)
	case insts.FormatLoadPC:
		e.executeLoadPC(inst)
	case insts.FormatLoadStoreReg, insts.FormatLoadStoreImm:
		e.executeLoadStore(inst)
	case insts.FormatLoadStoreSP:
		e.executeLoadStoreSP(inst)
	case insts.FormatAddress:
		e.executeAddress(inst)
	case insts.FormatAdjustSP:
		e.executeAdjustSP(inst)
	case insts.FormatExtend:
		e.executeExtend(inst)
	case insts.FormatReverse:
		e.executeReverse(inst)
	case insts.FormatPushPop:
		e.executePushPop(inst)
	case insts.FormatSystem:
		e.executeSystem(inst)
	case insts.FormatMultiple:
		e.executeMultiple(inst)
	case insts.FormatBranchCond:
		e.branchUnit.BCond(inst.Offset, inst.Cond)
	case insts.FormatBranch:
		e.branchUnit.B(inst.Offset)
	case insts.FormatLongBranch:
		e.executeLongBranch(inst)
	default:
		e.trap(TrapUndefined, inst)
	}
}

func (e *Emulator) trap(kind TrapKind, inst *insts.Instruction) {
	e.trapHandler.Handle(Trap{
		Kind: kind,
		Imm:  inst.Imm,
		Addr: e.regFile.PC(),
		Word: inst.Word,
	})
}
