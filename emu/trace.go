package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosInstRetired marks the point after an instruction has executed.
// The hook item is the *StepResult of that instruction.
var HookPosInstRetired = &sim.HookPos{Name: "InstRetired"}

// TraceHook writes one line per retired instruction.
type TraceHook struct {
	w io.Writer
}

// NewTraceHook creates a TraceHook writing to w.
func NewTraceHook(w io.Writer) *TraceHook {
	return &TraceHook{w: w}
}

// Func implements sim.Hook.
func (h *TraceHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosInstRetired {
		return
	}

	result, ok := ctx.Item.(*StepResult)
	if !ok {
		return
	}

	_, _ = fmt.Fprintf(h.w, "0x%08x: %04x    %s\n", result.Addr, result.Word, result.Text)
}
