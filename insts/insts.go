// Package insts provides Thumb instruction definitions, decoding and
// disassembly.
//
// This package classifies 16-bit Thumb machine code into structured
// instruction representations. Every word is split into four nibbles
// (F0 = bits[15:12] .. F3 = bits[3:0]) and walked through a fixed priority
// tree that yields exactly one Op. It covers:
//   - Shifts, add/subtract and the 8-bit immediate forms
//   - The sixteen register ALU operations and the high-register forms
//   - Register, immediate and SP-relative loads and stores
//   - Push/pop, load/store multiple, extend, reverse and system control
//   - Conditional, unconditional, exchange and long (two halfword) branches
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x2005) // MOV R0, #5
//	fmt.Println(insts.Disassemble(inst, 0, insts.LinkState{}))
package insts
