package emu

import (
	"math/bits"
	"slices"
)

// Size is the width of a data access.
type Size uint8

// Access sizes.
const (
	SizeByte Size = 1
	SizeHalf Size = 2
	SizeWord Size = 4
)

// MemoryEntry is one populated memory location.
type MemoryEntry struct {
	Addr  uint32
	Value uint32
}

// Memory is a sparse word store. Every address holds one 32-bit word.
// Reading an address that was never written creates it with value 0.
type Memory struct {
	words map[uint32]uint32
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]uint32)}
}

// Read returns the word at addr, materializing it as 0 on first touch.
func (m *Memory) Read(addr uint32) uint32 {
	v, ok := m.words[addr]
	if !ok {
		m.words[addr] = 0
	}
	return v
}

// Peek returns the word at addr without materializing it.
func (m *Memory) Peek(addr uint32) (uint32, bool) {
	v, ok := m.words[addr]
	return v, ok
}

// Write stores a word at addr.
func (m *Memory) Write(addr, value uint32) {
	m.words[addr] = value
}

// Len returns the number of populated addresses.
func (m *Memory) Len() int {
	return len(m.words)
}

// Entries returns all populated locations in ascending address order.
func (m *Memory) Entries() []MemoryEntry {
	entries := make([]MemoryEntry, 0, len(m.words))
	for addr, v := range m.words {
		entries = append(entries, MemoryEntry{Addr: addr, Value: v})
	}
	slices.SortFunc(entries, func(a, b MemoryEntry) int {
		switch {
		case a.Addr < b.Addr:
			return -1
		case a.Addr > b.Addr:
			return 1
		default:
			return 0
		}
	})
	return entries
}

// Load performs a sized read.
//
// Little endian reads mask the stored word to size. A signed read fills the
// upper bits when the stored word is negative. Big endian reads byte-swap the
// size-relevant bytes first and sign-extend from the top bit of the result.
func (m *Memory) Load(addr uint32, size Size, signed, bigEndian bool) uint32 {
	stored, ok := m.words[addr]
	if !ok {
		m.words[addr] = 0
		return 0
	}

	if !bigEndian {
		negative := signed && int32(stored) < 0
		switch size {
		case SizeByte:
			v := stored & 0xFF
			if negative {
				v |= 0xFFFFFF00
			}
			return v
		case SizeHalf:
			v := stored & 0xFFFF
			if negative {
				v |= 0xFFFF0000
			}
			return v
		default:
			return stored
		}
	}

	switch size {
	case SizeByte:
		if signed {
			return uint32(int32(int8(stored)))
		}
		return stored & 0xFF
	case SizeHalf:
		h := bits.ReverseBytes16(uint16(stored))
		if signed {
			return uint32(int32(int16(h)))
		}
		return uint32(h)
	default:
		return bits.ReverseBytes32(stored)
	}
}

// Store performs a sized write. Little endian stores keep the raw value.
// Big endian stores byte-swap the size-relevant bytes.
func (m *Memory) Store(addr, value uint32, size Size, bigEndian bool) {
	if !bigEndian {
		m.words[addr] = value
		return
	}

	switch size {
	case SizeByte:
		m.words[addr] = value & 0xFF
	case SizeHalf:
		m.words[addr] = uint32(bits.ReverseBytes16(uint16(value)))
	default:
		m.words[addr] = bits.ReverseBytes32(value)
	}
}
