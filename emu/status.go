package emu

// CPSR bits.
const (
	StatusN uint32 = 1 << 31 // Negative
	StatusZ uint32 = 1 << 30 // Zero
	StatusC uint32 = 1 << 29 // Carry
	StatusV uint32 = 1 << 28 // Overflow
	StatusE uint32 = 1 << 9  // Data endianness, 1 = big endian
	StatusA uint32 = 1 << 8  // Imprecise abort mask
	StatusI uint32 = 1 << 7  // IRQ mask
	StatusF uint32 = 1 << 6  // FIQ mask
	StatusT uint32 = 1 << 5  // Thumb state
)

// Processor modes held in CPSR[4:0].
const (
	ModeMask       uint32 = 0x1F
	ModeUser       uint32 = 0x10
	ModeFIQ        uint32 = 0x11
	ModeIRQ        uint32 = 0x12
	ModeSupervisor uint32 = 0x13
	ModeAbort      uint32 = 0x17
	ModeUndefined  uint32 = 0x1B
	ModeSystem     uint32 = 0x1F
)

// ResetStatus is the CPSR after reset: interrupts masked, Thumb state,
// supervisor mode.
const ResetStatus = StatusI | StatusF | StatusT | ModeSupervisor

// Flag reports whether all bits of mask are set in the CPSR.
func (r *RegFile) Flag(mask uint32) bool {
	return r.CPSR&mask == mask
}

// SetFlag sets or clears the CPSR bits in mask. Other bits are untouched.
func (r *RegFile) SetFlag(mask uint32, set bool) {
	if set {
		r.CPSR |= mask
	} else {
		r.CPSR &^= mask
	}
}

// N returns the negative flag.
func (r *RegFile) N() bool { return r.Flag(StatusN) }

// Z returns the zero flag.
func (r *RegFile) Z() bool { return r.Flag(StatusZ) }

// C returns the carry flag.
func (r *RegFile) C() bool { return r.Flag(StatusC) }

// V returns the overflow flag.
func (r *RegFile) V() bool { return r.Flag(StatusV) }

// BigEndian reports whether data accesses are big endian.
func (r *RegFile) BigEndian() bool { return r.Flag(StatusE) }
