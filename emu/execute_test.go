package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/thumbsim/emu"
)

var _ = Describe("Execute", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator(
			emu.WithStderr(&bytes.Buffer{}),
			emu.WithStackPointer(0x8000),
		)
	})

	run := func(words ...uint16) {
		Expect(e.LoadProgram(words)).To(Succeed())
		e.Run()
	}

	reg := func(r int) uint32 {
		return e.Registers()[r]
	}

	// Each entry runs MOV R0, #0xF0; MOV R1, #0x0F; <op> R0, R1.
	DescribeTable("register ALU operations",
		func(word uint16, want uint32, n, z bool) {
			run(0x20F0, 0x210F, word)

			Expect(reg(0)).To(Equal(want))
			Expect(reg(1)).To(Equal(uint32(0x0F)))
			Expect(e.RegFile().N()).To(Equal(n))
			Expect(e.RegFile().Z()).To(Equal(z))
		},
		Entry("AND", uint16(0x4008), uint32(0), false, true),
		Entry("EOR", uint16(0x4048), uint32(0xFF), false, false),
		Entry("LSL", uint16(0x4088), uint32(0x00780000), false, false),
		Entry("LSR", uint16(0x40C8), uint32(0), false, true),
		Entry("ASR", uint16(0x4108), uint32(0), false, true),
		Entry("ROR", uint16(0x41C8), uint32(0x01E00000), false, false),
		Entry("TST leaves Rd", uint16(0x4208), uint32(0xF0), false, true),
		Entry("NEG", uint16(0x4248), uint32(0xFFFFFFF1), true, false),
		Entry("CMN leaves Rd", uint16(0x42C8), uint32(0xF0), false, false),
		Entry("ORR", uint16(0x4308), uint32(0xFF), false, false),
		Entry("MUL", uint16(0x4348), uint32(0xE10), false, false),
		Entry("BIC", uint16(0x4388), uint32(0xF0), false, false),
		Entry("MVN", uint16(0x43C8), uint32(0xFFFFFFF0), true, false),
	)

	It("should shift a register out entirely by 32", func() {
		run(
			0x2001, // MOV R0, #1
			0x2120, // MOV R1, #32
			0x4088, // LSL R0, R1
		)

		Expect(reg(0)).To(BeZero())
		Expect(e.RegFile().C()).To(BeTrue())
		Expect(e.RegFile().Z()).To(BeTrue())
	})

	It("should set C from CMN when the sum wraps", func() {
		run(
			0x2000, // MOV R0, #0
			0x43C0, // MVN R0, R0
			0x2101, // MOV R1, #1
			0x42C8, // CMN R0, R1
		)

		Expect(reg(0)).To(Equal(uint32(0xFFFFFFFF)))
		Expect(e.RegFile().Z()).To(BeTrue())
		Expect(e.RegFile().C()).To(BeTrue())
	})

	// Each entry builds R1 = 0x8180 and then runs <op> R0, R1.
	DescribeTable("extend and reverse",
		func(word uint16, want uint32) {
			run(
				0x2181, // MOV R1, #0x81
				0x0209, // LSL R1, R1, #8
				0x3180, // ADD R1, #0x80
				word,
			)

			Expect(reg(1)).To(Equal(uint32(0x8180)))
			Expect(reg(0)).To(Equal(want))
		},
		Entry("SXTH", uint16(0xB208), uint32(0xFFFF8180)),
		Entry("SXTB", uint16(0xB248), uint32(0xFFFFFF80)),
		Entry("UXTH", uint16(0xB288), uint32(0x8180)),
		Entry("UXTB", uint16(0xB2C8), uint32(0x80)),
		Entry("REV", uint16(0xBA08), uint32(0x80810000)),
		Entry("REV16", uint16(0xBA48), uint32(0x8081)),
		Entry("REVSH", uint16(0xBAC8), uint32(0xFFFF8081)),
	)

	Describe("address arithmetic", func() {
		It("should add to the word-aligned PC for ADR", func() {
			run(
				0x2200, // MOV R2, #0
				0xA001, // ADR R0, #4 at address 2
			)

			Expect(reg(0)).To(Equal(uint32(8)))
		})

		It("should add to SP for ADD Ld, SP", func() {
			run(0xA902) // ADD R1, SP, #8

			Expect(reg(1)).To(Equal(uint32(0x8008)))
			Expect(e.RegFile().SP()).To(Equal(uint32(0x8000)))
		})

		It("should adjust SP by scaled immediates", func() {
			Expect(e.LoadProgram([]uint16{
				0xB004, // ADD SP, #16
				0xB082, // SUB SP, #8
			})).To(Succeed())

			e.Step()
			Expect(e.RegFile().SP()).To(Equal(uint32(0x8010)))

			e.Step()
			Expect(e.RegFile().SP()).To(Equal(uint32(0x8008)))
		})
	})

	It("should leave flags unchanged for forms that do not set them", func() {
		Expect(e.LoadProgram([]uint16{
			0x2000, // MOV R0, #0
			0xB001, // ADD SP, #4
			0xB081, // SUB SP, #4
			0x4440, // ADD R0, R8
			0x4680, // MOV R8, R0
			0xA100, // ADR R1, #0
			0xAA02, // ADD R2, SP, #8
			0xB2C0, // UXTB R0, R0
			0xBA00, // REV R0, R0
			0x9000, // STR R0, [SP, #0]
			0x9B00, // LDR R3, [SP, #0]
		})).To(Succeed())

		e.Step()
		status := e.StatusRegister()
		Expect(e.RegFile().Z()).To(BeTrue())

		e.Run()

		Expect(e.StatusRegister()).To(Equal(status))
		Expect(reg(0)).To(BeZero())
	})

	It("should route SP-relative LDR and STR to data memory", func() {
		run(
			0x2007, // MOV R0, #7
			0x9001, // STR R0, [SP, #4]
			0x9901, // LDR R1, [SP, #4]
		)

		Expect(reg(1)).To(Equal(uint32(7)))
		Expect(e.DataMemory()).To(Equal([]emu.MemoryEntry{{Addr: 0x8004, Value: 7}}))
		Expect(e.StackMemory()).To(BeEmpty())
	})

	DescribeTable("byte and halfword loads of a negative word",
		func(load uint16, want uint32) {
			run(
				0x2140, // MOV R1, #0x40
				0x2080, // MOV R0, #0x80
				0xB240, // SXTB R0, R0
				0x6008, // STR R0, [R1, #0]
				0x2200, // MOV R2, #0
				load,
			)

			Expect(reg(0)).To(Equal(uint32(0xFFFFFF80)))
			Expect(reg(3)).To(Equal(want))
		},
		Entry("LDRSB", uint16(0x568B), uint32(0xFFFFFF80)),
		Entry("LDRSH", uint16(0x5E8B), uint32(0xFFFFFF80)),
		Entry("LDRB register", uint16(0x5C8B), uint32(0x80)),
		Entry("LDRH register", uint16(0x5A8B), uint32(0xFF80)),
		Entry("LDRB immediate", uint16(0x780B), uint32(0x80)),
		Entry("LDRH immediate", uint16(0x880B), uint32(0xFF80)),
		Entry("LDR register", uint16(0x588B), uint32(0xFFFFFF80)),
	)

	DescribeTable("byte and halfword stores",
		func(prefix []uint16, byteWord, halfWord uint32) {
			run(append(prefix,
				0x2140, // MOV R1, #0x40
				0x2080, // MOV R0, #0x80
				0xB240, // SXTB R0, R0
				0x7108, // STRB R0, [R1, #4]
				0x8108, // STRH R0, [R1, #8]
			)...)

			Expect(e.DataMemory()).To(Equal([]emu.MemoryEntry{
				{Addr: 0x44, Value: byteWord},
				{Addr: 0x48, Value: halfWord},
			}))
		},
		Entry("little endian", []uint16{}, uint32(0xFFFFFF80), uint32(0xFFFFFF80)),
		Entry("big endian", []uint16{0xB658}, uint32(0x80), uint32(0x80FF)),
	)

	Describe("high register writes to PC", func() {
		It("should branch for MOV PC, Rm", func() {
			run(
				0x2108, // MOV R1, #8
				0x468F, // MOV PC, R1
				0x2001, // MOV R0, #1
				0x2001, // MOV R0, #1
				0x2202, // MOV R2, #2
			)

			Expect(reg(0)).To(BeZero())
			Expect(reg(2)).To(Equal(uint32(2)))
			Expect(e.RegFile().PC()).To(Equal(uint32(0xA)))
		})

		It("should branch relative to PC + 4 for ADD PC, Rm", func() {
			run(
				0x2102, // MOV R1, #2
				0x448F, // ADD PC, R1 at address 2
				0x2001, // MOV R0, #1
				0x2001, // MOV R0, #1
				0x2202, // MOV R2, #2
			)

			Expect(reg(0)).To(BeZero())
			Expect(reg(2)).To(Equal(uint32(2)))
		})

		It("should clear bit 0 of the target", func() {
			run(
				0x2105, // MOV R1, #5
				0x468F, // MOV PC, R1
				0x2001, // MOV R0, #1
			)

			Expect(reg(0)).To(Equal(uint32(1)))
		})
	})
})
