package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/thumbsim/insts"
)

var _ = Describe("Disassemble", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	text := func(word uint16, addr uint32) string {
		return insts.Disassemble(decoder.Decode(word), addr, insts.LinkState{})
	}

	DescribeTable("rendering",
		func(word uint16, addr uint32, expected string) {
			Expect(text(word, addr)).To(Equal(expected))
		},
		Entry(nil, uint16(0x0088), uint32(0), "LSL R0, R1, #2"),
		Entry(nil, uint16(0x0808), uint32(0), "LSR R0, R1, #32"),
		Entry(nil, uint16(0x1888), uint32(0), "ADD R0, R1, R2"),
		Entry(nil, uint16(0x1EC8), uint32(0), "SUB R0, R1, #3"),
		Entry(nil, uint16(0x2005), uint32(0), "MOV R0, #5"),
		Entry(nil, uint16(0x3003), uint32(0), "ADD R0, #3"),
		Entry(nil, uint16(0x2805), uint32(0), "CMP R0, #5"),
		Entry(nil, uint16(0x43C8), uint32(0), "MVN R0, R1"),
		Entry(nil, uint16(0x4348), uint32(0), "MUL R0, R1"),
		Entry(nil, uint16(0x4608), uint32(0), "CPY R0, R1"),
		Entry(nil, uint16(0x46F7), uint32(0), "MOV PC, LR"),
		Entry(nil, uint16(0x4488), uint32(0), "ADD R8, R1"),
		Entry(nil, uint16(0x4549), uint32(0), "CMP R1, R9"),
		Entry(nil, uint16(0x4770), uint32(0), "BX LR"),
		Entry(nil, uint16(0x4798), uint32(0), "BLX R3"),
		Entry(nil, uint16(0x4802), uint32(0), "LDR R0, [PC, #8]"),
		Entry(nil, uint16(0x5E88), uint32(0), "LDRSH R0, [R1, R2]"),
		Entry(nil, uint16(0x6048), uint32(0), "STR R0, [R1, #4]"),
		Entry(nil, uint16(0x795A), uint32(0), "LDRB R2, [R3, #5]"),
		Entry(nil, uint16(0x9902), uint32(0), "LDR R1, [SP, #8]"),
		Entry(nil, uint16(0xA002), uint32(0), "ADD R0, PC, #8"),
		Entry(nil, uint16(0xA901), uint32(0), "ADD R1, SP, #4"),
		Entry(nil, uint16(0xB084), uint32(0), "SUB SP, #16"),
		Entry(nil, uint16(0xB248), uint32(0), "SXTB R0, R1"),
		Entry(nil, uint16(0xBA48), uint32(0), "REV16 R0, R1"),
		Entry(nil, uint16(0xB503), uint32(0), "PUSH {R0, R1, LR}"),
		Entry(nil, uint16(0xBD03), uint32(0), "POP {R0, R1, PC}"),
		Entry(nil, uint16(0xB658), uint32(0), "SETEND BE"),
		Entry(nil, uint16(0xB673), uint32(0), "CPSID if"),
		Entry(nil, uint16(0xB660), uint32(0), "CPSIE"),
		Entry(nil, uint16(0xB670), uint32(0), "CPSID"),
		Entry(nil, uint16(0xBE01), uint32(0), "BKPT #1"),
		Entry(nil, uint16(0xC006), uint32(0), "STMIA R0!, {R1, R2}"),
		Entry(nil, uint16(0xDF05), uint32(0), "SWI #5"),
		Entry(nil, uint16(0xDE00), uint32(0), "UNDEFINED"),
		Entry(nil, uint16(0x4400), uint32(0), "UNDEFINED"),
	)

	Describe("branch targets", func() {
		It("should resolve conditional targets from the instruction address", func() {
			Expect(text(0xD001, 0x10)).To(Equal("BEQ #0x16"))
			Expect(text(0xD1FE, 0x10)).To(Equal("BNE #0x10"))
		})

		It("should resolve unconditional targets", func() {
			Expect(text(0xE002, 0)).To(Equal("B #0x8"))
			Expect(text(0xE7FE, 0x20)).To(Equal("B #0x20"))
		})
	})

	Describe("long branch pairs", func() {
		It("should show the absolute call target after a prefix", func() {
			var link insts.LinkState

			prefix := decoder.Decode(0xF000)
			Expect(insts.Disassemble(prefix, 0, link)).To(Equal("BL.PREFIX #0x4"))
			link.Advance(prefix, 0)

			suffix := decoder.Decode(0xF802)
			Expect(insts.Disassemble(suffix, 2, link)).To(Equal("BL #0x8"))
		})

		It("should word-align BLX suffix targets", func() {
			link := insts.LinkState{Pending: true, Addr: 0}

			suffix := decoder.Decode(0xE803)
			Expect(insts.Disassemble(suffix, 2, link)).To(Equal("BLX #0x8"))
		})

		It("should fall back to an LR-relative form without a prefix", func() {
			Expect(text(0xF802, 2)).To(Equal("BL LR, #0x4"))
		})

		It("should forget the prefix after one instruction", func() {
			var link insts.LinkState

			link.Advance(decoder.Decode(0xF000), 0)
			Expect(link.Pending).To(BeTrue())

			link.Advance(decoder.Decode(0x2005), 2)
			Expect(link.Pending).To(BeFalse())
		})
	})
})
