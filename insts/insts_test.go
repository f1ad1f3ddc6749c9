package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/thumbsim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should name condition codes", func() {
		Expect(insts.CondEQ.String()).To(Equal("EQ"))
		Expect(insts.CondLE.String()).To(Equal("LE"))
		Expect(insts.CondAL.String()).To(Equal("AL"))
	})

	It("should name registers with their aliases", func() {
		Expect(insts.RegName(7)).To(Equal("R7"))
		Expect(insts.RegName(13)).To(Equal("SP"))
		Expect(insts.RegName(14)).To(Equal("LR"))
		Expect(insts.RegName(15)).To(Equal("PC"))
	})
})
