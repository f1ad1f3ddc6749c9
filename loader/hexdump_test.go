package loader_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/thumbsim/loader"
)

var _ = Describe("ParseHexDump", func() {
	It("should split each word into low then high halfwords", func() {
		words, err := loader.ParseHexDump(strings.NewReader(
			"00: 30032005\n04: 0000E7FE\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint16{0x2005, 0x3003, 0xE7FE, 0x0000}))
	})

	It("should accept lowercase digits and surrounding blanks", func() {
		words, err := loader.ParseHexDump(strings.NewReader(
			"\n  08:   fedcba98  \r\n\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint16{0xBA98, 0xFEDC}))
	})

	It("should return no words for empty input", func() {
		words, err := loader.ParseHexDump(strings.NewReader(""))

		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(BeEmpty())
	})

	DescribeTable("malformed lines",
		func(input, fragment string) {
			_, err := loader.ParseHexDump(strings.NewReader(input))

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, loader.ErrMalformedLine)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(fragment))
		},
		Entry("missing separator", "30032005\n", "line 1"),
		Entry("short word", "00: 30032005\n04: 2005\n", "line 2"),
		Entry("non-hex digits", "00: 3003200G\n", "line 1"),
	)
})
