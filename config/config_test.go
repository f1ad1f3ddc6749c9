package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/thumbsim/config"
	"github.com/sarchlab/thumbsim/emu"
)

var _ = Describe("SimConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			c := config.DefaultConfig()

			Expect(c.Validate()).To(Succeed())
			Expect(c.MaxSteps).To(Equal(uint64(emu.DefaultMaxInstructions)))
			Expect(c.InitialCPSR).To(Equal(emu.ResetStatus))
		})
	})

	Describe("Validation", func() {
		It("should reject an unaligned stack pointer", func() {
			c := config.DefaultConfig()
			c.InitialSP = 0x8002
			Expect(c.Validate()).To(MatchError(ContainSubstring("initial_sp")))
		})

		It("should reject an invalid mode", func() {
			c := config.DefaultConfig()
			c.InitialCPSR = emu.StatusT | 0x05
			Expect(c.Validate()).To(MatchError(ContainSubstring("invalid mode")))
		})

		It("should accept every defined mode", func() {
			for _, mode := range []uint32{
				emu.ModeUser, emu.ModeFIQ, emu.ModeIRQ, emu.ModeSupervisor,
				emu.ModeAbort, emu.ModeUndefined, emu.ModeSystem,
			} {
				c := config.DefaultConfig()
				c.InitialCPSR = emu.StatusT | mode
				Expect(c.Validate()).To(Succeed())
			}
		})
	})

	Describe("Options", func() {
		It("should configure a new emulator", func() {
			c := config.DefaultConfig()
			c.InitialSP = 0x4000
			c.BigEndian = true

			e := emu.NewEmulator(c.Options()...)

			Expect(e.RegFile().SP()).To(Equal(uint32(0x4000)))
			Expect(e.RegFile().BigEndian()).To(BeTrue())
			Expect(e.StatusRegister()).To(Equal(emu.ResetStatus | emu.StatusE))

		})

		It("should apply the step limit", func() {
			c := config.DefaultConfig()
			c.MaxSteps = 3

			e := emu.NewEmulator(append(c.Options(), emu.WithStderr(GinkgoWriter))...)
			Expect(e.LoadProgram([]uint16{0xE7FE})).To(Succeed())

			Expect(e.Run().Steps).To(Equal(uint64(3)))
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := config.DefaultConfig()
			clone := original.Clone()

			clone.MaxSteps = 100

			Expect(original.MaxSteps).To(Equal(uint64(emu.DefaultMaxInstructions)))
			Expect(clone.MaxSteps).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := config.DefaultConfig()
			original.InitialSP = 0x1000
			original.Trace = true

			path := filepath.Join(tempDir, "sim.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for absent fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"big_endian": true}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.BigEndian).To(BeTrue())
			Expect(loaded.MaxSteps).To(Equal(uint64(emu.DefaultMaxInstructions)))
			Expect(loaded.InitialCPSR).To(Equal(emu.ResetStatus))
		})

		It("should return error for non-existent file", func() {
			_, err := config.LoadConfig("/nonexistent/path/sim.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = config.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
