// Package config holds the user-facing simulator settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/thumbsim/emu"
)

// SimConfig holds the settings for a simulation run.
type SimConfig struct {
	// MaxSteps bounds the number of instructions Run executes.
	// 0 disables the limit. Default: 10000.
	MaxSteps uint64 `json:"max_steps"`

	// InitialSP is the stack pointer at reset. Must be word aligned.
	// Default: 0.
	InitialSP uint32 `json:"initial_sp"`

	// InitialCPSR is the status register at reset.
	// Default: 0xF3 (IRQ and FIQ masked, Thumb state, supervisor mode).
	InitialCPSR uint32 `json:"initial_cpsr"`

	// BigEndian sets the E bit before the first instruction.
	BigEndian bool `json:"big_endian"`

	// Trace prints every retired instruction.
	Trace bool `json:"trace"`
}

// DefaultConfig returns a SimConfig matching a freshly reset emulator.
func DefaultConfig() *SimConfig {
	return &SimConfig{
		MaxSteps:    emu.DefaultMaxInstructions,
		InitialCPSR: emu.ResetStatus,
	}
}

// LoadConfig loads a SimConfig from a JSON file. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var validModes = map[uint32]bool{
	emu.ModeUser:       true,
	emu.ModeFIQ:        true,
	emu.ModeIRQ:        true,
	emu.ModeSupervisor: true,
	emu.ModeAbort:      true,
	emu.ModeUndefined:  true,
	emu.ModeSystem:     true,
}

// Validate checks that the configuration describes a reachable machine
// state.
func (c *SimConfig) Validate() error {
	if c.InitialSP&3 != 0 {
		return fmt.Errorf("initial_sp 0x%08x must be word aligned", c.InitialSP)
	}
	if !validModes[c.InitialCPSR&emu.ModeMask] {
		return fmt.Errorf("initial_cpsr 0x%08x has an invalid mode 0x%02x",
			c.InitialCPSR, c.InitialCPSR&emu.ModeMask)
	}
	return nil
}

// Options converts the configuration into emulator options.
func (c *SimConfig) Options() []emu.EmulatorOption {
	cpsr := c.InitialCPSR
	if c.BigEndian {
		cpsr |= emu.StatusE
	}

	return []emu.EmulatorOption{
		emu.WithMaxInstructions(c.MaxSteps),
		emu.WithStackPointer(c.InitialSP),
		emu.WithStatus(cpsr),
	}
}

// Clone returns a copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	return &clone
}
