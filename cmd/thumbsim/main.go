// Package main provides the command-line driver for ThumbSim.
//
// Usage:
//
//	thumbsim [options] <program>
//
// The program is either a hex dump ("addr: XXXXXXXX" per line) or a 32-bit
// ARM ELF file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sarchlab/thumbsim/config"
	"github.com/sarchlab/thumbsim/emu"
	"github.com/sarchlab/thumbsim/loader"
	"github.com/sarchlab/thumbsim/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	disasm     bool
	configPath string
	maxSteps   uint64
	trace      bool
	output     string
	bigEndian  bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}

	fs := flag.NewFlagSet("thumbsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.disasm, "disasm", false, "Only print the disassembly listing")
	fs.StringVar(&opts.configPath, "config", "", "Path to simulator configuration JSON file")
	fs.Uint64Var(&opts.maxSteps, "max-steps", emu.DefaultMaxInstructions,
		"Maximum number of instructions to execute (0 = no limit)")
	fs.BoolVar(&opts.trace, "trace", false, "Print every executed instruction to stderr")
	fs.StringVar(&opts.output, "o", "", "Write the report to this file instead of stdout")
	fs.BoolVar(&opts.bigEndian, "big-endian", false, "Start with big-endian data accesses")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: thumbsim [options] <program>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return opts, fs, nil
}

// loadConfig reads the configuration file, if any, and applies the flags
// given explicitly on the command line on top of it.
func loadConfig(opts *options, fs *flag.FlagSet) (*config.SimConfig, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-steps":
			cfg.MaxSteps = opts.maxSteps
		case "trace":
			cfg.Trace = opts.trace
		case "big-endian":
			cfg.BigEndian = opts.bigEndian
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	programPath := fs.Arg(0)

	cfg, err := loadConfig(opts, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	emulator := emu.NewEmulator(append(cfg.Options(),
		emu.WithStdout(stdout),
		emu.WithStderr(stderr),
		emu.WithEntryPoint(prog.StartPC()),
	)...)

	if err := emulator.LoadProgram(prog.Words); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	for _, seg := range prog.DataSegments() {
		emulator.LoadData(seg.VirtAddr, seg.Words())
	}

	out := stdout
	var reportOpts []report.Option
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating report: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		out = f
	} else if f, ok := stdout.(*os.File); ok {
		reportOpts = report.TerminalOptions(f)
	}

	rw := report.NewWriter(out, reportOpts...)

	if opts.disasm {
		rw.Listing(emulator.DisassembleAll())
		return exitStatus(rw, stderr)
	}

	if cfg.Trace {
		emulator.AcceptHook(emu.NewTraceHook(stderr))
	}

	emulator.Run()

	if err := rw.Full(emulator, filepath.Base(programPath)); err != nil {
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return 1
	}

	return 0
}

func exitStatus(rw *report.Writer, stderr io.Writer) int {
	if err := rw.Err(); err != nil {
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return 1
	}
	return 0
}
