// Package main points at the ThumbSim command.
// ThumbSim is a functional simulator for the 16-bit Thumb instruction set.
//
// For the full CLI, use: go run ./cmd/thumbsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ThumbSim - Thumb Instruction Set Simulator")
	fmt.Println("")
	fmt.Println("Usage: go run ./cmd/thumbsim [options] <program>")
	fmt.Println("Run 'go run ./cmd/thumbsim -h' to list the options.")

	if len(os.Args) > 1 {
		os.Exit(2)
	}
}
