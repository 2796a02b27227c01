// Package main provides the entry point for tomasulo16, a cycle-accurate
// simulator for a 16-bit, 8-register, Tomasulo-scheduled out-of-order
// core.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/archsim/tomasulo16/asm"
	"github.com/archsim/tomasulo16/timing/core"
	"github.com/archsim/tomasulo16/timing/latency"
)

var (
	configPath = flag.String("config", "", "Path to a functional-unit latency/station-count JSON file")
	memPath    = flag.String("mem", "", "Path to an initial memory image file")
	startPC    = flag.Uint("start", 0, "Starting program address")
	verbose    = flag.Bool("v", false, "Print the per-instruction timeline")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: tomasulo16 [options] <program.asm>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)
	source, err := os.ReadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program: %v\n", err)
		os.Exit(1)
	}

	program, diags := asm.Parse(string(source), uint16(*startPC))
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: %s\n", programPath, d)
	}
	if len(program.Instructions) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no instructions decoded")
		os.Exit(1)
	}

	cfg := latency.DefaultConfig()
	if *configPath != "" {
		cfg, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading FU config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid FU config: %v\n", err)
		os.Exit(1)
	}

	sim := core.New(cfg, program.Instructions, program.Labels)

	if *memPath != "" {
		memText, err := os.ReadFile(*memPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading memory image: %v\n", err)
			os.Exit(1)
		}
		image, memDiags := asm.ParseMemoryImage(string(memText))
		for _, d := range memDiags {
			fmt.Fprintf(os.Stderr, "%s: %s\n", *memPath, d)
		}
		for addr, value := range image {
			sim.State.Mem.Write(addr, value)
		}
	}

	sim.Run()

	if *verbose {
		printTrace(sim)
		printTimeline(sim)
	}
	printReport(programPath, sim)
}

// printTrace prints the per-operation log (one line per dispatched
// instruction, in dispatch order), the per-instruction analogue of the
// original simulator's GUI message feed.
func printTrace(sim *core.Core) {
	for _, line := range sim.Trace() {
		fmt.Println(line)
	}
	fmt.Println()
}

func printTimeline(sim *core.Core) {
	fmt.Printf("%-24s %6s %6s %6s %6s %8s\n", "instruction", "issue", "start", "end", "write", "flushed")
	for _, r := range sim.Timeline() {
		fmt.Printf("%-24s %6d %6d %6d %6d %8t\n", r.Display, r.IssueCycle, r.ExecStart, r.ExecEnd, r.WriteCycle, r.Flushed)
	}
	fmt.Println()
}

func printReport(programPath string, sim *core.Core) {
	stats := sim.Stats()
	fmt.Printf("Program: %s\n", programPath)
	fmt.Printf("Total cycles:       %d\n", stats.TotalCycles)
	fmt.Printf("Completed:          %d\n", stats.Completed)
	fmt.Printf("IPC:                %.3f\n", stats.IPC())
	fmt.Printf("Branches resolved:  %d\n", stats.Branches)
	fmt.Printf("Mispredictions:     %d\n", stats.Mispredictions)
	fmt.Printf("Branch accuracy:    %.3f\n", stats.BranchAccuracy())
}
