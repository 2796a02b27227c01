// Package core wires an architectural state, a reservation-station
// scheduler, and a program together into a single runnable simulation,
// the way the teacher's timing/core package wraps its pipeline.
package core

import (
	"github.com/archsim/tomasulo16/arch"
	"github.com/archsim/tomasulo16/insts"
	"github.com/archsim/tomasulo16/timing/engine"
	"github.com/archsim/tomasulo16/timing/latency"
)

// Core owns the architectural state and the scheduler driving it through
// a fixed program, fetching by PC rather than by array position so CALL,
// RET, and taken branches redirect issuance the way real control flow
// would.
type Core struct {
	State     *arch.State
	Scheduler *engine.Scheduler
	byPC      map[uint16]insts.Instruction
	pc        uint16
}

// New builds a Core for program, starting architectural state fresh and
// sizing the scheduler's reservation station pools from cfg. Fetching
// begins at the first instruction's PC.
func New(cfg *latency.Config, program []insts.Instruction, labels map[string]uint16) *Core {
	st := arch.NewState()
	st.Labels = labels

	byPC := make(map[uint16]insts.Instruction, len(program))
	var start uint16
	for i, instr := range program {
		byPC[instr.PC] = instr
		if i == 0 {
			start = instr.PC
		}
	}

	return &Core{
		State:     st,
		Scheduler: engine.NewScheduler(cfg, st, labels),
		byPC:      byPC,
		pc:        start,
	}
}

// Run drives the simulation to completion: fetching stops once the PC
// runs off the end of the program, and the run itself ends once every
// reservation station has drained. Each cycle it offers the scheduler at
// most one instruction to issue, ticks once, and advances the fetch
// cursor according to what actually happened that cycle: a branch's
// resolved target wins if one completed, otherwise a successful issue
// moves the cursor to its predicted continuation (for a branch) or the
// next PC (for anything else). Only one instruction is ever offered per
// Tick call, matching the engine's one-issue-per-cycle contract.
func (c *Core) Run() {
	instr, fetchable := c.byPC[c.pc]
	for fetchable || !c.Scheduler.Idle() {
		var next *insts.Instruction
		if fetchable {
			next = &instr
		}

		issued := c.Scheduler.Tick(next)

		if target, ok := c.Scheduler.ResolvedPC(); ok {
			c.pc = target
		} else if issued {
			if target, ok := c.Scheduler.PredictedContinuation(); ok {
				c.pc = target
			} else {
				c.pc++
			}
		}
		instr, fetchable = c.byPC[c.pc]
	}
}

// Trace returns the per-operation log recorded for the run so far, one
// line per dispatched instruction (including ones later flushed), in
// dispatch order. Grounded on the original simulator's
// output_to_gui_global per-instruction messages, this is what -v prints
// instead of (or alongside) the cycle timeline.
func (c *Core) Trace() []string {
	return c.Scheduler.Traces()
}

// Stats reports the completed run's statistics.
func (c *Core) Stats() engine.Stats {
	return c.Scheduler.Stats()
}

// Timeline reports the completed run's per-instruction timeline.
func (c *Core) Timeline() []engine.Record {
	return c.Scheduler.Timeline()
}
