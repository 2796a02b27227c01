package engine

import (
	"fmt"

	"github.com/archsim/tomasulo16/arch"
	"github.com/archsim/tomasulo16/insts"
	"github.com/archsim/tomasulo16/timing/latency"
)

// classOrder fixes the iteration order used whenever the scheduler needs
// to walk every pool deterministically (dispatch, arbitration, snapshot).
// Lower index wins ties for the CDB and for branch resolution, so results
// don't depend on map iteration order.
var classOrder = []insts.FUClass{
	insts.FULoad, insts.FUStore, insts.FUAddSub, insts.FUMul,
	insts.FUNor, insts.FUBeq, insts.FUCallRet,
}

// Scheduler is the cycle-driven Tomasulo engine: reservation stations,
// register status table, common data bus, branch predictor, and the
// timeline/statistics it feeds. It owns no goroutines; a caller advances
// it one cycle at a time with Tick, offering at most one new program
// instruction per call.
type Scheduler struct {
	cfg    *latency.Config
	as     *arch.State
	labels map[string]uint16

	pools map[insts.FUClass]*pool
	rst   *RST
	bus   *cdb

	timeline  *Timeline
	predictor *BranchPredictor

	cycle               uint64
	completed           uint64
	branchesCompleted   uint64
	outstandingBranches int
	branchPrediction    Prediction

	resolvedPC      uint16
	resolvedPCValid bool

	lastIssuedBranchTarget uint16
	lastIssuedWasBranch    bool

	traces []string
}

// NewScheduler builds a scheduler with one station pool per functional
// unit class, sized from cfg, operating on the architectural state as.
func NewScheduler(cfg *latency.Config, as *arch.State, labels map[string]uint16) *Scheduler {
	pools := make(map[insts.FUClass]*pool, len(classOrder))
	for _, class := range classOrder {
		pools[class] = newPool(class, cfg.Class(class).StationCount)
	}
	return &Scheduler{
		cfg:       cfg,
		as:        as,
		labels:    labels,
		pools:     pools,
		rst:       NewRST(),
		bus:       &cdb{},
		timeline:  newTimeline(),
		predictor: NewBranchPredictor(),
	}
}

// issue attempts to accept instr into its functional-unit class's
// reservation station pool. It fails (returns false) if the pool has no
// free station, or if instr is itself a branch and another branch is
// still outstanding: only one speculated branch is ever in flight at a
// time, keeping ActualTarget capture and flush unambiguous. A non-branch
// issues regardless of any outstanding branch; dispatchReady is what
// actually stalls it behind that branch, and flush is what cancels it if
// the branch turns out to have been mispredicted. A successful issue
// always records a new timeline entry and latches the register status
// table for instr's destination, even though the instruction won't
// dispatch until its operands are ready and (if non-branch) no branch is
// outstanding. Tick is the only caller: at most one instruction issues
// per cycle, and it does so early enough in Tick's step order that the
// same cycle's dispatch step can see it, matching spec.md §8 scenario
// 1's issue/exec_start alignment.
func (s *Scheduler) issue(instr insts.Instruction) bool {
	isBranch := insts.IsBranch(instr.Op)
	if isBranch && s.outstandingBranches > 0 {
		return false
	}

	class := insts.ClassOf(instr.Op)
	p := s.pools[class]
	st, idx := p.freeSlot()
	if st == nil {
		return false
	}

	dest := instr.Dest
	switch instr.Op {
	case insts.OpCALL:
		dest = 1 // CALL always renames R1, the return-address register.
	case insts.OpSTORE, insts.OpBEQ, insts.OpRET:
		dest = insts.NoRegister
	}

	st.Busy = true
	st.Instr = instr
	st.Dest = dest
	st.Qj = s.operandTag(instr.Op, instr.Src1, true)
	st.Qk = s.operandTag(instr.Op, instr.Src2, false)
	st.timelineIdx = s.timeline.append(instr, s.cycle)

	if dest != insts.NoRegister {
		s.rst.SetBusy(dest, Tag{Class: class, Index: idx})
	}

	if isBranch {
		s.outstandingBranches++
		s.branchPrediction = s.predictor.Predict(instr, s.labels)
		s.lastIssuedBranchTarget = s.branchPrediction.Target
		s.lastIssuedWasBranch = true
	} else {
		s.lastIssuedWasBranch = false
	}

	return true
}

// PredictedContinuation reports the predicted target of the branch most
// recently accepted by Tick, if the last instruction Tick accepted was in
// fact a branch. A driver uses this to keep fetching along the predicted
// path (e.g. into a backward loop body) instead of assuming straight-line
// order, the same way it uses ResolvedPC to correct course afterward.
func (s *Scheduler) PredictedContinuation() (uint16, bool) {
	return s.lastIssuedBranchTarget, s.lastIssuedWasBranch
}

// operandTag resolves a station's wait on one source register, for the
// slot identified by isFirstOperand (Qj vs Qk). Ops that don't read that
// slot (RET's operands, LOAD's second operand, CALL's operands) pass
// insts.NoRegister and get no tag.
func (s *Scheduler) operandTag(op insts.Op, reg int, isFirstOperand bool) *Tag {
	switch op {
	case insts.OpLOAD:
		if !isFirstOperand {
			return nil
		}
	case insts.OpCALL, insts.OpRET:
		return nil
	}
	if reg == insts.NoRegister {
		return nil
	}
	return s.rst.Status(reg)
}

// Tick advances the simulation by one cycle and is the scheduler's only
// entry point for issuing new work: next, if non-nil, is the single
// instruction the driver wants to issue this cycle, and Tick reports
// whether it was accepted. Issuing at most once per Tick, and doing so
// before dispatch runs, is what lets a ready instruction dispatch in the
// very cycle it issues (spec.md §8 scenario 1: issue 1,2,3 paired with
// exec_start 1,4,7 for a pure dependency chain).
//
// The steps run in this order: resolve a completing branch, accept
// next, dispatch ready stations, tick executing latencies, drain the
// CDB broadcast arbitrated a cycle ago, then arbitrate this cycle's
// completions onto the bus. Drain runs immediately before arbitrate
// (not at the top of the cycle) so a station unblocked by drain can
// dispatch only from the following cycle onward, giving the
// canonical one-cycle gap between a write and a dependent's dispatch;
// running drain right before arbitrate also guarantees it never
// collides with the broadcast arbitrate is about to place on the
// single-slot bus. A tick in which a branch resolves accepts no
// instruction: next was fetched before that branch's outcome was known,
// so Tick refuses it and the driver fetches again from ResolvedPC on the
// following tick.
func (s *Scheduler) Tick(next *insts.Instruction) bool {
	s.resolvedPCValid = false
	s.cycle++

	if s.outstandingBranches > 0 {
		if st, ok := s.findResolvableBranch(); ok {
			s.resolveBranch(st)
		}
	}

	issued := false
	if next != nil && !s.resolvedPCValid {
		issued = s.issue(*next)
	}

	s.dispatchReady()
	s.decrementExecuting()

	if b, ok := s.bus.drain(); ok {
		if b.dest != insts.NoRegister {
			s.rst.SetReady(b.dest)
		}
		s.clearWaiters(b.source)
	}

	s.arbitrateCDB()

	return issued
}

// clearWaiters removes tag from every station still waiting on it,
// implementing the CDB broadcast half of a writeback.
func (s *Scheduler) clearWaiters(tag Tag) {
	for _, p := range s.pools {
		for _, st := range p.stations {
			if !st.Busy {
				continue
			}
			if st.Qj != nil && *st.Qj == tag {
				st.Qj = nil
			}
			if st.Qk != nil && *st.Qk == tag {
				st.Qk = nil
			}
		}
	}
}

// findResolvableBranch returns the first executing, unresolved
// branch-class station whose latency has elapsed. At most one branch
// resolves per cycle.
func (s *Scheduler) findResolvableBranch() (*Station, bool) {
	for _, class := range []insts.FUClass{insts.FUBeq, insts.FUCallRet} {
		for _, st := range s.pools[class].stations {
			if st.Busy && st.Executing && !st.Resolved && st.CyclesLeft <= 0 {
				return st, true
			}
		}
	}
	return nil, false
}

// resolveBranch scores a completed branch against its prediction and
// flushes the speculative instructions that followed it if it
// mispredicted. spec.md §4.2 step 3 counts every branch-class completion
// toward the run's branch total, BEQ and CALL/RET alike; only BEQ is
// scored for misprediction, since CALL and RET's targets are never
// guessed.
func (s *Scheduler) resolveBranch(st *Station) {
	instr := st.Instr
	st.Resolved = true
	s.outstandingBranches--
	s.resolvedPC = st.ActualTarget
	s.resolvedPCValid = true
	s.branchesCompleted++

	if instr.Op != insts.OpBEQ {
		return
	}
	if s.predictor.Resolve(s.branchPrediction.Taken, st.ActualTaken) {
		s.flush(instr.PC)
	}
}

// ResolvedPC reports the authoritative continuation address computed by
// the branch that resolved this tick, if any. A driver uses this to
// redirect its own fetch cursor after a CALL, RET, or BEQ, rather than
// assuming straight-line program order: CALL's and BEQ's statically or
// eagerly computed targets are usually right already, but RET's is only
// known once it dispatches, and a mispredicted BEQ's flush still leaves
// the driver needing to know where to resume.
func (s *Scheduler) ResolvedPC() (uint16, bool) {
	return s.resolvedPC, s.resolvedPCValid
}

// dispatchReady moves every station whose operands have arrived into
// execution, applying its architectural effect eagerly. A non-branch
// station cannot dispatch while a branch is outstanding; this is always
// safe even for a station holding a later, now-doomed instruction,
// because resolveBranch (and any flush it triggers) runs earlier in the
// same tick than this step.
func (s *Scheduler) dispatchReady() {
	for _, class := range classOrder {
		cfg := s.cfg.Class(class)
		branchFree := s.outstandingBranches == 0 || isBranchClass(class)
		for _, st := range s.pools[class].stations {
			if !st.Ready() || !branchFree {
				continue
			}
			st.Executing = true
			st.CyclesLeft = int(cfg.Latency)
			st.ExecStart = s.cycle
			st.ExecEnd = s.cycle + uint64(cfg.Latency) - 1
			s.timeline.setExec(st.timelineIdx, st.ExecStart, st.ExecEnd)
			s.applyEffect(st)
		}
	}
}

// applyEffect invokes the architectural state transition for a
// dispatching instruction. Effects land on the register file and memory
// immediately, not at writeback; the eager-dispatch discipline above is
// what keeps this from ever applying a speculative, soon-to-be-flushed
// instruction's effect. It also appends a human-readable trace line,
// grounded on the original's output_to_gui_* per-instruction messages,
// for Traces to report when a driver wants a -v style operation log.
func (s *Scheduler) applyEffect(st *Station) {
	instr := st.Instr
	switch instr.Op {
	case insts.OpLOAD:
		base := s.as.Regs.Read(instr.Src1)
		s.as.Load(instr.Dest, instr.Src1, instr.Offset)
		s.trace("LOAD: r%d = Memory[r%d(%d) + %d] = %d", instr.Dest, instr.Src1, base, instr.Offset, s.as.Regs.Read(instr.Dest))
	case insts.OpSTORE:
		base := s.as.Regs.Read(instr.Src1)
		value := s.as.Regs.Read(instr.Src2)
		s.as.Store(instr.Src2, instr.Src1, instr.Offset)
		s.trace("STORE: Memory[r%d(%d) + %d] = r%d(%d)", instr.Src1, base, instr.Offset, instr.Src2, value)
	case insts.OpADD:
		b, c := s.as.Regs.Read(instr.Src1), s.as.Regs.Read(instr.Src2)
		s.as.Add(instr.Dest, instr.Src1, instr.Src2)
		s.trace("ADD: r%d = r%d(%d) + r%d(%d) = %d", instr.Dest, instr.Src1, b, instr.Src2, c, s.as.Regs.Read(instr.Dest))
	case insts.OpSUB:
		b, c := s.as.Regs.Read(instr.Src1), s.as.Regs.Read(instr.Src2)
		s.as.Sub(instr.Dest, instr.Src1, instr.Src2)
		s.trace("SUB: r%d = r%d(%d) - r%d(%d) = %d", instr.Dest, instr.Src1, b, instr.Src2, c, s.as.Regs.Read(instr.Dest))
	case insts.OpMUL:
		b, c := s.as.Regs.Read(instr.Src1), s.as.Regs.Read(instr.Src2)
		s.as.Mul(instr.Dest, instr.Src1, instr.Src2)
		s.trace("MUL: r%d = r%d(%d) * r%d(%d) = %d", instr.Dest, instr.Src1, b, instr.Src2, c, s.as.Regs.Read(instr.Dest))
	case insts.OpNOR:
		b, c := s.as.Regs.Read(instr.Src1), s.as.Regs.Read(instr.Src2)
		s.as.Nor(instr.Dest, instr.Src1, instr.Src2)
		s.trace("NOR: r%d = ~(r%d(%d) | r%d(%d)) = %d", instr.Dest, instr.Src1, b, instr.Src2, c, s.as.Regs.Read(instr.Dest))
	case insts.OpBEQ:
		a, b := s.as.Regs.Read(instr.Src1), s.as.Regs.Read(instr.Src2)
		target, taken := s.as.Beq(instr.PC, instr.Src1, instr.Src2, instr.Offset)
		st.ActualTaken = taken
		st.ActualTarget = target
		if taken {
			s.trace("BEQ: Branch taken to PC+1+offset = %d", target)
		} else {
			s.trace("BEQ: Branch not taken, r%d=%d, r%d=%d", instr.Src1, a, instr.Src2, b)
		}
	case insts.OpCALL:
		target, _ := s.as.Call(instr.PC, instr.Label)
		st.ActualTarget = target
		s.trace("CALL: r1 = %d, jumping to label '%s' at PC = %d", s.as.Regs.Read(1), instr.Label, target)
	case insts.OpRET:
		st.ActualTarget = s.as.Ret()
		s.trace("RET: Jumping to address in r1 = %d", st.ActualTarget)
	}
}

func (s *Scheduler) trace(format string, args ...any) {
	s.traces = append(s.traces, fmt.Sprintf(format, args...))
}

// Traces returns the per-operation log recorded so far, one line per
// dispatched instruction (including ones later flushed), in dispatch
// order.
func (s *Scheduler) Traces() []string {
	out := make([]string, len(s.traces))
	copy(out, s.traces)
	return out
}

func (s *Scheduler) decrementExecuting() {
	for _, p := range s.pools {
		for _, st := range p.stations {
			if st.Busy && st.Executing {
				st.CyclesLeft--
			}
		}
	}
}

// arbitrateCDB lets at most one finished station seize the bus this
// cycle. A finished branch station must already be Resolved; an
// unresolved one waits for resolveBranch on a later tick before it's
// eligible, so its result isn't broadcast before its misprediction check
// runs.
func (s *Scheduler) arbitrateCDB() {
	for _, class := range classOrder {
		for i, st := range s.pools[class].stations {
			if !st.Busy || !st.Executing || st.CyclesLeft > 0 {
				continue
			}
			if isBranchClass(class) && !st.Resolved {
				continue
			}
			s.bus.seize(st.Dest, Tag{Class: class, Index: i})
			s.timeline.setWrite(st.timelineIdx, s.cycle+1)
			s.completed++
			st.clear()
			return
		}
	}
}

// flush cancels every in-flight instruction fetched past a mispredicted
// branch: its timeline record is marked flushed, its station is freed,
// and its destination register (if any) reverts to READY unless an
// earlier, still-outstanding instruction is the legitimate producer for
// the same register.
func (s *Scheduler) flush(branchPC uint16) {
	for i := range s.timeline.records {
		if s.timeline.records[i].PC > branchPC {
			s.timeline.records[i].Flushed = true
		}
	}
	for _, p := range s.pools {
		for _, st := range p.stations {
			if !st.Busy || st.Instr.PC <= branchPC {
				continue
			}
			dest := st.Dest
			st.clear()
			if dest != insts.NoRegister && !s.hasEarlierProducer(dest, branchPC) {
				s.rst.SetReady(dest)
			}
		}
	}
}

func (s *Scheduler) hasEarlierProducer(dest int, branchPC uint16) bool {
	for _, p := range s.pools {
		for _, st := range p.stations {
			if st.Busy && st.Dest == dest && st.Instr.PC <= branchPC {
				return true
			}
		}
	}
	return false
}

// Idle reports whether every reservation station is free and the common
// data bus holds no undrained broadcast, meaning the scheduler has nothing
// left in flight.
func (s *Scheduler) Idle() bool {
	if s.bus.current.pending {
		return false
	}
	for _, p := range s.pools {
		for _, st := range p.stations {
			if st.Busy {
				return false
			}
		}
	}
	return true
}

// Cycle returns the current cycle count.
func (s *Scheduler) Cycle() uint64 {
	return s.cycle
}

// Timeline returns a snapshot of the instruction timeline recorded so
// far.
func (s *Scheduler) Timeline() []Record {
	return s.timeline.Records()
}

// Stats reports the run's statistics as of the current cycle. Branches
// counts every branch-class completion (BEQ, CALL, RET); Mispredictions
// only ever counts BEQ, the only op the predictor scores.
func (s *Scheduler) Stats() Stats {
	_, _, mispredictions := s.predictor.Stats()
	return Stats{
		Completed:      s.completed,
		TotalCycles:    s.cycle,
		Branches:       s.branchesCompleted,
		Mispredictions: mispredictions,
	}
}
