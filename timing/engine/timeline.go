package engine

import "github.com/archsim/tomasulo16/insts"

// Record is one instruction's row in the timeline: issue/exec/write
// cycles as they become known, and a Flushed flag set when a
// misprediction cancels it before it completes. A zero cycle means "not
// yet reached" — cycle numbering starts at 1, so 0 is never a real
// cycle.
type Record struct {
	Display    string
	PC         uint16
	IssueCycle uint64
	ExecStart  uint64
	ExecEnd    uint64
	WriteCycle uint64
	Flushed    bool
}

// Timeline is the append-only, in-place-updated instruction history spec.md
// §4.6 describes: one Record per issued instruction, in issue order.
type Timeline struct {
	records []Record
}

func newTimeline() *Timeline {
	return &Timeline{}
}

// append adds a new record for an instruction that has just issued and
// returns its index for later in-place updates.
func (t *Timeline) append(instr insts.Instruction, issueCycle uint64) int {
	t.records = append(t.records, Record{
		Display:    instr.Display(),
		PC:         instr.PC,
		IssueCycle: issueCycle,
	})
	return len(t.records) - 1
}

func (t *Timeline) setExec(idx int, start, end uint64) {
	t.records[idx].ExecStart = start
	t.records[idx].ExecEnd = end
}

func (t *Timeline) setWrite(idx int, cycle uint64) {
	t.records[idx].WriteCycle = cycle
}

func (t *Timeline) setFlushed(idx int) {
	t.records[idx].Flushed = true
}

// Records returns a copy of the timeline's records in issue order.
func (t *Timeline) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}
