package engine

import "github.com/archsim/tomasulo16/insts"

// Station is one reservation station slot. Qj/Qk are nil once the
// corresponding operand is ready; Busy is false for a free slot. Freed
// stations (on CDB broadcast or flush) are zeroed and available again.
type Station struct {
	Busy       bool
	Instr      insts.Instruction
	Dest       int
	Qj, Qk     *Tag
	Executing  bool
	CyclesLeft int
	ExecStart  uint64
	ExecEnd    uint64

	// ActualTaken is the real outcome computed when a BEQ dispatches,
	// held here until resolution compares it to the prediction.
	ActualTaken bool
	// ActualTarget is the architectural PC a branch actually computed at
	// dispatch time, captured here so resolution can hand the driver an
	// authoritative continuation address even if another branch's dispatch
	// later overwrites the shared architectural PC.
	ActualTarget uint16
	// Resolved marks a branch station whose completion has been scored
	// by the predictor; only branch-class stations use it, and only a
	// resolved one may seize the CDB.
	Resolved bool

	timelineIdx int
}

// Ready reports whether every operand this station waits on has arrived.
func (s *Station) Ready() bool {
	return s.Busy && !s.Executing && s.Qj == nil && s.Qk == nil
}

// clear resets a station to the free state.
func (s *Station) clear() {
	*s = Station{}
}

// pool is the fixed-size set of reservation stations for one
// functional-unit class.
type pool struct {
	class    insts.FUClass
	stations []*Station
}

func newPool(class insts.FUClass, size uint) *pool {
	stations := make([]*Station, size)
	for i := range stations {
		stations[i] = &Station{}
	}
	return &pool{class: class, stations: stations}
}

// freeSlot returns the first unused station, or nil if the pool is full.
func (p *pool) freeSlot() (*Station, int) {
	for i, st := range p.stations {
		if !st.Busy {
			return st, i
		}
	}
	return nil, -1
}

func isBranchClass(class insts.FUClass) bool {
	return class == insts.FUBeq || class == insts.FUCallRet
}
