package engine

// StationSnapshot is a read-only view of one reservation station, used by
// Scheduler.Snapshot for diagnostics and mid-run inspection.
type StationSnapshot struct {
	Class      string
	Index      int
	Busy       bool
	Display    string
	Executing  bool
	CyclesLeft int
}

// Snapshot captures the scheduler's in-flight reservation stations: every
// busy station, in class-then-index order. The register status table and
// the cycle count are not included. It mirrors
// original_source/backend.py's get_state, adapted from a dict dump into a
// typed value a caller can inspect without reaching into scheduler
// internals.
func (s *Scheduler) Snapshot() []StationSnapshot {
	var out []StationSnapshot
	for _, class := range classOrder {
		for i, st := range s.pools[class].stations {
			if !st.Busy {
				continue
			}
			out = append(out, StationSnapshot{
				Class:      class.String(),
				Index:      i,
				Busy:       st.Busy,
				Display:    st.Instr.Display(),
				Executing:  st.Executing,
				CyclesLeft: st.CyclesLeft,
			})
		}
	}
	return out
}
