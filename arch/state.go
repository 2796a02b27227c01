package arch

// State is the full architectural state: registers, memory, the program
// counter, and the label table built once before simulation starts.
//
// State exposes only pure value operations (§4.4 of the spec this module
// implements); it never decides issue order or dependency readiness —
// that is the scheduler's job.
type State struct {
	Regs   RegFile
	Mem    *Memory
	PC     uint16
	Labels map[string]uint16
}

// NewState creates architectural state with empty memory and labels.
func NewState() *State {
	return &State{
		Mem:    NewMemory(),
		Labels: make(map[string]uint16),
	}
}
