package arch

// Beq implements spec.md's BEQ: pc <- pc + 1 + offset if r_a = r_b, else
// pc <- pc + 1. pc is the issuing instruction's own program address (its
// recorded pc, not a live fetch cursor), so concurrently in-flight
// branches each compute their own target independently of issue order.
// Beq also updates the architectural PC register to the computed target
// and returns whether the branch was actually taken.
func (s *State) Beq(pc uint16, ra, rb int, offset int) (target uint16, taken bool) {
	taken = s.Regs.Read(ra) == s.Regs.Read(rb)
	if taken {
		target = uint16(int32(pc) + 1 + int32(offset))
	} else {
		target = pc + 1
	}
	s.PC = target
	return target, taken
}

// Call implements spec.md's CALL: R1 <- pc + 1; pc <- labels[label].
// An unresolved label leaves the PC advancing by one (§7's "PC advances
// by 1" error policy) and reports ok=false so the scheduler can treat the
// branch outcome as not-taken (§4.2's "Unknown label on CALL ... treated
// as not-taken").
func (s *State) Call(pc uint16, label string) (target uint16, ok bool) {
	s.Regs.Write(1, pc+1)
	addr, found := s.Labels[label]
	if !found {
		s.PC = pc + 1
		return s.PC, false
	}
	s.PC = addr
	return addr, true
}

// Ret implements spec.md's RET: pc <- R1.
func (s *State) Ret() uint16 {
	s.PC = s.Regs.Read(1)
	return s.PC
}
