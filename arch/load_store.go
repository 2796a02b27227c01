package arch

// Load implements spec.md's LOAD: r_dest <- mem[(r_base + offset) & 0xFFFF].
func (s *State) Load(dest, base int, offset int) {
	addr := s.effectiveAddress(base, offset)
	s.Regs.Write(dest, s.Mem.Read(addr))
}

// Store implements spec.md's STORE: mem[(r_base + offset) & 0xFFFF] <- r_value.
// Storing R0 writes 0, since R0 always reads as 0.
func (s *State) Store(value, base int, offset int) {
	addr := s.effectiveAddress(base, offset)
	s.Mem.Write(addr, s.Regs.Read(value))
}

// effectiveAddress computes (r_base + offset) & 0xFFFF with 16-bit wraparound.
func (s *State) effectiveAddress(base int, offset int) uint16 {
	return uint16(int32(s.Regs.Read(base)) + int32(offset))
}
