package arch

// Add implements r_dest <- (r_b + r_c) & 0xFFFF.
func (s *State) Add(dest, b, c int) {
	s.Regs.Write(dest, s.Regs.Read(b)+s.Regs.Read(c))
}

// Sub implements r_dest <- (r_b - r_c) & 0xFFFF.
func (s *State) Sub(dest, b, c int) {
	s.Regs.Write(dest, s.Regs.Read(b)-s.Regs.Read(c))
}

// Mul implements r_dest <- (r_b * r_c) & 0xFFFF.
func (s *State) Mul(dest, b, c int) {
	s.Regs.Write(dest, s.Regs.Read(b)*s.Regs.Read(c))
}

// Nor implements r_dest <- ~(r_b | r_c) & 0xFFFF.
func (s *State) Nor(dest, b, c int) {
	s.Regs.Write(dest, ^(s.Regs.Read(b) | s.Regs.Read(c)))
}
