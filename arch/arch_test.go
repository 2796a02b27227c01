package arch_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/tomasulo16/arch"
)

func TestArch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Arch Suite")
}

var _ = Describe("RegFile", func() {
	It("reads R0 as 0 always", func() {
		var f arch.RegFile
		f.R[0] = 0xBEEF
		Expect(f.Read(0)).To(Equal(uint16(0)))
	})

	It("silently drops writes to R0", func() {
		var f arch.RegFile
		f.Write(0, 0x1234)
		Expect(f.Read(0)).To(Equal(uint16(0)))
	})

	It("stores a full 16-bit word", func() {
		var f arch.RegFile
		f.Write(3, 0xFFFF)
		Expect(f.Read(3)).To(Equal(uint16(0xFFFF)))
	})
})

var _ = Describe("Memory", func() {
	It("reads unwritten addresses as 0", func() {
		m := arch.NewMemory()
		Expect(m.Read(42)).To(Equal(uint16(0)))
	})

	It("round-trips a written word", func() {
		m := arch.NewMemory()
		m.Write(4, 0x00AB)
		Expect(m.Read(4)).To(Equal(uint16(0x00AB)))
	})
})

var _ = Describe("State arithmetic ops", func() {
	var s *arch.State

	BeforeEach(func() {
		s = arch.NewState()
	})

	It("adds with 16-bit wraparound", func() {
		s.Regs.Write(1, 0xFFFF)
		s.Regs.Write(2, 2)
		s.Add(3, 1, 2)
		Expect(s.Regs.Read(3)).To(Equal(uint16(1)))
	})

	It("subtracts with 16-bit wraparound", func() {
		s.Regs.Write(1, 0)
		s.Regs.Write(2, 1)
		s.Sub(3, 1, 2)
		Expect(s.Regs.Read(3)).To(Equal(uint16(0xFFFF)))
	})

	It("multiplies and masks the result", func() {
		s.Regs.Write(1, 0x1000)
		s.Regs.Write(2, 0x10)
		s.Mul(3, 1, 2)
		Expect(s.Regs.Read(3)).To(Equal(uint16(0)))
	})

	It("computes NOR", func() {
		s.Regs.Write(1, 0x00FF)
		s.Regs.Write(2, 0x0F0F)
		s.Nor(3, 1, 2)
		Expect(s.Regs.Read(3)).To(Equal(uint16(^uint16(0x0FFF))))
	})

	It("never writes to R0 as a destination", func() {
		s.Regs.Write(1, 1)
		s.Regs.Write(2, 1)
		s.Add(0, 1, 2)
		Expect(s.Regs.Read(0)).To(Equal(uint16(0)))
	})
})

var _ = Describe("State load/store", func() {
	It("round-trips a value through memory", func() {
		s := arch.NewState()
		s.Regs.Write(1, 0x00AB)
		s.Store(1, 0, 4)
		s.Load(2, 0, 4)
		Expect(s.Regs.Read(2)).To(Equal(uint16(0x00AB)))
		Expect(s.Mem.Read(4)).To(Equal(uint16(0x00AB)))
	})

	It("stores 0 when the value register is R0", func() {
		s := arch.NewState()
		s.Mem.Write(8, 0xDEAD)
		s.Store(0, 0, 8)
		Expect(s.Mem.Read(8)).To(Equal(uint16(0)))
	})

	It("wraps the effective address to 16 bits", func() {
		s := arch.NewState()
		s.Regs.Write(1, 0xFFFF)
		s.Regs.Write(2, 7)
		s.Store(2, 1, 1)
		Expect(s.Mem.Read(0)).To(Equal(uint16(7)))
	})
})

var _ = Describe("State branches", func() {
	It("takes BEQ when operands are equal", func() {
		s := arch.NewState()
		s.Regs.Write(1, 5)
		s.Regs.Write(2, 5)
		target, taken := s.Beq(10, 1, 2, 3)
		Expect(taken).To(BeTrue())
		Expect(target).To(Equal(uint16(14)))
		Expect(s.PC).To(Equal(uint16(14)))
	})

	It("falls through BEQ when operands differ", func() {
		s := arch.NewState()
		s.Regs.Write(1, 5)
		s.Regs.Write(2, 6)
		target, taken := s.Beq(10, 1, 2, 3)
		Expect(taken).To(BeFalse())
		Expect(target).To(Equal(uint16(11)))
	})

	It("resolves CALL to a known label and stashes the return address in R1", func() {
		s := arch.NewState()
		s.Labels["loop"] = 40
		target, ok := s.Call(9, "loop")
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(uint16(40)))
		Expect(s.Regs.Read(1)).To(Equal(uint16(10)))
	})

	It("treats an unresolved CALL label as not-taken and advances by one", func() {
		s := arch.NewState()
		target, ok := s.Call(9, "missing")
		Expect(ok).To(BeFalse())
		Expect(target).To(Equal(uint16(10)))
	})

	It("returns to the address in R1", func() {
		s := arch.NewState()
		s.Regs.Write(1, 77)
		Expect(s.Ret()).To(Equal(uint16(77)))
	})
})
