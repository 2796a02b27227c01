package core_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/tomasulo16/insts"
	"github.com/archsim/tomasulo16/timing/core"
	"github.com/archsim/tomasulo16/timing/latency"
)

func TestCore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Core Suite")
}

var _ = Describe("Core", func() {
	It("runs a small program to completion and reports sane stats", func() {
		program := []insts.Instruction{
			{Op: insts.OpADD, Dest: 1, Src1: 2, Src2: 3, PC: 0},
			{Op: insts.OpADD, Dest: 4, Src1: 1, Src2: 5, PC: 1},
		}
		c := core.New(latency.DefaultConfig(), program, nil)
		c.State.Regs.Write(2, 10)
		c.State.Regs.Write(3, 20)
		c.State.Regs.Write(5, 1)

		c.Run()

		Expect(c.State.Regs.Read(1)).To(Equal(uint16(30)))
		Expect(c.State.Regs.Read(4)).To(Equal(uint16(31)))

		stats := c.Stats()
		Expect(stats.Completed).To(Equal(uint64(2)))
		Expect(stats.IPC()).To(BeNumerically(">", 0))
		Expect(c.Timeline()).To(HaveLen(2))
	})

	It("resolves a CALL to a known label and returns via RET", func() {
		// The BEQ after the return point jumps past fn, so the run ends
		// instead of falling back into the RET.
		labels := map[string]uint16{"fn": 3}
		program := []insts.Instruction{
			{Op: insts.OpCALL, Label: "fn", PC: 0},
			{Op: insts.OpADD, Dest: 2, Src1: 0, Src2: 0, PC: 1},
			{Op: insts.OpBEQ, Src1: 0, Src2: 0, Offset: 1, PC: 2},
			{Op: insts.OpRET, PC: 3},
		}
		c := core.New(latency.DefaultConfig(), program, labels)
		c.Run()

		Expect(c.State.Regs.Read(1)).To(Equal(uint16(1)))
	})
})
