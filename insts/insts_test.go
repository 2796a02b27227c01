package insts_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/tomasulo16/insts"
)

func TestInsts(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Insts Suite")
}

var _ = Describe("ClassOf", func() {
	It("groups ADD and SUB into ADD_SUB", func() {
		Expect(insts.ClassOf(insts.OpADD)).To(Equal(insts.FUAddSub))
		Expect(insts.ClassOf(insts.OpSUB)).To(Equal(insts.FUAddSub))
	})

	It("groups CALL and RET into CALL_RET", func() {
		Expect(insts.ClassOf(insts.OpCALL)).To(Equal(insts.FUCallRet))
		Expect(insts.ClassOf(insts.OpRET)).To(Equal(insts.FUCallRet))
	})

	It("gives LOAD, STORE, MUL, NOR, BEQ their own class", func() {
		Expect(insts.ClassOf(insts.OpLOAD)).To(Equal(insts.FULoad))
		Expect(insts.ClassOf(insts.OpSTORE)).To(Equal(insts.FUStore))
		Expect(insts.ClassOf(insts.OpMUL)).To(Equal(insts.FUMul))
		Expect(insts.ClassOf(insts.OpNOR)).To(Equal(insts.FUNor))
		Expect(insts.ClassOf(insts.OpBEQ)).To(Equal(insts.FUBeq))
	})
})

var _ = Describe("IsBranch", func() {
	It("is true for BEQ, CALL, RET and false otherwise", func() {
		Expect(insts.IsBranch(insts.OpBEQ)).To(BeTrue())
		Expect(insts.IsBranch(insts.OpCALL)).To(BeTrue())
		Expect(insts.IsBranch(insts.OpRET)).To(BeTrue())
		Expect(insts.IsBranch(insts.OpADD)).To(BeFalse())
	})
})

var _ = Describe("Instruction.Display", func() {
	It("renders LOAD as OP dest, offset(base)", func() {
		i := insts.Instruction{Op: insts.OpLOAD, Dest: 2, Src1: 0, Offset: 4}
		Expect(i.Display()).To(Equal("LOAD r2, 4(r0)"))
	})

	It("renders STORE as OP value, offset(base)", func() {
		i := insts.Instruction{Op: insts.OpSTORE, Src1: 0, Src2: 1, Offset: 4, Dest: insts.NoRegister}
		Expect(i.Display()).To(Equal("STORE r1, 4(r0)"))
	})

	It("renders BEQ as OP a, b, offset", func() {
		i := insts.Instruction{Op: insts.OpBEQ, Src1: 1, Src2: 2, Offset: -3}
		Expect(i.Display()).To(Equal("BEQ r1, r2, -3"))
	})

	It("renders CALL with its label", func() {
		i := insts.Instruction{Op: insts.OpCALL, Label: "loop"}
		Expect(i.Display()).To(Equal("CALL loop"))
	})

	It("renders RET with no operands", func() {
		i := insts.Instruction{Op: insts.OpRET}
		Expect(i.Display()).To(Equal("RET"))
	})

	It("renders arithmetic ops as OP dest, a, b", func() {
		i := insts.Instruction{Op: insts.OpADD, Dest: 3, Src1: 1, Src2: 2}
		Expect(i.Display()).To(Equal("ADD r3, r1, r2"))
	})
})
