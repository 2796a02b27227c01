package engine

import "github.com/archsim/tomasulo16/insts"

// Prediction is the scheduler's guess, made at issue time, about where
// control flow goes after a branch. Target is always a concrete address
// so the driver can keep fetching speculatively along it; Taken only
// matters for BEQ, where it's compared against the actual outcome at
// resolution to decide whether to flush.
type Prediction struct {
	Taken  bool
	Target uint16
}

// BranchPredictor implements spec.md §4.3's simplified policy: a BEQ with
// a negative (backward) offset is predicted taken, any other BEQ is
// predicted not-taken, and CALL/RET are never scored as mispredicted.
// CALL's target is resolved statically from the label table rather than
// guessed, since nothing about it is actually uncertain at issue time.
// It also keeps the running prediction/correct/misprediction counters
// the statistics report surfaces.
type BranchPredictor struct {
	predictions    uint64
	correct        uint64
	mispredictions uint64
}

// NewBranchPredictor returns a zeroed predictor.
func NewBranchPredictor() *BranchPredictor {
	return &BranchPredictor{}
}

// Predict computes the predicted continuation for instr, which must be a
// branch (insts.IsBranch(instr.Op)).
func (p *BranchPredictor) Predict(instr insts.Instruction, labels map[string]uint16) Prediction {
	switch instr.Op {
	case insts.OpBEQ:
		taken := instr.Offset < 0
		target := instr.PC + 1
		if taken {
			target = uint16(int32(instr.PC) + 1 + int32(instr.Offset))
		}
		return Prediction{Taken: taken, Target: target}
	case insts.OpCALL:
		if target, ok := labels[instr.Label]; ok {
			return Prediction{Taken: false, Target: target}
		}
		return Prediction{Taken: false, Target: instr.PC + 1}
	case insts.OpRET:
		return Prediction{Taken: false, Target: instr.PC + 1}
	default:
		return Prediction{Target: instr.PC + 1}
	}
}

// Resolve scores a BEQ's predicted-vs-actual outcome. It is not called
// for CALL/RET, which spec.md §4.2 exempts from misprediction counting.
func (p *BranchPredictor) Resolve(predicted, actual bool) (mispredicted bool) {
	p.predictions++
	if predicted == actual {
		p.correct++
		return false
	}
	p.mispredictions++
	return true
}

// Stats reports the predictor's running counters.
func (p *BranchPredictor) Stats() (predictions, correct, mispredictions uint64) {
	return p.predictions, p.correct, p.mispredictions
}
