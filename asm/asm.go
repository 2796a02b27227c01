// Package asm turns the ISA's text assembly and memory-image formats into
// the decoded values the rest of the simulator consumes: insts.Instruction
// values addressed by PC, a label table, and an initial memory image.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/archsim/tomasulo16/insts"
)

// Diagnostic is one parse error, tied to the 1-indexed source line it
// came from.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Program is a fully decoded assembly listing: its instructions in
// program order, each carrying its own address, and the label table
// resolved against those addresses.
type Program struct {
	Instructions []insts.Instruction
	Labels       map[string]uint16
}

// Parse decodes programText into a Program, starting instruction
// addresses at base. A label line is a bare identifier followed by a
// colon; it binds to the address of the next executable line rather than
// consuming an address of its own. A '#' begins a line comment.
// Malformed lines are skipped and reported as Diagnostics; Parse always
// returns the instructions it could decode. A CALL whose label is not
// defined anywhere in the program is kept and reported as a Diagnostic.
func Parse(programText string, base uint16) (*Program, []Diagnostic) {
	var diags []Diagnostic

	type sourceLine struct {
		lineNo int
		text   string
	}
	var executable []sourceLine
	labels := map[string]uint16{}

	for lineNo, raw := range strings.Split(programText, "\n") {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ":") {
			name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
			if name == "" {
				diags = append(diags, Diagnostic{Line: lineNo + 1, Message: "empty label"})
				continue
			}
			labels[name] = base + uint16(len(executable))
			continue
		}
		executable = append(executable, sourceLine{lineNo: lineNo + 1, text: line})
	}

	program := &Program{Labels: labels}
	for i, sl := range executable {
		instr, err := decodeLine(sl.text)
		if err != nil {
			diags = append(diags, Diagnostic{Line: sl.lineNo, Message: err.Error()})
			continue
		}
		instr.PC = base + uint16(i)
		if instr.Op == insts.OpCALL {
			if _, ok := labels[instr.Label]; !ok {
				diags = append(diags, Diagnostic{Line: sl.lineNo, Message: fmt.Sprintf("label %q not found", instr.Label)})
			}
		}
		program.Instructions = append(program.Instructions, instr)
	}

	return program, diags
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// decodeLine parses one executable source line into an Instruction. For
// CALL it records the label name as written; Parse checks it against the
// label table.
func decodeLine(line string) (insts.Instruction, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return insts.Instruction{}, fmt.Errorf("empty instruction")
	}
	mnemonic := strings.ToUpper(fields[0])
	operands := fields[1:]

	switch mnemonic {
	case "LOAD", "STORE":
		return decodeLoadStore(mnemonic, operands)
	case "BEQ":
		return decodeBeq(operands)
	case "CALL":
		return decodeCall(operands)
	case "RET":
		if len(operands) != 0 {
			return insts.Instruction{}, fmt.Errorf("RET takes no operands")
		}
		return insts.Instruction{Op: insts.OpRET, Dest: insts.NoRegister, Src1: insts.NoRegister, Src2: insts.NoRegister}, nil
	case "ADD", "SUB", "MUL", "NOR":
		return decodeArith(mnemonic, operands)
	default:
		return insts.Instruction{}, fmt.Errorf("unrecognized instruction %q", fields[0])
	}
}

func decodeLoadStore(mnemonic string, operands []string) (insts.Instruction, error) {
	if len(operands) != 2 {
		return insts.Instruction{}, fmt.Errorf("%s requires 2 operands, got %d", mnemonic, len(operands))
	}
	reg, err := parseRegister(operands[0])
	if err != nil {
		return insts.Instruction{}, err
	}
	offset, base, err := parseOffsetBase(operands[1])
	if err != nil {
		return insts.Instruction{}, err
	}
	if offset < -16 || offset > 15 {
		return insts.Instruction{}, fmt.Errorf("offset %d out of range (-16 to 15)", offset)
	}

	if mnemonic == "STORE" {
		return insts.Instruction{Op: insts.OpSTORE, Dest: insts.NoRegister, Src1: base, Src2: reg, Offset: offset}, nil
	}
	return insts.Instruction{Op: insts.OpLOAD, Dest: reg, Src1: base, Src2: insts.NoRegister, Offset: offset}, nil
}

func decodeBeq(operands []string) (insts.Instruction, error) {
	if len(operands) != 3 {
		return insts.Instruction{}, fmt.Errorf("BEQ requires 3 operands, got %d", len(operands))
	}
	a, err := parseRegister(operands[0])
	if err != nil {
		return insts.Instruction{}, err
	}
	b, err := parseRegister(operands[1])
	if err != nil {
		return insts.Instruction{}, err
	}
	offset, err := parseImmediate(operands[2])
	if err != nil {
		return insts.Instruction{}, err
	}
	return insts.Instruction{Op: insts.OpBEQ, Dest: insts.NoRegister, Src1: a, Src2: b, Offset: offset}, nil
}

func decodeCall(operands []string) (insts.Instruction, error) {
	if len(operands) != 1 {
		return insts.Instruction{}, fmt.Errorf("CALL requires a label, got %d operands", len(operands))
	}
	return insts.Instruction{Op: insts.OpCALL, Dest: insts.NoRegister, Src1: insts.NoRegister, Src2: insts.NoRegister, Label: operands[0]}, nil
}

func decodeArith(mnemonic string, operands []string) (insts.Instruction, error) {
	if len(operands) != 3 {
		return insts.Instruction{}, fmt.Errorf("%s requires 3 operands, got %d", mnemonic, len(operands))
	}
	dest, err := parseRegister(operands[0])
	if err != nil {
		return insts.Instruction{}, err
	}
	b, err := parseRegister(operands[1])
	if err != nil {
		return insts.Instruction{}, err
	}
	c, err := parseRegister(operands[2])
	if err != nil {
		return insts.Instruction{}, err
	}
	var op insts.Op
	switch mnemonic {
	case "ADD":
		op = insts.OpADD
	case "SUB":
		op = insts.OpSUB
	case "MUL":
		op = insts.OpMUL
	case "NOR":
		op = insts.OpNOR
	}
	return insts.Instruction{Op: op, Dest: dest, Src1: b, Src2: c}, nil
}

func parseRegister(tok string) (int, error) {
	tok = strings.TrimSpace(tok)
	if len(tok) < 2 || (tok[0] != 'r' && tok[0] != 'R') {
		return 0, fmt.Errorf("invalid register %q", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n > 7 {
		return 0, fmt.Errorf("invalid register %q", tok)
	}
	return n, nil
}

func parseImmediate(tok string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(tok), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid immediate %q", tok)
	}
	return int(n), nil
}

// parseOffsetBase parses LOAD/STORE's "offset(rN)" addressing operand.
func parseOffsetBase(tok string) (offset int, base int, err error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return 0, 0, fmt.Errorf("invalid addressing operand %q", tok)
	}
	offset, err = parseImmediate(tok[:open])
	if err != nil {
		return 0, 0, err
	}
	base, err = parseRegister(tok[open+1 : len(tok)-1])
	if err != nil {
		return 0, 0, err
	}
	return offset, base, nil
}

// ParseMemoryImage decodes the "<address> <value>" lines of an initial
// memory image, one word per line, '#' comments and blank lines ignored.
func ParseMemoryImage(memText string) (map[uint16]uint16, []Diagnostic) {
	image := map[uint16]uint16{}
	var diags []Diagnostic

	for lineNo, raw := range strings.Split(memText, "\n") {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			diags = append(diags, Diagnostic{Line: lineNo + 1, Message: "expected '<address> <value>'"})
			continue
		}
		addr, err := strconv.ParseInt(fields[0], 0, 32)
		if err != nil {
			diags = append(diags, Diagnostic{Line: lineNo + 1, Message: fmt.Sprintf("invalid address %q", fields[0])})
			continue
		}
		value, err := strconv.ParseInt(fields[1], 0, 32)
		if err != nil {
			diags = append(diags, Diagnostic{Line: lineNo + 1, Message: fmt.Sprintf("invalid value %q", fields[1])})
			continue
		}
		image[uint16(addr)] = uint16(value) & 0xFFFF
	}

	return image, diags
}
