package intcode

import (
	"fmt"
	"strings"
)

// Op identifies an Intcode operation. Its value is the two-digit opcode.
type Op int64

// Intcode opcodes.
const (
	OpAdd         Op = 1
	OpMultiply    Op = 2
	OpInput       Op = 3
	OpOutput      Op = 4
	OpJumpIfTrue  Op = 5
	OpJumpIfFalse Op = 6
	OpLessThan    Op = 7
	OpEquals      Op = 8
	OpTerminate   Op = 99
)

// Mode is the addressing mode of a read parameter.
type Mode int8

const (
	// Position treats the parameter as an address to dereference.
	Position Mode = 0
	// Immediate treats the parameter as a literal value.
	Immediate Mode = 1
)

// maxReads is the largest number of read parameters of any instruction.
const maxReads = 2

type opInfo struct {
	name  string
	reads int // read parameters, each carrying a mode
	width int // opcode cell plus every parameter cell
}

var ops = map[Op]opInfo{
	OpAdd:         {"add", 2, 4},
	OpMultiply:    {"mul", 2, 4},
	OpInput:       {"in", 0, 2},
	OpOutput:      {"out", 1, 2},
	OpJumpIfTrue:  {"jnz", 2, 3},
	OpJumpIfFalse: {"jz", 2, 3},
	OpLessThan:    {"lt", 2, 4},
	OpEquals:      {"eq", 2, 4},
	OpTerminate:   {"hlt", 0, 1},
}

// Valid reports whether op is a known opcode.
func (op Op) Valid() bool {
	_, ok := ops[op]
	return ok
}

// String returns the mnemonic of op.
func (op Op) String() string {
	if info, ok := ops[op]; ok {
		return info.name
	}
	return fmt.Sprintf("op(%d)", int64(op))
}

// Instruction is a decoded opcode together with the modes of its read
// parameters. Modes beyond Reads() are always Position; write destinations
// carry no mode.
type Instruction struct {
	Op    Op
	Modes [maxReads]Mode
}

// Decode splits raw into its opcode and parameter modes.
//
// The two low decimal digits select the opcode; the remaining digits, least
// significant first, give the mode of each read parameter. Digits past the
// read parameters belong to the write destination and are ignored.
func Decode(raw int64) (Instruction, error) {
	if raw < 0 {
		return Instruction{}, newUnknownOpcode(raw)
	}

	op := Op(raw % 100)
	if !op.Valid() {
		return Instruction{}, newUnknownOpcode(raw)
	}
	info := ops[op]

	ins := Instruction{Op: op}
	digits := raw / 100
	for k := 0; k < info.reads; k++ {
		switch m := Mode(digits % 10); m {
		case Position, Immediate:
			ins.Modes[k] = m
		default:
			return Instruction{}, newUnknownOpcode(raw)
		}
		digits /= 10
	}
	return ins, nil
}

// Encode is the inverse of Decode for valid instructions.
func (ins Instruction) Encode() int64 {
	raw := int64(ins.Op)
	scale := int64(100)
	for k := 0; k < ins.Reads(); k++ {
		raw += int64(ins.Modes[k]) * scale
		scale *= 10
	}
	return raw
}

// Width is the number of memory cells the instruction occupies.
func (ins Instruction) Width() int {
	return ops[ins.Op].width
}

// Reads is the number of read parameters.
func (ins Instruction) Reads() int {
	return ops[ins.Op].reads
}

// Writes reports whether the instruction's last parameter is a write
// destination.
func (ins Instruction) Writes() bool {
	switch ins.Op {
	case OpAdd, OpMultiply, OpInput, OpLessThan, OpEquals:
		return true
	}
	return false
}

// String renders the mnemonic and parameter modes, e.g. "mul #a b ->c".
func (ins Instruction) String() string {
	var b strings.Builder
	b.WriteString(ins.Op.String())
	for k := 0; k < ins.Reads(); k++ {
		b.WriteByte(' ')
		if ins.Modes[k] == Immediate {
			b.WriteByte('#')
		}
		b.WriteByte(byte('a' + k))
	}
	if ins.Writes() {
		b.WriteString(" ->")
		b.WriteByte(byte('a' + ins.Reads()))
	}
	return b.String()
}
