package compiler

import (
	"encoding/binary"
	"fmt"
)

// Opcode is a single bytecode instruction's tag byte. The full table
// below realizes spec.md §4.5, generalized from nilan's
// `compiler.Opcode`/`OpCodeDefinition` pairing (nilan only had
// OP_CONSTANT, OP_ADD/SUB/MUL/DIV, OP_NEGATE/NOT, globals and jumps;
// this is the same definition-table shape multiplied out to JAPL's
// full opcode set).
type Opcode byte

const (
	OP_CONSTANT Opcode = iota
	OP_CONSTANT_LONG

	OP_TRUE
	OP_FALSE
	OP_NIL
	OP_INF
	OP_NAN

	OP_POP

	OP_GET_LOCAL
	OP_SET_LOCAL

	OP_GET_GLOBAL
	OP_GET_GLOBAL_LONG
	OP_SET_GLOBAL
	OP_SET_GLOBAL_LONG
	OP_DEFINE_GLOBAL
	OP_DEFINE_GLOBAL_LONG
	OP_DEL_GLOBAL
	OP_DEL_GLOBAL_LONG

	OP_EQ
	OP_NE
	OP_LT
	OP_LE
	OP_GT
	OP_GE

	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_POW

	OP_AND
	OP_OR
	OP_XOR
	OP_NOT_BITS
	OP_SHL
	OP_SHR

	OP_NEGATE
	OP_NOT

	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_LOOP

	OP_CALL
	OP_RETURN

	OP_PRINT
)

// OpDef describes the shape of one opcode's operands, mirroring
// nilan's OpCodeDefinition{Name, OperandWidths}.
type OpDef struct {
	Name          string
	OperandWidths []int // in bytes; empty for a bare opcode
}

var definitions = map[Opcode]OpDef{
	OP_CONSTANT:      {"OP_CONSTANT", []int{1}},
	OP_CONSTANT_LONG: {"OP_CONSTANT_LONG", []int{3}},

	OP_TRUE:  {"OP_TRUE", nil},
	OP_FALSE: {"OP_FALSE", nil},
	OP_NIL:   {"OP_NIL", nil},
	OP_INF:   {"OP_INF", nil},
	OP_NAN:   {"OP_NAN", nil},

	OP_POP: {"OP_POP", nil},

	OP_GET_LOCAL: {"OP_GET_LOCAL", []int{1}},
	OP_SET_LOCAL: {"OP_SET_LOCAL", []int{1}},

	OP_GET_GLOBAL:         {"OP_GET_GLOBAL", []int{1}},
	OP_GET_GLOBAL_LONG:    {"OP_GET_GLOBAL_LONG", []int{3}},
	OP_SET_GLOBAL:         {"OP_SET_GLOBAL", []int{1}},
	OP_SET_GLOBAL_LONG:    {"OP_SET_GLOBAL_LONG", []int{3}},
	OP_DEFINE_GLOBAL:      {"OP_DEFINE_GLOBAL", []int{1}},
	OP_DEFINE_GLOBAL_LONG: {"OP_DEFINE_GLOBAL_LONG", []int{3}},
	OP_DEL_GLOBAL:         {"OP_DEL_GLOBAL", []int{1}},
	OP_DEL_GLOBAL_LONG:    {"OP_DEL_GLOBAL_LONG", []int{3}},

	OP_EQ: {"OP_EQ", nil},
	OP_NE: {"OP_NE", nil},
	OP_LT: {"OP_LT", nil},
	OP_LE: {"OP_LE", nil},
	OP_GT: {"OP_GT", nil},
	OP_GE: {"OP_GE", nil},

	OP_ADD: {"OP_ADD", nil},
	OP_SUB: {"OP_SUB", nil},
	OP_MUL: {"OP_MUL", nil},
	OP_DIV: {"OP_DIV", nil},
	OP_MOD: {"OP_MOD", nil},
	OP_POW: {"OP_POW", nil},

	OP_AND:      {"OP_AND", nil},
	OP_OR:       {"OP_OR", nil},
	OP_XOR:      {"OP_XOR", nil},
	OP_NOT_BITS: {"OP_NOT_BITS", nil},
	OP_SHL:      {"OP_SHL", nil},
	OP_SHR:      {"OP_SHR", nil},

	OP_NEGATE: {"OP_NEGATE", nil},
	OP_NOT:    {"OP_NOT", nil},

	OP_JUMP:          {"OP_JUMP", []int{2}},
	OP_JUMP_IF_FALSE: {"OP_JUMP_IF_FALSE", []int{2}},
	OP_LOOP:          {"OP_LOOP", []int{2}},

	OP_CALL:   {"OP_CALL", []int{1}},
	OP_RETURN: {"OP_RETURN", nil},

	OP_PRINT: {"OP_PRINT", nil},
}

func Get(op Opcode) (OpDef, error) {
	def, ok := definitions[op]
	if !ok {
		return OpDef{}, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction encodes an opcode and its operands as a byte slice,
// big-endian, matching nilan's MakeInstruction/AssembleInstruction
// convention extended to 1- and 3-byte operand widths (nilan only
// ever had a 2-byte width).
func MakeInstruction(op Opcode, operands ...int) ([]byte, error) {
	def, err := Get(op)
	if err != nil {
		return nil, err
	}

	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instruction[offset] = byte(operand)
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		case 3:
			put24(instruction[offset:], uint32(operand))
		default:
			return nil, fmt.Errorf("unsupported operand width %d", width)
		}
		offset += width
	}
	return instruction, nil
}

func put24(dst []byte, v uint32) {
	dst[0] = byte(v >> 16)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v)
}

func read24(src []byte) uint32 {
	return uint32(src[0])<<16 | uint32(src[1])<<8 | uint32(src[2])
}
