package compiler

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/nocturn9x/japl/object"
)

// Disassemble renders a chunk's instructions to a human-readable
// listing, one instruction per line, generalized from nilan's
// `ASTCompiler.DiassembleBytecode` (which only handled four
// arithmetic opcodes plus OP_CONSTANT) to JAPL's complete opcode set.
func Disassemble(chunk *object.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	ip := 0
	for ip < len(chunk.Code) {
		var n int
		ip, n = disassembleInstruction(&b, chunk, ip)
		_ = n
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *object.Chunk, ip int) (int, int) {
	line := chunk.Lines[ip]
	if ip > 0 && chunk.Lines[ip] == chunk.Lines[ip-1] {
		fmt.Fprintf(b, "%04d    | ", ip)
	} else {
		fmt.Fprintf(b, "%04d %4d ", ip, line)
	}

	op := Opcode(chunk.Code[ip])
	def, err := Get(op)
	if err != nil {
		fmt.Fprintf(b, "unknown opcode %d\n", op)
		return ip + 1, 1
	}

	switch len(def.OperandWidths) {
	case 0:
		fmt.Fprintf(b, "%s\n", def.Name)
		return ip + 1, 1
	case 1:
		width := def.OperandWidths[0]
		operand := readOperand(chunk.Code[ip+1:ip+1+width], width)
		fmt.Fprintf(b, "%-20s %4d%s\n", def.Name, operand, constantSuffix(chunk, op, operand))
		return ip + 1 + width, 1 + width
	default:
		fmt.Fprintf(b, "%s <multi-operand>\n", def.Name)
		return ip + 1, 1
	}
}

func readOperand(bs []byte, width int) int {
	switch width {
	case 1:
		return int(bs[0])
	case 2:
		return int(binary.BigEndian.Uint16(bs))
	case 3:
		return int(read24(bs))
	default:
		return 0
	}
}

// constantSuffix appends "  ; X" for opcodes whose operand
// indexes a constant or name pool, so the disassembly shows what's
// actually being loaded instead of a bare index.
func constantSuffix(chunk *object.Chunk, op Opcode, operand int) string {
	switch op {
	case OP_CONSTANT, OP_CONSTANT_LONG:
		if operand < len(chunk.Constants) {
			return fmt.Sprintf("  ; %s", chunk.Constants[operand].Stringify())
		}
	case OP_GET_GLOBAL, OP_GET_GLOBAL_LONG, OP_SET_GLOBAL, OP_SET_GLOBAL_LONG,
		OP_DEFINE_GLOBAL, OP_DEFINE_GLOBAL_LONG, OP_DEL_GLOBAL, OP_DEL_GLOBAL_LONG:
		if operand < len(chunk.NameConstants) {
			return fmt.Sprintf("  ; %s", chunk.NameConstants[operand].Stringify())
		}
	}
	return ""
}
