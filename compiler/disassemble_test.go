package compiler

import (
	"strings"
	"testing"

	"github.com/nocturn9x/japl/object"
)

func TestDisassembleShowsConstantValue(t *testing.T) {
	chunk := object.NewChunk()
	idx := chunk.AddConstant(object.Integer(7))
	instr, _ := MakeInstruction(OP_CONSTANT, idx)
	for _, b := range instr {
		chunk.Write(b, 1)
	}
	chunk.Write(byte(OP_RETURN), 1)

	out := Disassemble(chunk, "test")
	if !strings.Contains(out, "OP_CONSTANT") {
		t.Errorf("Disassemble() missing OP_CONSTANT: %s", out)
	}
	if !strings.Contains(out, "; 7") {
		t.Errorf("Disassemble() missing resolved constant value: %s", out)
	}
	if !strings.Contains(out, "OP_RETURN") {
		t.Errorf("Disassemble() missing OP_RETURN: %s", out)
	}
}

func TestDisassembleSuppressesRepeatedLineNumbers(t *testing.T) {
	chunk := object.NewChunk()
	chunk.Write(byte(OP_NIL), 1)
	chunk.Write(byte(OP_RETURN), 1)

	out := Disassemble(chunk, "test")
	if !strings.Contains(out, "|") {
		t.Errorf("Disassemble() should suppress a repeated line number: %s", out)
	}
}
