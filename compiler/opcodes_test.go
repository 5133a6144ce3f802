package compiler

import "testing"

func TestMakeInstructionEncodesOperandWidths(t *testing.T) {
	tests := []struct {
		name    string
		op      Opcode
		operand int
		want    []byte
	}{
		{"1-byte constant", OP_CONSTANT, 5, []byte{byte(OP_CONSTANT), 5}},
		{"2-byte jump", OP_JUMP, 300, []byte{byte(OP_JUMP), 0x01, 0x2C}},
		{"3-byte long constant", OP_CONSTANT_LONG, 70000, []byte{byte(OP_CONSTANT_LONG), 0x01, 0x11, 0x70}},
	}

	for _, tt := range tests {
		got, err := MakeInstruction(tt.op, tt.operand)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%s: len = %d, want %d", tt.name, len(got), len(tt.want))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: byte %d = %#x, want %#x", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestMakeInstructionNoOperands(t *testing.T) {
	got, err := MakeInstruction(OP_RETURN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != byte(OP_RETURN) {
		t.Errorf("MakeInstruction(OP_RETURN) = %v, want [OP_RETURN]", got)
	}
}

func TestGetUnknownOpcode(t *testing.T) {
	if _, err := Get(Opcode(255)); err == nil {
		t.Error("Get() should fail for an undefined opcode")
	}
}

func TestPut24Read24RoundTrip(t *testing.T) {
	buf := make([]byte, 3)
	put24(buf, 0xABCDEF)
	if got := read24(buf); got != 0xABCDEF {
		t.Errorf("read24(put24(x)) = %#x, want %#x", got, 0xABCDEF)
	}
}
