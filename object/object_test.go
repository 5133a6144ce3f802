package object

import "testing"

func TestStringHashConsistency(t *testing.T) {
	a := NewString("hello")
	b := NewString("hello")
	if a.Hash() != b.Hash() {
		t.Errorf("equal strings hashed differently: %d != %d", a.Hash(), b.Hash())
	}
	if !a.Equals(b) {
		t.Error("Equals() = false for identical strings")
	}
}

func TestStringEqualsByLengthThenBytes(t *testing.T) {
	a := NewString("ab")
	b := NewString("ac")
	if a.Equals(b) {
		t.Error("Equals() = true for differing strings")
	}
}

func TestFloatHashIsNonZeroForNonZeroFloat(t *testing.T) {
	f := Float(3.14)
	if f.Hash() == 0 {
		t.Error("Float.Hash() should not be zero for a nonzero float")
	}
}

func TestTagStringNames(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{TagString, "string"},
		{TagInteger, "integer"},
		{TagFunction, "function"},
		{TagException, "exception"},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("Tag(%d).String() = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestChunkWriteKeepsLinesInSync(t *testing.T) {
	c := NewChunk()
	c.Write(0x01, 10)
	c.Write(0x02, 10)
	c.Write(0x03, 11)
	if len(c.Code) != len(c.Lines) {
		t.Fatalf("Code/Lines length mismatch: %d vs %d", len(c.Code), len(c.Lines))
	}
	if c.Lines[2] != 11 {
		t.Errorf("Lines[2] = %d, want 11", c.Lines[2])
	}
}

func TestChunkInternStringDeduplicates(t *testing.T) {
	c := NewChunk()
	i1 := c.InternString("shared")
	i2 := c.InternString("shared")
	i3 := c.InternString("different")
	if i1 != i2 {
		t.Errorf("InternString did not dedupe: %d != %d", i1, i2)
	}
	if i3 == i1 {
		t.Error("InternString collapsed distinct strings")
	}
	if len(c.Constants) != 2 {
		t.Errorf("len(Constants) = %d, want 2", len(c.Constants))
	}
}

func TestChunkAddNameDeduplicates(t *testing.T) {
	c := NewChunk()
	i1 := c.AddName("x")
	i2 := c.AddName("x")
	if i1 != i2 {
		t.Errorf("AddName did not dedupe: %d != %d", i1, i2)
	}
	if len(c.NameConstants) != 1 {
		t.Errorf("len(NameConstants) = %d, want 1", len(c.NameConstants))
	}
}

func TestFunctionStringify(t *testing.T) {
	anon := &Function{Chunk: NewChunk()}
	if anon.Stringify() != "<code object>" {
		t.Errorf("anonymous Stringify() = %q", anon.Stringify())
	}
	named := &Function{Name: NewString("add"), Chunk: NewChunk()}
	if named.Stringify() != "<function add>" {
		t.Errorf("named Stringify() = %q", named.Stringify())
	}
}
