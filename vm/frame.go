package vm

import "github.com/nocturn9x/japl/object"

// Frame is one activation record: the function being executed, its
// instruction pointer into that function's own chunk, and the index
// into the VM's value stack where its locals begin (slot 0 of a
// frame's locals is always the function's own value, per spec.md
// §4.4, which lets a compiled function refer to itself recursively).
type Frame struct {
	function *object.Function
	ip       int
	base     int
}

func (f *Frame) chunk() *object.Chunk { return f.function.Chunk }

func (f *Frame) readByte() byte {
	b := f.chunk().Code[f.ip]
	f.ip++
	return b
}

func (f *Frame) readUint16() int {
	hi := f.readByte()
	lo := f.readByte()
	return int(hi)<<8 | int(lo)
}

func (f *Frame) readUint24() int {
	hi := f.readByte()
	mid := f.readByte()
	lo := f.readByte()
	return int(hi)<<16 | int(mid)<<8 | int(lo)
}

func (f *Frame) line() int {
	if f.ip == 0 {
		return 0
	}
	return int(f.chunk().Lines[f.ip-1])
}

func (f *Frame) name() string {
	if f.function.Name == nil {
		return "<module>"
	}
	return f.function.Name.Stringify()
}
