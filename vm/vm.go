// Package vm implements JAPL's stack-based bytecode interpreter: a
// value stack, a frame stack of active function calls, and a
// dispatch loop over the opcode table compiler.Opcode defines. It
// generalizes nilan's vm.VM (a single flat instruction pointer with
// one opcode, OP_CONSTANT) to the full call-frame machine spec.md
// §4.6 describes, while keeping nilan's fetch-decode-execute loop
// shape and its Stack type.
package vm

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/nocturn9x/japl/compiler"
	"github.com/nocturn9x/japl/object"
)

// FramesMax bounds call depth; JAPL has no tail-call optimization, so
// unbounded recursion must fail cleanly rather than exhaust the Go
// goroutine stack (spec.md §4.6).
const FramesMax = 400

// VM is JAPL's runtime: value stack, frame stack, global variables,
// and the memory arena that tracks the strings the dispatch loop
// builds at run time (see binaryArith).
type VM struct {
	stack   Stack
	frames  []*Frame
	globals map[string]object.Object
	arena   *object.Arena

	file   string
	Stdout io.Writer

	lastPopped  object.Object
	interrupted int32
}

// New builds a VM ready to run a compiled script. file names the
// source for error tracebacks.
func New(file string) *VM {
	return &VM{
		globals: make(map[string]object.Object),
		arena:   object.NewArena(),
		file:    file,
		Stdout:  os.Stdout,
	}
}

// Interrupt asks the VM to stop at the next instruction boundary,
// surfacing InterruptedError from Run. Safe to call concurrently
// (e.g. from a REPL's SIGINT handler), per spec.md §4.6.
func (vm *VM) Interrupt() { atomic.StoreInt32(&vm.interrupted, 1) }

// LastPopped returns the most recently popped stack value, which the
// REPL uses to echo the result of a bare expression statement.
func (vm *VM) LastPopped() object.Object { return vm.lastPopped }

// Globals exposes the global variable table.
func (vm *VM) Globals() map[string]object.Object { return vm.globals }

// BytesInUse reports the arena's live-byte count, for diagnostics.
func (vm *VM) BytesInUse() int64 { return vm.arena.BytesInUse() }

// Close tears down the VM's arena, releasing its bookkeeping of every
// object this VM has vended (spec.md §3's "released en masse when the
// VM is destroyed" lifecycle). Call once the VM is no longer needed.
func (vm *VM) Close() { vm.arena.Teardown() }

// Run executes a compiled top-level script to completion. lastPopped
// resets to Nil at the start of every evaluation (spec.md §3), so a
// REPL line that declares rather than evaluates doesn't re-echo the
// previous line's result. The value and frame stacks also start empty
// on every call (a run that ended in an error may have left values
// and frames behind); globals are kept.
func (vm *VM) Run(script *object.Function) error {
	vm.lastPopped = object.Nil
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.stack = append(vm.stack, script)
	vm.frames = append(vm.frames, &Frame{function: script, ip: 0, base: 0})
	return vm.run()
}

func (vm *VM) run() error {
	for {
		if atomic.LoadInt32(&vm.interrupted) != 0 {
			atomic.StoreInt32(&vm.interrupted, 0)
			return InterruptedError{}
		}

		frame := vm.frames[len(vm.frames)-1]
		op := compiler.Opcode(frame.readByte())

		switch op {
		case compiler.OP_CONSTANT:
			idx := int(frame.readByte())
			vm.stack.Push(frame.chunk().Constants[idx])
		case compiler.OP_CONSTANT_LONG:
			idx := frame.readUint24()
			vm.stack.Push(frame.chunk().Constants[idx])

		case compiler.OP_TRUE:
			vm.stack.Push(object.True)
		case compiler.OP_FALSE:
			vm.stack.Push(object.False)
		case compiler.OP_NIL:
			vm.stack.Push(object.Nil)
		case compiler.OP_INF:
			vm.stack.Push(object.PosInf)
		case compiler.OP_NAN:
			vm.stack.Push(object.NaN)

		case compiler.OP_POP:
			v, _ := vm.stack.Pop()
			vm.lastPopped = v

		case compiler.OP_GET_LOCAL:
			slot := int(frame.readByte())
			vm.stack.Push(vm.stack[frame.base+slot])
		case compiler.OP_SET_LOCAL:
			slot := int(frame.readByte())
			v, _ := vm.stack.Peek()
			vm.stack[frame.base+slot] = v

		case compiler.OP_GET_GLOBAL, compiler.OP_GET_GLOBAL_LONG:
			name := vm.readName(frame, op)
			v, ok := vm.globals[name]
			if !ok {
				return vm.runtimeError(frame, "ReferenceError", fmt.Sprintf("undefined name '%s'", name))
			}
			vm.stack.Push(v)
		case compiler.OP_SET_GLOBAL, compiler.OP_SET_GLOBAL_LONG:
			name := vm.readName(frame, op)
			if _, ok := vm.globals[name]; !ok {
				return vm.runtimeError(frame, "ReferenceError", fmt.Sprintf("undefined name '%s'", name))
			}
			v, _ := vm.stack.Peek()
			vm.globals[name] = v
		case compiler.OP_DEFINE_GLOBAL, compiler.OP_DEFINE_GLOBAL_LONG:
			name := vm.readName(frame, op)
			v, _ := vm.stack.Pop()
			vm.globals[name] = v
		case compiler.OP_DEL_GLOBAL, compiler.OP_DEL_GLOBAL_LONG:
			name := vm.readName(frame, op)
			if _, ok := vm.globals[name]; !ok {
				return vm.runtimeError(frame, "ReferenceError", fmt.Sprintf("undefined name '%s'", name))
			}
			delete(vm.globals, name)

		case compiler.OP_EQ, compiler.OP_NE:
			b, _ := vm.stack.Pop()
			a, _ := vm.stack.Pop()
			eq := object.Eq(a, b)
			if op == compiler.OP_NE {
				eq = !eq
			}
			vm.stack.Push(object.Bool(eq))

		case compiler.OP_LT, compiler.OP_LE, compiler.OP_GT, compiler.OP_GE:
			b, _ := vm.stack.Pop()
			a, _ := vm.stack.Pop()
			less, equal, ok := object.Compare(a, b)
			if !ok {
				return vm.runtimeError(frame, "TypeError", "operands are not ordered")
			}
			var result bool
			switch op {
			case compiler.OP_LT:
				result = less
			case compiler.OP_LE:
				result = less || equal
			case compiler.OP_GT:
				result = !less && !equal
			case compiler.OP_GE:
				result = !less || equal
			}
			vm.stack.Push(object.Bool(result))

		case compiler.OP_ADD, compiler.OP_SUB, compiler.OP_MUL, compiler.OP_DIV, compiler.OP_MOD, compiler.OP_POW:
			if err := vm.binaryArith(frame, op); err != nil {
				return err
			}

		case compiler.OP_AND, compiler.OP_OR, compiler.OP_XOR, compiler.OP_SHL, compiler.OP_SHR:
			if err := vm.binaryBitwise(frame, op); err != nil {
				return err
			}
		case compiler.OP_NOT_BITS:
			a, _ := vm.stack.Pop()
			result, ok := object.Not(a)
			if !ok {
				return vm.runtimeError(frame, "TypeError", fmt.Sprintf("unsupported operand type for '~': %s", a.Tag()))
			}
			vm.stack.Push(result)

		case compiler.OP_NEGATE:
			a, _ := vm.stack.Pop()
			result, ok := object.Negate(a)
			if !ok {
				return vm.runtimeError(frame, "TypeError", fmt.Sprintf("unsupported operand type for unary '-': %s", a.Tag()))
			}
			vm.stack.Push(result)
		case compiler.OP_NOT:
			a, _ := vm.stack.Pop()
			vm.stack.Push(object.Bool(object.IsFalsey(a)))

		case compiler.OP_JUMP:
			offset := frame.readUint16()
			frame.ip += offset
		case compiler.OP_JUMP_IF_FALSE:
			offset := frame.readUint16()
			v, _ := vm.stack.Peek()
			if object.IsFalsey(v) {
				frame.ip += offset
			}
		case compiler.OP_LOOP:
			offset := frame.readUint16()
			frame.ip -= offset

		case compiler.OP_CALL:
			argCount := int(frame.readByte())
			if err := vm.call(argCount); err != nil {
				return err
			}

		case compiler.OP_RETURN:
			result, _ := vm.stack.Pop()
			base := frame.base
			vm.stack = vm.stack[:base]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}
			vm.stack.Push(result)

		case compiler.OP_PRINT:
			v, _ := vm.stack.Pop()
			fmt.Fprintln(vm.Stdout, v.Stringify())

		default:
			return vm.runtimeError(frame, "InternalError", fmt.Sprintf("unknown opcode %d", op))
		}
	}
}

// readName decodes a 1- or 3-byte global-name operand for the GET/
// SET/DEFINE/DEL_GLOBAL opcode family and resolves it against the
// current frame's NameConstants pool.
func (vm *VM) readName(frame *Frame, op compiler.Opcode) string {
	var idx int
	switch op {
	case compiler.OP_GET_GLOBAL_LONG, compiler.OP_SET_GLOBAL_LONG,
		compiler.OP_DEFINE_GLOBAL_LONG, compiler.OP_DEL_GLOBAL_LONG:
		idx = frame.readUint24()
	default:
		idx = int(frame.readByte())
	}
	return frame.chunk().NameConstants[idx].Stringify()
}

func (vm *VM) binaryArith(frame *Frame, op compiler.Opcode) error {
	b, _ := vm.stack.Pop()
	a, _ := vm.stack.Pop()

	var result object.Object
	var exc *object.Exception
	switch op {
	case compiler.OP_ADD:
		result, exc = object.Add(a, b)
	case compiler.OP_SUB:
		result, exc = object.Sub(a, b)
	case compiler.OP_MUL:
		result, exc = object.Mul(a, b)
	case compiler.OP_DIV:
		result, exc = object.Div(a, b)
	case compiler.OP_MOD:
		result, exc = object.Mod(a, b)
	case compiler.OP_POW:
		result, exc = object.Pow(a, b)
	}
	if exc != nil {
		return vm.runtimeError(frame, exc.Name.Stringify(), exc.Message.Stringify())
	}
	if result == nil {
		return vm.runtimeError(frame, "TypeError", fmt.Sprintf("unsupported operand types: %s and %s", a.Tag(), b.Tag()))
	}
	if s, ok := result.(*object.String); ok {
		// ADD (concatenation) and MUL (replication) are the only
		// operators that allocate a fresh heap object at runtime;
		// adopt it into the arena so BytesInUse/Objects() account for
		// it like any other live heap value (spec.md §4.1).
		result = vm.arena.AdoptString(s)
	}
	vm.stack.Push(result)
	return nil
}

func (vm *VM) binaryBitwise(frame *Frame, op compiler.Opcode) error {
	b, _ := vm.stack.Pop()
	a, _ := vm.stack.Pop()

	var result object.Object
	var ok bool
	switch op {
	case compiler.OP_AND:
		result, ok = object.And(a, b)
	case compiler.OP_OR:
		result, ok = object.Or(a, b)
	case compiler.OP_XOR:
		result, ok = object.Xor(a, b)
	case compiler.OP_SHL:
		result, ok = object.Shl(a, b)
	case compiler.OP_SHR:
		result, ok = object.Shr(a, b)
	}
	if !ok {
		return vm.runtimeError(frame, "TypeError", fmt.Sprintf("unsupported operand types: %s and %s", a.Tag(), b.Tag()))
	}
	vm.stack.Push(result)
	return nil
}

// call sets up a new Frame for a JAPL function value sitting
// argCount slots below the stack top, per the calling convention
// spec.md §4.6 describes: [..., callee, arg0, ..., argN-1].
func (vm *VM) call(argCount int) error {
	calleeIdx := len(vm.stack) - 1 - argCount
	if calleeIdx < 0 {
		return vm.runtimeError(vm.frames[len(vm.frames)-1], "TypeError", "invalid call")
	}
	callee, ok := vm.stack[calleeIdx].(*object.Function)
	if !ok {
		return vm.runtimeError(vm.frames[len(vm.frames)-1], "TypeError", "can only call functions")
	}

	required := callee.Arity - callee.DefaultsCount
	if argCount < required || argCount > callee.Arity {
		return vm.runtimeError(vm.frames[len(vm.frames)-1], "TypeError",
			fmt.Sprintf("%s takes %d arguments but %d were given", callee.Stringify(), callee.Arity, argCount))
	}
	for missing := callee.Arity - argCount; missing > 0; missing-- {
		defaultIdx := callee.DefaultsCount - missing
		vm.stack.Push(callee.Defaults[defaultIdx])
	}

	if len(vm.frames) >= FramesMax {
		return newRecursionError(vm.file, vm.traceback())
	}

	base := len(vm.stack) - callee.Arity - 1
	vm.frames = append(vm.frames, &Frame{function: callee, ip: 0, base: base})
	return nil
}

func (vm *VM) traceback() []TraceEntry {
	entries := make([]TraceEntry, 0, len(vm.frames))
	for _, f := range vm.frames {
		entries = append(entries, TraceEntry{Line: f.line(), Function: f.name()})
	}
	return entries
}

func (vm *VM) runtimeError(frame *Frame, kind, message string) *RuntimeError {
	return &RuntimeError{
		File:      vm.file,
		Kind:      kind,
		Message:   message,
		Traceback: vm.traceback(),
	}
}
