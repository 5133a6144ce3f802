package vm

import "github.com/nocturn9x/japl/object"

// Stack is the VM's value stack. It generalizes nilan's vm.Stack
// ([]any with Push/Pop/Peek) to hold typed object.Object values
// instead of bare `any`, since every JAPL runtime value already
// satisfies that interface.
type Stack []object.Object

func (s *Stack) IsEmpty() bool { return len(*s) == 0 }

func (s *Stack) Push(value object.Object) { *s = append(*s, value) }

func (s *Stack) Pop() (object.Object, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	index := len(*s) - 1
	element := (*s)[index]
	*s = (*s)[:index]
	return element, true
}

func (s *Stack) Peek() (object.Object, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	return (*s)[len(*s)-1], true
}

// PeekAt returns the value `distance` slots below the top (0 is the
// top itself), used by binary operators to read both operands
// without popping twice then pushing.
func (s *Stack) PeekAt(distance int) (object.Object, bool) {
	idx := len(*s) - 1 - distance
	if idx < 0 {
		return nil, false
	}
	return (*s)[idx], true
}
