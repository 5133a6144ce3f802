package object

import "fmt"

// Arena is JAPL's memory manager (spec.md §4.1). Go already garbage
// collects, so Arena does not itself free memory; what it models
// faithfully is the *bookkeeping* contract the original VM relies on:
// a single resizing primitive, a live-bytes counter, and enumeration
// of every object it has vended so a VM teardown can account for all
// of them. This is the generational "free on teardown" discipline
// spec.md §9 calls out as sufficient for a core with no user-visible
// cycles.
type Arena struct {
	bytesInUse int64
	objects    []Object
}

func NewArena() *Arena {
	return &Arena{}
}

// Reallocate is the typed wrapper's single primitive (spec.md §4.1):
// given the old and new byte counts of a region, it returns a slice
// of the requested new size, with min(old,new) bytes of data
// preserved from old when data is non-nil. It updates the
// process-wide (arena-wide) byte counter accordingly.
//
// Passing newSize 0 releases the region (the counter is decremented
// and nil is returned); data == nil with newSize > 0 allocates fresh
// zeroed storage.
func (a *Arena) Reallocate(data []byte, oldSize, newSize int) []byte {
	a.bytesInUse += int64(newSize - oldSize)
	if newSize == 0 {
		return nil
	}
	if data == nil {
		return make([]byte, newSize)
	}
	resized := make([]byte, newSize)
	copy(resized, data)
	return resized
}

// GrowCapacity doubles a capacity starting at 8, the growth policy
// spec.md §4.1 mandates for the typed wrapper over Reallocate.
func GrowCapacity(old int) int {
	if old < 8 {
		return 8
	}
	return old * 2
}

// Track registers o as live, reachable arena-owned state so Objects()
// can enumerate it later for VM teardown. Every constructor that
// hands out a heap object not already covered by a singleton (see
// object.go's Nil/True/False/PosInf/NegInf/NaN vars) should route
// through here.
func (a *Arena) Track(o Object) Object {
	a.objects = append(a.objects, o)
	return o
}

// NewString allocates a String through the arena, tracking it for
// teardown and charging its byte cost against BytesInUse.
func (a *Arena) NewString(s string) *String {
	str := NewString(s)
	a.bytesInUse += int64(len(str.Bytes))
	a.Track(str)
	return str
}

// AdoptString charges an already-constructed String's bytes against
// BytesInUse and tracks it for teardown. Runtime operators (string
// concatenation and replication in operations.go) build the *String
// value directly via NewString, since they have no Arena reference of
// their own; the VM adopts the result into its arena once it reaches
// the value stack, per spec.md §3's "every heap object is reachable"
// invariant.
func (a *Arena) AdoptString(s *String) *String {
	a.bytesInUse += int64(len(s.Bytes))
	a.Track(s)
	return s
}

// NewFunction allocates a Function through the arena.
func (a *Arena) NewFunction(name *String, arity int) *Function {
	fn := &Function{Name: name, Arity: arity, Chunk: NewChunk()}
	a.Track(fn)
	return fn
}

// NewException allocates an Exception through the arena.
func (a *Arena) NewException(name, message string) *Exception {
	exc := NewException(name, message)
	a.Track(exc)
	return exc
}

// BytesInUse returns the number of bytes the arena currently accounts
// for as live.
func (a *Arena) BytesInUse() int64 { return a.bytesInUse }

// Objects enumerates every object the arena has vended, in allocation
// order, so a VM teardown can walk (and, in a future mark-sweep
// extension, collect) all of them.
func (a *Arena) Objects() []Object { return a.objects }

// Teardown releases the arena's bookkeeping. It does not need to free
// Go memory (the garbage collector owns that); it exists so the VM's
// destruction sequence has one call that matches the C-style
// "release all objects created since VM start" contract spec.md §3
// describes.
func (a *Arena) Teardown() {
	a.objects = nil
	a.bytesInUse = 0
}

// OutOfMemory is the error for an allocation request that cannot be
// satisfied. The arena itself never returns it: Reallocate has no
// byte ceiling. Per spec.md §4.1, out-of-memory is fatal: there is no
// partial-state recovery path.
type OutOfMemory struct {
	Requested int
}

func (e OutOfMemory) Error() string {
	return fmt.Sprintf("out of memory: requested %d bytes", e.Requested)
}
