// Package object defines JAPL's runtime value representation: a small
// set of tagged heap objects plus the primitive operations (equality,
// hashing, stringification, arithmetic) dispatched on an object's tag.
//
// There is no inheritance hierarchy here by design (see spec.md §9,
// "Object hierarchy with shared header"): each variant is its own Go
// type and `Object` is the sum-type interface every variant
// implements, the same shape nilan's ast package uses for its
// Expression/Stmt node variants generalized from an AST-node sum type
// to a runtime-value sum type.
package object

import (
	"fmt"
	"math"
	"strconv"
)

// Tag names an Object's concrete variant, mirroring the tagged-union
// header described in spec.md §3.
type Tag byte

const (
	TagString Tag = iota
	TagInteger
	TagFloat
	TagBool
	TagNil
	TagInfinity
	TagNaN
	TagFunction
	TagException
	TagBase
)

func (t Tag) String() string {
	switch t {
	case TagString:
		return "string"
	case TagInteger:
		return "integer"
	case TagFloat:
		return "float"
	case TagBool:
		return "bool"
	case TagNil:
		return "nil"
	case TagInfinity:
		return "infinity"
	case TagNaN:
		return "nan"
	case TagFunction:
		return "function"
	case TagException:
		return "exception"
	case TagBase:
		return "base"
	default:
		return "unknown"
	}
}

// Object is the common interface every JAPL runtime value implements.
type Object interface {
	Tag() Tag
	// Stringify returns the human-readable rendering used by PRINT and
	// by exception tracebacks.
	Stringify() string
	Hash() uint32
}

// ---- String ----

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

func fnv1a(data []byte) uint32 {
	h := fnvOffset32
	for _, b := range data {
		h ^= uint32(b)
		h *= fnvPrime32
	}
	return h
}

// String is a JAPL string object. Its hash is computed once, at
// construction, and never changes for the object's lifetime (spec.md
// §3 invariant (c)).
type String struct {
	Bytes []byte
	hash  uint32
}

// NewString constructs a String object, computing its FNV-1a hash.
// Construction does not intern; interning (one instance per distinct
// literal within a chunk) is the compiler's job, not the object
// model's (spec.md §4.4).
func NewString(s string) *String {
	b := []byte(s)
	return &String{Bytes: b, hash: fnv1a(b)}
}

func (s *String) Tag() Tag          { return TagString }
func (s *String) Stringify() string { return string(s.Bytes) }
func (s *String) Hash() uint32      { return s.hash }
func (s *String) Len() int          { return len(s.Bytes) }

// Equals compares two strings by length, then hash, then bytes, per
// spec.md §3 invariant (b) and §8's hash-consistency property.
func (s *String) Equals(other *String) bool {
	if s == other {
		return true
	}
	if len(s.Bytes) != len(other.Bytes) || s.hash != other.hash {
		return false
	}
	for i := range s.Bytes {
		if s.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}

// ---- Integer ----

type Integer int64

func (Integer) Tag() Tag            { return TagInteger }
func (i Integer) Stringify() string { return strconv.FormatInt(int64(i), 10) }
func (i Integer) Hash() uint32      { return uint32(i) ^ uint32(uint64(i)>>32) }

// ---- Float ----

type Float float64

func (Float) Tag() Tag { return TagFloat }
func (f Float) Stringify() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}
func (f Float) Hash() uint32 {
	bits := math.Float64bits(float64(f))
	return uint32(bits) ^ uint32(bits>>32)
}

// ---- Bool ----

type Bool bool

const (
	True  Bool = true
	False Bool = false
)

func (Bool) Tag() Tag { return TagBool }
func (b Bool) Stringify() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Hash() uint32 {
	if b {
		return 1
	}
	return 0
}

// ---- Nil ----

type NilType struct{}

// Nil is JAPL's singleton nil/null value.
var Nil = NilType{}

func (NilType) Tag() Tag            { return TagNil }
func (NilType) Stringify() string   { return "nil" }
func (NilType) Hash() uint32        { return 0 }

// ---- Infinity ----

// Infinity represents +inf / -inf, distinguished by Negative.
type Infinity struct {
	Negative bool
}

var (
	PosInf = Infinity{Negative: false}
	NegInf = Infinity{Negative: true}
)

func (Infinity) Tag() Tag { return TagInfinity }
func (i Infinity) Stringify() string {
	if i.Negative {
		return "-inf"
	}
	return "inf"
}
func (i Infinity) Hash() uint32 {
	if i.Negative {
		return 2
	}
	return 1
}

func (i Infinity) Float() float64 {
	if i.Negative {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// ---- NaN ----

type NaNType struct{}

var NaN = NaNType{}

func (NaNType) Tag() Tag          { return TagNaN }
func (NaNType) Stringify() string { return "nan" }

// Hash is defined (0) even though NaN is never equal to itself;
// spec.md only requires hash consistency for strings (§8).
func (NaNType) Hash() uint32 { return 0 }

// ---- Function ----

// Chunk is a growable bytecode sequence paired with a parallel
// per-byte line table and a constant pool of heap objects (spec.md
// §3, "Chunk"). It lives in this package, not the compiler package,
// because Function (itself an Object) owns one: putting both the
// value model and the bytecode container that a function value
// carries in one package avoids a compiler<->object import cycle.
type Chunk struct {
	Code      []byte
	Lines     []int32
	Constants []Object

	// NameConstants holds interned global variable name strings,
	// indexed the same way Constants is, so GET_GLOBAL/SET_GLOBAL/
	// DEFINE_GLOBAL/DEL_GLOBAL operands can reference a name without
	// re-walking Constants for non-string entries.
	NameConstants []*String
}

func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends a single raw byte (opcode or operand byte) along with
// its source line. Lines has the same length as Code: one entry per
// byte, per spec.md §3.
func (c *Chunk) Write(b byte, line int32) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends a value to the constant pool and returns its
// index. Constants are append-only within a chunk (spec.md §3).
func (c *Chunk) AddConstant(v Object) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// InternString returns the index of an existing constant-pool string
// equal to s, adding a new one only if none exists. This is the
// compiler-level string deduplication spec.md §4.4 requires: a linear
// scan over the constant pool by byte equality.
func (c *Chunk) InternString(s string) int {
	for i, existing := range c.Constants {
		if str, ok := existing.(*String); ok && str.Stringify() == s {
			return i
		}
	}
	return c.AddConstant(NewString(s))
}

// AddName interns a variable-name string in NameConstants, returning
// its index. Unlike InternString this pool backs GET_GLOBAL/
// SET_GLOBAL/DEFINE_GLOBAL/DEL_GLOBAL operands specifically.
func (c *Chunk) AddName(name string) int {
	for i, existing := range c.NameConstants {
		if existing.Stringify() == name {
			return i
		}
	}
	c.NameConstants = append(c.NameConstants, NewString(name))
	return len(c.NameConstants) - 1
}

// Function represents both a top-level script and a user-defined
// function: both are "a Chunk plus an arity", per spec.md §3.
type Function struct {
	Name          *String // nil for the top-level script / anonymous functions
	Arity         int
	DefaultsCount int
	Defaults      []Object
	Chunk         *Chunk
}

func (*Function) Tag() Tag { return TagFunction }
func (f *Function) Stringify() string {
	if f.Name == nil {
		return "<code object>"
	}
	return fmt.Sprintf("<function %s>", f.Name.Stringify())
}
func (f *Function) Hash() uint32 {
	if f.Name == nil {
		return 0
	}
	return f.Name.Hash()
}

// ---- Exception ----

// Exception is a runtime error value: an error-name string plus a
// message string (spec.md §3, §7).
type Exception struct {
	Name    *String
	Message *String
}

func NewException(name, message string) *Exception {
	return &Exception{Name: NewString(name), Message: NewString(message)}
}

func (*Exception) Tag() Tag { return TagException }
func (e *Exception) Stringify() string {
	return fmt.Sprintf("%s: %s", e.Name.Stringify(), e.Message.Stringify())
}
func (e *Exception) Hash() uint32 { return e.Name.Hash() ^ e.Message.Hash() }

// ---- Base ----

// Base is the sentinel object used where no meaningful value exists
// yet (e.g. a freshly allocated, not-yet-initialized slot).
type Base struct{}

func (Base) Tag() Tag          { return TagBase }
func (Base) Stringify() string { return "<object>" }
func (Base) Hash() uint32      { return 0 }
