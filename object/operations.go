package object

import (
	"math"
	"math/bits"
	"strings"
)

// IsFalsey implements spec.md §4.2 / §8's falsey law: nil, false,
// numeric zero, and the empty string are falsey; everything else,
// including NaN and both infinities, is truthy.
func IsFalsey(o Object) bool {
	switch v := o.(type) {
	case NilType:
		return true
	case Bool:
		return !bool(v)
	case Integer:
		return v == 0
	case Float:
		return v == 0
	case *String:
		return len(v.Bytes) == 0
	default:
		return false
	}
}

// Eq implements variant-aware equality (spec.md §4.2). NaN is never
// equal to anything, including itself.
func Eq(a, b Object) bool {
	if _, ok := a.(NaNType); ok {
		return false
	}
	if _, ok := b.(NaNType); ok {
		return false
	}

	switch av := a.(type) {
	case Integer:
		switch bv := b.(type) {
		case Integer:
			return av == bv
		case Float:
			return Float(av) == bv
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Integer:
			return av == Float(bv)
		case Float:
			return av == bv
		}
		return false
	case *String:
		bv, ok := b.(*String)
		return ok && av.Equals(bv)
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case NilType:
		_, ok := b.(NilType)
		return ok
	case Infinity:
		bv, ok := b.(Infinity)
		return ok && av.Negative == bv.Negative
	case *Function:
		bv, ok := b.(*Function)
		if !ok {
			return false
		}
		if av.Name == nil || bv.Name == nil {
			return av.Name == bv.Name
		}
		return av.Name.Equals(bv.Name)
	default:
		return a.Tag() == b.Tag()
	}
}

// Hash returns the FNV-1a / bit-pattern hash for o, per spec.md §4.2.
func Hash(o Object) uint32 { return o.Hash() }

// asFloat widens an Integer/Float/Infinity to a float64, reporting
// whether the conversion was meaningful (i.e. o was numeric).
func asFloat(o Object) (float64, bool) {
	switch v := o.(type) {
	case Integer:
		return float64(v), true
	case Float:
		return float64(v), true
	case Infinity:
		return v.Float(), true
	case NaNType:
		return math.NaN(), true
	default:
		return 0, false
	}
}

func isFloaty(o Object) bool {
	switch o.(type) {
	case Float, Infinity, NaNType:
		return true
	default:
		return false
	}
}

func floatResult(f float64) Object {
	switch {
	case math.IsNaN(f):
		return NaN
	case math.IsInf(f, 1):
		return PosInf
	case math.IsInf(f, -1):
		return NegInf
	default:
		return Float(f)
	}
}

// Add implements `+`. String concatenation is the one non-numeric
// case; everything else follows the numeric promotion rules in
// spec.md §4.2: Integer op Integer stays Integer (with overflow
// detection per the spec.md §9(b) ruling), any Float/Infinity/NaN
// operand promotes the whole expression to Float semantics.
func Add(a, b Object) (Object, *Exception) {
	if as, ok := a.(*String); ok {
		if bs, ok := b.(*String); ok {
			buf := make([]byte, 0, len(as.Bytes)+len(bs.Bytes))
			buf = append(buf, as.Bytes...)
			buf = append(buf, bs.Bytes...)
			return NewString(string(buf)), nil
		}
		return nil, nil
	}
	if ai, ok := a.(Integer); ok {
		if bi, ok := b.(Integer); ok {
			sum, overflow := addOverflows(int64(ai), int64(bi))
			if overflow {
				return nil, NewException("TypeError", "integer overflow in addition")
			}
			return Integer(sum), nil
		}
	}
	if isNumeric(a) && isNumeric(b) && (isFloaty(a) || isFloaty(b)) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return floatResult(af + bf), nil
	}
	return nil, nil
}

func Sub(a, b Object) (Object, *Exception) {
	if ai, ok := a.(Integer); ok {
		if bi, ok := b.(Integer); ok {
			diff, overflow := subOverflows(int64(ai), int64(bi))
			if overflow {
				return nil, NewException("TypeError", "integer overflow in subtraction")
			}
			return Integer(diff), nil
		}
	}
	if isNumeric(a) && isNumeric(b) && (isFloaty(a) || isFloaty(b)) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return floatResult(af - bf), nil
	}
	return nil, nil
}

// Mul implements `*`. String * Integer replicates the string, per
// spec.md §4.2.
func Mul(a, b Object) (Object, *Exception) {
	if as, ok := a.(*String); ok {
		if n, ok := b.(Integer); ok {
			return replicate(as, int64(n)), nil
		}
	}
	if as, ok := b.(*String); ok {
		if n, ok := a.(Integer); ok {
			return replicate(as, int64(n)), nil
		}
	}
	if ai, ok := a.(Integer); ok {
		if bi, ok := b.(Integer); ok {
			product, overflow := mulOverflows(int64(ai), int64(bi))
			if overflow {
				return nil, NewException("TypeError", "integer overflow in multiplication")
			}
			return Integer(product), nil
		}
	}
	if isNumeric(a) && isNumeric(b) && (isFloaty(a) || isFloaty(b)) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return floatResult(af * bf), nil
	}
	return nil, nil
}

func replicate(s *String, n int64) Object {
	if n <= 0 {
		return NewString("")
	}
	var b strings.Builder
	b.Grow(len(s.Bytes) * int(n))
	for i := int64(0); i < n; i++ {
		b.Write(s.Bytes)
	}
	return NewString(b.String())
}

// Div implements `/`. Division by zero on two integers is a runtime
// error; on floats it yields ±inf or NaN following IEEE-754, per
// spec.md §4.2.
func Div(a, b Object) (Object, *Exception) {
	if ai, ok := a.(Integer); ok {
		if bi, ok := b.(Integer); ok {
			if bi == 0 {
				return nil, NewException("TypeError", "division by zero")
			}
			if ai%bi == 0 {
				return Integer(ai / bi), nil
			}
			return floatResult(float64(ai) / float64(bi)), nil
		}
	}
	if isNumeric(a) && isNumeric(b) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return floatResult(af / bf), nil
	}
	return nil, nil
}

// Mod implements `%`, defined over integers and floats with the sign
// of the dividend, matching Go's own operator semantics.
func Mod(a, b Object) (Object, *Exception) {
	if ai, ok := a.(Integer); ok {
		if bi, ok := b.(Integer); ok {
			if bi == 0 {
				return nil, NewException("TypeError", "modulo by zero")
			}
			return Integer(ai % bi), nil
		}
	}
	if isNumeric(a) && isNumeric(b) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return floatResult(math.Mod(af, bf)), nil
	}
	return nil, nil
}

// Pow implements right-associative `**`.
func Pow(a, b Object) (Object, *Exception) {
	if ai, ok := a.(Integer); ok {
		if bi, ok := b.(Integer); ok && bi >= 0 {
			result, overflow := intPow(int64(ai), int64(bi))
			if overflow {
				return nil, NewException("TypeError", "integer overflow in exponentiation")
			}
			return Integer(result), nil
		}
	}
	if isNumeric(a) && isNumeric(b) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return floatResult(math.Pow(af, bf)), nil
	}
	return nil, nil
}

func isNumeric(o Object) bool {
	switch o.(type) {
	case Integer, Float, Infinity, NaNType:
		return true
	default:
		return false
	}
}

func addOverflows(a, b int64) (int64, bool) {
	sum := a + b
	return sum, (b > 0 && sum < a) || (b < 0 && sum > a)
}

func subOverflows(a, b int64) (int64, bool) {
	diff := a - b
	return diff, (b < 0 && diff < a) || (b > 0 && diff > a)
}

func mulOverflows(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	negative := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(absU64(a), absU64(b))
	if hi != 0 {
		return 0, true
	}
	// lo holds the unsigned magnitude of the product. A negative result
	// may legitimately reach 2^63 (math.MinInt64); a positive one may not.
	if negative {
		if lo > uint64(math.MaxInt64)+1 {
			return 0, true
		}
		return -int64(lo), false
	}
	if lo > uint64(math.MaxInt64) {
		return 0, true
	}
	return int64(lo), false
}

// absU64 returns the unsigned magnitude of x. For x == math.MinInt64,
// -x wraps back to math.MinInt64 in int64 arithmetic, but its bit
// pattern reinterpreted as uint64 is exactly 2^63, the correct
// magnitude -- so the wraparound is harmless here.
func absU64(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}

func intPow(base, exp int64) (int64, bool) {
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		next, overflow := mulOverflows(result, base)
		if overflow {
			return 0, true
		}
		result = next
	}
	return result, false
}

// ---- bitwise operators: defined only over integers ----

func And(a, b Object) (Object, bool) {
	ai, ok1 := a.(Integer)
	bi, ok2 := b.(Integer)
	if !ok1 || !ok2 {
		return nil, false
	}
	return ai & bi, true
}

func Or(a, b Object) (Object, bool) {
	ai, ok1 := a.(Integer)
	bi, ok2 := b.(Integer)
	if !ok1 || !ok2 {
		return nil, false
	}
	return ai | bi, true
}

func Xor(a, b Object) (Object, bool) {
	ai, ok1 := a.(Integer)
	bi, ok2 := b.(Integer)
	if !ok1 || !ok2 {
		return nil, false
	}
	return ai ^ bi, true
}

func Not(a Object) (Object, bool) {
	ai, ok := a.(Integer)
	if !ok {
		return nil, false
	}
	return ^ai, true
}

func Shl(a, b Object) (Object, bool) {
	ai, ok1 := a.(Integer)
	bi, ok2 := b.(Integer)
	if !ok1 || !ok2 {
		return nil, false
	}
	return ai << uint64(bi), true
}

func Shr(a, b Object) (Object, bool) {
	ai, ok1 := a.(Integer)
	bi, ok2 := b.(Integer)
	if !ok1 || !ok2 {
		return nil, false
	}
	return ai >> uint64(bi), true
}

// Negate implements unary `-`.
func Negate(a Object) (Object, bool) {
	switch v := a.(type) {
	case Integer:
		return -v, true
	case Float:
		return -v, true
	case Infinity:
		return Infinity{Negative: !v.Negative}, true
	case NaNType:
		return NaN, true
	default:
		return nil, false
	}
}

// Compare reports a<b/a==b/a>b style ordering for LT/LE/GT/GE. ok is
// false when the operands aren't ordered (non-numeric, or involve
// NaN).
func Compare(a, b Object) (less, equal bool, ok bool) {
	if _, isNaN := a.(NaNType); isNaN {
		return false, false, false
	}
	if _, isNaN := b.(NaNType); isNaN {
		return false, false, false
	}
	if !isNumeric(a) || !isNumeric(b) {
		return false, false, false
	}
	af, _ := asFloat(a)
	bf, _ := asFloat(b)
	return af < bf, af == bf, true
}
