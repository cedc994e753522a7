package eval

import (
	"math"
	"math/bits"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/builtins"
)

// evaluateBuiltin constant-folds a call to one of the builtins this package
// knows how to fold (ported from crates/concretizer/src/builtin.rs). Calls
// to any other name (a user function, or a catalog builtin the original
// concretizer never folded either, such as the transcendental-adjacent
// ceil/floor/round family) are reported as non-constant rather than guessed
// at.
func evaluateBuiltin(name string, args []Value) (Value, bool) {
	switch builtins.Fn(name) {
	case builtins.Abs, builtins.CountOneBits, builtins.CountLeadingZeros,
		builtins.CountTrailingZeros, builtins.ReverseBits,
		builtins.FirstLeadingBit, builtins.FirstTrailingBit,
		builtins.Exp, builtins.Exp2:
		return evalSingleArg(builtins.Fn(name), args[0])

	case builtins.Min, builtins.Max:
		return evalTwoArg(builtins.Fn(name), args[0], args[1])

	case builtins.Select, builtins.ExtractBits, builtins.Clamp:
		return evalThreeArg(builtins.Fn(name), args[0], args[1], args[2])

	case builtins.InsertBits:
		return evalFourArg(args[0], args[1], args[2], args[3])

	case builtins.Dot:
		return evalDot(args[0], args[1])

	case builtins.All, builtins.Any:
		return evalBoolReduction(builtins.Fn(name), args[0])

	default:
		return Value{}, false
	}
}

func evalSingleArg(fn builtins.Fn, v Value) (Value, bool) {
	if v.isVec {
		out := make([]Value, len(v.vector))
		for i, e := range v.vector {
			r, ok := evalSingleArg(fn, e)
			if !ok {
				return Value{}, false
			}
			out[i] = r
		}
		return vector(out), true
	}
	return evalSingleLit(fn, v.lit)
}

func evalSingleLit(fn builtins.Fn, l ast.Lit) (Value, bool) {
	switch fn {
	case builtins.Abs:
		switch l.Kind {
		case ast.I32:
			v := l.I32
			if v == math.MinInt32 {
				return scalar(ast.LitI32(v)), true // wrapping_abs fixed point
			}
			if v < 0 {
				v = -v
			}
			return scalar(ast.LitI32(v)), true
		case ast.U32:
			return scalar(l), true
		case ast.F32:
			return scalar(ast.LitF32(float32(math.Abs(float64(l.F32))))), true
		}
	case builtins.CountOneBits:
		switch l.Kind {
		case ast.I32:
			return scalar(ast.LitI32(int32(bits.OnesCount32(uint32(l.I32))))), true
		case ast.U32:
			return scalar(ast.LitU32(uint32(bits.OnesCount32(l.U32)))), true
		}
	case builtins.CountLeadingZeros:
		switch l.Kind {
		case ast.I32:
			return scalar(ast.LitI32(int32(bits.LeadingZeros32(uint32(l.I32))))), true
		case ast.U32:
			return scalar(ast.LitU32(uint32(bits.LeadingZeros32(l.U32)))), true
		}
	case builtins.CountTrailingZeros:
		switch l.Kind {
		case ast.I32:
			return scalar(ast.LitI32(int32(bits.TrailingZeros32(uint32(l.I32))))), true
		case ast.U32:
			return scalar(ast.LitU32(uint32(bits.TrailingZeros32(l.U32)))), true
		}
	case builtins.ReverseBits:
		switch l.Kind {
		case ast.I32:
			return scalar(ast.LitI32(int32(bits.Reverse32(uint32(l.I32))))), true
		case ast.U32:
			return scalar(ast.LitU32(bits.Reverse32(l.U32))), true
		}
	case builtins.FirstLeadingBit:
		switch l.Kind {
		case ast.I32:
			v := l.I32
			effective := v
			if v < 0 {
				effective = ^v
			}
			if effective == 0 {
				return scalar(ast.LitI32(-1)), true
			}
			lz := bits.LeadingZeros32(uint32(effective))
			return scalar(ast.LitI32(int32(31 - lz))), true
		case ast.U32:
			if l.U32 == 0 {
				return scalar(ast.LitU32(math.MaxUint32)), true
			}
			return scalar(ast.LitU32(uint32(31 - bits.LeadingZeros32(l.U32)))), true
		}
	case builtins.FirstTrailingBit:
		switch l.Kind {
		case ast.I32:
			if l.I32 == 0 {
				return scalar(ast.LitI32(-1)), true
			}
			return scalar(ast.LitI32(int32(bits.TrailingZeros32(uint32(l.I32))))), true
		case ast.U32:
			if l.U32 == 0 {
				return scalar(ast.LitU32(math.MaxUint32)), true
			}
			return scalar(ast.LitU32(uint32(bits.TrailingZeros32(l.U32)))), true
		}
	case builtins.Exp:
		if l.Kind == ast.F32 {
			if l.F32 > 88.72 {
				return Value{}, false
			}
			r, ok := inFloatRange(float32(math.Exp(float64(l.F32))))
			return scalar(ast.LitF32(r)), ok
		}
	case builtins.Exp2:
		if l.Kind == ast.F32 {
			if l.F32 > 127.0 {
				return Value{}, false
			}
			r, ok := inFloatRange(float32(math.Pow(2, float64(l.F32))))
			return scalar(ast.LitF32(r)), ok
		}
	}
	return Value{}, false
}

func evalTwoArg(fn builtins.Fn, a, b Value) (Value, bool) {
	if a.isVec && b.isVec {
		if len(a.vector) != len(b.vector) {
			return Value{}, false
		}
		out := make([]Value, len(a.vector))
		for i := range a.vector {
			r, ok := evalTwoArg(fn, a.vector[i], b.vector[i])
			if !ok {
				return Value{}, false
			}
			out[i] = r
		}
		return vector(out), true
	}
	if a.isVec || b.isVec {
		return Value{}, false
	}

	l, r := a.lit, b.lit
	switch fn {
	case builtins.Min:
		switch {
		case l.Kind == ast.I32 && r.Kind == ast.I32:
			return scalar(ast.LitI32(minI32(l.I32, r.I32))), true
		case l.Kind == ast.U32 && r.Kind == ast.U32:
			return scalar(ast.LitU32(minU32(l.U32, r.U32))), true
		case l.Kind == ast.F32 && r.Kind == ast.F32:
			return scalar(ast.LitF32(float32(math.Min(float64(l.F32), float64(r.F32))))), true
		}
	case builtins.Max:
		switch {
		case l.Kind == ast.I32 && r.Kind == ast.I32:
			return scalar(ast.LitI32(maxI32(l.I32, r.I32))), true
		case l.Kind == ast.U32 && r.Kind == ast.U32:
			return scalar(ast.LitU32(maxU32(l.U32, r.U32))), true
		case l.Kind == ast.F32 && r.Kind == ast.F32:
			return scalar(ast.LitF32(float32(math.Max(float64(l.F32), float64(r.F32))))), true
		}
	}
	return Value{}, false
}

func evalThreeArg(fn builtins.Fn, a, b, c Value) (Value, bool) {
	if a.isVec && b.isVec && c.isVec {
		if len(a.vector) != len(b.vector) || len(a.vector) != len(c.vector) {
			return Value{}, false
		}
		out := make([]Value, len(a.vector))
		for i := range a.vector {
			r, ok := evalThreeArg(fn, a.vector[i], b.vector[i], c.vector[i])
			if !ok {
				return Value{}, false
			}
			out[i] = r
		}
		return vector(out), true
	}
	if a.isVec || b.isVec || c.isVec {
		return Value{}, false
	}

	switch fn {
	case builtins.Select:
		return evalSelect(a.lit, b.lit, c.lit)
	case builtins.ExtractBits:
		return evalExtractBits(a.lit, b.lit, c.lit)
	case builtins.Clamp:
		return evalClamp(a.lit, b.lit, c.lit)
	}
	return Value{}, false
}

func evalFourArg(a, b, c, d Value) (Value, bool) {
	if a.isVec && b.isVec && c.isVec && d.isVec {
		if len(a.vector) != len(b.vector) || len(a.vector) != len(c.vector) || len(a.vector) != len(d.vector) {
			return Value{}, false
		}
		out := make([]Value, len(a.vector))
		for i := range a.vector {
			r, ok := evalFourArg(a.vector[i], b.vector[i], c.vector[i], d.vector[i])
			if !ok {
				return Value{}, false
			}
			out[i] = r
		}
		return vector(out), true
	}
	if a.isVec || b.isVec || c.isVec || d.isVec {
		return Value{}, false
	}
	return evalInsertBits(a.lit, b.lit, c.lit, d.lit)
}

func evalSelect(f, t, cond ast.Lit) (Value, bool) {
	if cond.Kind != ast.Bool {
		return Value{}, false
	}
	switch {
	case f.Kind == ast.I32 && t.Kind == ast.I32:
		if cond.Bool {
			return scalar(ast.LitI32(t.I32)), true
		}
		return scalar(ast.LitI32(f.I32)), true
	case f.Kind == ast.U32 && t.Kind == ast.U32:
		if cond.Bool {
			return scalar(ast.LitU32(t.U32)), true
		}
		return scalar(ast.LitU32(f.U32)), true
	case f.Kind == ast.F32 && t.Kind == ast.F32:
		if cond.Bool {
			return scalar(ast.LitF32(t.F32)), true
		}
		return scalar(ast.LitF32(f.F32)), true
	}
	return Value{}, false
}

func evalClamp(e, lo, hi ast.Lit) (Value, bool) {
	switch {
	case e.Kind == ast.I32 && lo.Kind == ast.I32 && hi.Kind == ast.I32:
		if lo.I32 > hi.I32 {
			return Value{}, false
		}
		return scalar(ast.LitI32(clampI32(e.I32, lo.I32, hi.I32))), true
	case e.Kind == ast.U32 && lo.Kind == ast.U32 && hi.Kind == ast.U32:
		if lo.U32 > hi.U32 {
			return Value{}, false
		}
		return scalar(ast.LitU32(clampU32(e.U32, lo.U32, hi.U32))), true
	case e.Kind == ast.F32 && lo.Kind == ast.F32 && hi.Kind == ast.F32:
		if lo.F32 > hi.F32 {
			return Value{}, false
		}
		return scalar(ast.LitF32(clampF32(e.F32, lo.F32, hi.F32))), true
	}
	return Value{}, false
}

// evalExtractBits mirrors builtin.rs's extract_bits: offset+count must fit
// in 32 bits; a signed source sign-extends from bit (count-1) of the result,
// an unsigned source zero-extends.
func evalExtractBits(e, offsetLit, countLit ast.Lit) (Value, bool) {
	offset, ok := asU32(offsetLit)
	if !ok {
		return Value{}, false
	}
	count, ok := asU32(countLit)
	if !ok {
		return Value{}, false
	}
	if uint64(offset)+uint64(count) > 32 {
		return Value{}, false
	}
	if count == 0 {
		switch e.Kind {
		case ast.I32:
			return scalar(ast.LitI32(0)), true
		case ast.U32:
			return scalar(ast.LitU32(0)), true
		default:
			return Value{}, false
		}
	}

	switch e.Kind {
	case ast.I32:
		shiftLeft := 32 - (offset + count)
		shiftRight := 32 - count
		result := int32(uint32(e.I32)<<shiftLeft) >> shiftRight
		return scalar(ast.LitI32(result)), true
	case ast.U32:
		shifted := e.U32 >> offset
		mask := uint32(math.MaxUint32)
		if count != 32 {
			mask = (uint32(1) << count) - 1
		}
		return scalar(ast.LitU32(shifted & mask)), true
	default:
		return Value{}, false
	}
}

// evalInsertBits mirrors builtin.rs's insert_bits: replaces count bits of e
// at offset with the low count bits of newbits.
func evalInsertBits(e, newbits, offsetLit, countLit ast.Lit) (Value, bool) {
	offset, ok := asU32(offsetLit)
	if !ok {
		return Value{}, false
	}
	count, ok := asU32(countLit)
	if !ok {
		return Value{}, false
	}
	if uint64(offset)+uint64(count) > 32 {
		return Value{}, false
	}
	if count == 0 {
		switch e.Kind {
		case ast.I32:
			return scalar(ast.LitI32(e.I32)), true
		case ast.U32:
			return scalar(ast.LitU32(e.U32)), true
		default:
			return Value{}, false
		}
	}

	maskWidth := uint32(math.MaxUint32)
	if count != 32 {
		maskWidth = (uint32(1) << count) - 1
	}
	mask := maskWidth << offset

	insert := func(eRaw, newRaw uint32) uint32 {
		return (eRaw &^ mask) | ((newRaw & maskWidth) << offset)
	}

	switch {
	case e.Kind == ast.I32 && newbits.Kind == ast.I32:
		result := insert(uint32(e.I32), uint32(newbits.I32))
		return scalar(ast.LitI32(int32(result))), true
	case e.Kind == ast.U32 && newbits.Kind == ast.U32:
		return scalar(ast.LitU32(insert(e.U32, newbits.U32))), true
	default:
		return Value{}, false
	}
}

func evalDot(a, b Value) (Value, bool) {
	if !a.isVec || !b.isVec || len(a.vector) != len(b.vector) || len(a.vector) == 0 {
		return Value{}, false
	}

	switch a.vector[0].lit.Kind {
	case ast.I32:
		var sum int64
		for i := range a.vector {
			if a.vector[i].isVec || b.vector[i].isVec || a.vector[i].lit.Kind != ast.I32 || b.vector[i].lit.Kind != ast.I32 {
				return Value{}, false
			}
			product := int64(a.vector[i].lit.I32) * int64(b.vector[i].lit.I32)
			if product > math.MaxInt32 || product < math.MinInt32 {
				return Value{}, false
			}
			sum += product
			if sum > math.MaxInt32 || sum < math.MinInt32 {
				return Value{}, false
			}
		}
		return scalar(ast.LitI32(int32(sum))), true

	case ast.U32:
		var sum uint64
		for i := range a.vector {
			if a.vector[i].isVec || b.vector[i].isVec || a.vector[i].lit.Kind != ast.U32 || b.vector[i].lit.Kind != ast.U32 {
				return Value{}, false
			}
			product := uint64(a.vector[i].lit.U32) * uint64(b.vector[i].lit.U32)
			if product > math.MaxUint32 {
				return Value{}, false
			}
			sum += product
			if sum > math.MaxUint32 {
				return Value{}, false
			}
		}
		return scalar(ast.LitU32(uint32(sum))), true

	case ast.F32:
		var sum float32
		for i := range a.vector {
			if a.vector[i].isVec || b.vector[i].isVec || a.vector[i].lit.Kind != ast.F32 || b.vector[i].lit.Kind != ast.F32 {
				return Value{}, false
			}
			product := a.vector[i].lit.F32 * b.vector[i].lit.F32
			if _, ok := inFloatRange(product); !ok {
				return Value{}, false
			}
			sum += product
			if _, ok := inFloatRange(sum); !ok {
				return Value{}, false
			}
		}
		return scalar(ast.LitF32(sum)), true

	default:
		return Value{}, false
	}
}

func evalBoolReduction(fn builtins.Fn, v Value) (Value, bool) {
	if !v.isVec {
		if v.lit.Kind != ast.Bool {
			return Value{}, false
		}
		return scalar(ast.LitBool(v.lit.Bool)), true
	}

	bs := make([]bool, len(v.vector))
	for i, e := range v.vector {
		if e.isVec || e.lit.Kind != ast.Bool {
			return Value{}, false
		}
		bs[i] = e.lit.Bool
	}

	switch fn {
	case builtins.Any:
		for _, b := range bs {
			if b {
				return scalar(ast.LitBool(true)), true
			}
		}
		return scalar(ast.LitBool(false)), true
	case builtins.All:
		for _, b := range bs {
			if !b {
				return scalar(ast.LitBool(false)), true
			}
		}
		return scalar(ast.LitBool(true)), true
	default:
		return Value{}, false
	}
}

func asU32(l ast.Lit) (uint32, bool) {
	if l.Kind != ast.U32 {
		return 0, false
	}
	return l.U32, true
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
