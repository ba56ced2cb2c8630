package arm32

import (
	"fmt"

	"armlift/internal/ir"
)

// Shift lowering. Two families: compile-time amounts (shiftC/shift) and
// runtime amounts (shiftCForRegAmount/shiftForRegAmount). The C-suffixed
// forms also return the carry-out expression; the plain forms discard
// it so call sites that only need the value avoid tuple projections.
//
// Carry-out, per the architecture manual:
//
//	LSL by k   bit (width-k) of the input
//	LSR by k   bit (k-1) of the input
//	ASR by k   bit (k-1) of the input
//	ROR by k   top bit of the rotated result
//	RRX        bit 0 of the input
//	by zero    the prior carry-in
func shiftC(value ir.Expr, w int, kind ShiftKind, amount uint8, carryIn ir.Expr) (ir.Expr, ir.Expr, error) {
	if kind == ShiftRRX {
		// RRX always rotates by exactly one.
		res := ir.ConcatE(carryIn, ir.ExtractE(value, w-1, 1))
		return res, ir.ExtractLow(1, value), nil
	}
	if amount == 0 {
		return value, carryIn, nil
	}
	k := int(amount)
	switch kind {
	case ShiftLSL:
		if k > w {
			return nil, nil, fmt.Errorf("%w: LSL by %d", ErrInvalidShiftAmount, k)
		}
		res := ir.Shl(value, ir.NumU64(uint64(k), w))
		var carry ir.Expr
		if k == w {
			carry = ir.ExtractLow(1, value)
		} else {
			carry = ir.ExtractE(value, 1, w-k)
		}
		return res, carry, nil
	case ShiftLSR:
		if k > w {
			return nil, nil, fmt.Errorf("%w: LSR by %d", ErrInvalidShiftAmount, k)
		}
		var res ir.Expr
		if k == w {
			res = ir.Num0(w)
		} else {
			res = ir.Shr(value, ir.NumU64(uint64(k), w))
		}
		return res, ir.ExtractE(value, 1, k-1), nil
	case ShiftASR:
		if k > w {
			return nil, nil, fmt.Errorf("%w: ASR by %d", ErrInvalidShiftAmount, k)
		}
		res := ir.Sar(value, ir.NumU64(uint64(min(k, w-1)), w))
		carry := ir.ExtractE(value, 1, min(k-1, w-1))
		return res, carry, nil
	case ShiftROR:
		k %= w
		if k == 0 {
			return value, ir.ExtractE(value, 1, w-1), nil
		}
		res := ir.Or(
			ir.Shr(value, ir.NumU64(uint64(k), w)),
			ir.Shl(value, ir.NumU64(uint64(w-k), w)))
		return res, ir.ExtractE(res, 1, w-1), nil
	default:
		return nil, nil, fmt.Errorf("%w: shift kind %d", ErrInvalidOpcode, int(kind))
	}
}

// shift is shiftC without the carry-out.
func shift(value ir.Expr, w int, kind ShiftKind, amount uint8, carryIn ir.Expr) (ir.Expr, error) {
	res, _, err := shiftC(value, w, kind, amount, carryIn)
	return res, err
}

// shiftCForRegAmount lowers a shift whose amount is a runtime 32-bit
// expression. The result is double-guarded so every architectural edge
// case is explicit in the IR: amount zero passes the value through with
// the prior carry, and a (theoretically) negative amount produces an
// undefined value.
func shiftCForRegAmount(value ir.Expr, w int, kind ShiftKind, amount, carryIn ir.Expr) (ir.Expr, ir.Expr, error) {
	wAmt := ir.NumU64(uint64(w), 32)
	one := ir.Num1(32)

	var shifted, carry ir.Expr
	switch kind {
	case ShiftLSL:
		shifted = ir.Shl(value, amount)
		// carry-out is bit (w - amount) of the input
		carry = ir.ExtractLow(1, ir.Shr(value, ir.Sub(wAmt, amount)))
	case ShiftLSR:
		shifted = ir.Shr(value, amount)
		carry = ir.ExtractLow(1, ir.Shr(value, ir.Sub(amount, one)))
	case ShiftASR:
		shifted = ir.Sar(value, amount)
		carry = ir.ExtractLow(1, ir.Shr(value, ir.Sub(amount, one)))
	case ShiftROR:
		rot := ir.URem(amount, wAmt)
		shifted = ir.Or(
			ir.Shr(value, rot),
			ir.Shl(value, ir.Sub(wAmt, rot)))
		carry = ir.ExtractE(shifted, 1, w-1)
	case ShiftRRX:
		return nil, nil, fmt.Errorf("%w: RRX with register amount", ErrInvalidOpcode)
	default:
		return nil, nil, fmt.Errorf("%w: shift kind %d", ErrInvalidOpcode, int(kind))
	}

	zero := ir.Num0(32)
	isZero := ir.Eq(amount, zero)
	guarded := ir.IteE(ir.Gt(amount, zero), shifted, ir.Undef(w, "shift amount"))
	res := ir.IteE(isZero, value, guarded)
	carryOut := ir.IteE(isZero, carryIn, carry)
	return res, carryOut, nil
}

// shiftForRegAmount is shiftCForRegAmount without the carry-out.
func shiftForRegAmount(value ir.Expr, w int, kind ShiftKind, amount, carryIn ir.Expr) (ir.Expr, error) {
	res, _, err := shiftCForRegAmount(value, w, kind, amount, carryIn)
	return res, err
}
