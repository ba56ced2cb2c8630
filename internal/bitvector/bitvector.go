// Package bitvector implements immutable, width-tagged integer values.
// Every IR constant in the lifter is a BitVector, and the same type is
// the numeric backbone for downstream evaluators. Values up to 64 bits
// live in a plain uint64, values up to 256 bits in a uint256.Int, and
// anything wider in a math/big.Int.
package bitvector

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// BitVector is a non-negative integer of a declared bit width. The
// stored value is always masked to the width. The zero value is the
// 0-width vector and is not valid; use the constructors.
type BitVector struct {
	width int
	small uint64      // width <= 64
	mid   uint256.Int // 64 < width <= 256
	big   *big.Int    // width > 256, never mutated after construction
}

// ValidWidth reports whether w is a supported bit width: 1, 2, 4, or
// any positive multiple of 8.
func ValidWidth(w int) bool {
	switch w {
	case 1, 2, 4:
		return true
	}
	return w > 0 && w%8 == 0
}

func mask64(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}

func maskMid(w int) *uint256.Int {
	m := new(uint256.Int).Lsh(uint256.NewInt(1), uint(w))
	return m.Sub(m, uint256.NewInt(1))
}

func maskBig(w int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(w))
	return m.Sub(m, big.NewInt(1))
}

// OfUint64 builds a w-bit vector from the low bits of v.
func OfUint64(v uint64, w int) (BitVector, error) {
	if !ValidWidth(w) {
		return BitVector{}, fmt.Errorf("%w: %d", ErrInvalidBitWidth, w)
	}
	switch {
	case w <= 64:
		return BitVector{width: w, small: v & mask64(w)}, nil
	case w <= 256:
		bv := BitVector{width: w}
		bv.mid.SetUint64(v)
		return bv, nil
	default:
		return BitVector{width: w, big: new(big.Int).SetUint64(v)}, nil
	}
}

// OfInt64 builds a w-bit vector from v, sign-extending into the width.
func OfInt64(v int64, w int) (BitVector, error) {
	if v >= 0 {
		return OfUint64(uint64(v), w)
	}
	if !ValidWidth(w) {
		return BitVector{}, fmt.Errorf("%w: %d", ErrInvalidBitWidth, w)
	}
	switch {
	case w <= 64:
		return BitVector{width: w, small: uint64(v) & mask64(w)}, nil
	case w <= 256:
		// uint64(v) carries the sign through bit 63; fill bits 64..w-1
		// with ones to finish the extension.
		bv := BitVector{width: w}
		bv.mid.SetUint64(uint64(v))
		ext := new(uint256.Int).Lsh(maskMid(w-64), 64)
		bv.mid.Or(&bv.mid, ext)
		bv.mid.And(&bv.mid, maskMid(w))
		return bv, nil
	default:
		n := new(big.Int).SetUint64(uint64(v))
		ext := new(big.Int).Lsh(maskBig(w-64), 64)
		n.Or(n, ext)
		return BitVector{width: w, big: n}, nil
	}
}

// OfBytes builds a vector from a little-endian byte array; the width is
// 8 times the array length.
func OfBytes(b []byte) (BitVector, error) {
	w := len(b) * 8
	if !ValidWidth(w) {
		return BitVector{}, fmt.Errorf("%w: %d", ErrInvalidBitWidth, w)
	}
	n := new(big.Int)
	for i := len(b) - 1; i >= 0; i-- {
		n.Lsh(n, 8)
		n.Or(n, big.NewInt(int64(b[i])))
	}
	return OfBig(n, w)
}

// OfBig builds a w-bit vector from v, truncating to the width.
func OfBig(v *big.Int, w int) (BitVector, error) {
	if !ValidWidth(w) {
		return BitVector{}, fmt.Errorf("%w: %d", ErrInvalidBitWidth, w)
	}
	n := new(big.Int).And(v, maskBig(w))
	if n.Sign() < 0 {
		n.Add(n, new(big.Int).Lsh(big.NewInt(1), uint(w)))
		n.And(n, maskBig(w))
	}
	switch {
	case w <= 64:
		return BitVector{width: w, small: n.Uint64() & mask64(w)}, nil
	case w <= 256:
		bv := BitVector{width: w}
		bv.mid.SetFromBig(n)
		return bv, nil
	default:
		return BitVector{width: w, big: n}, nil
	}
}

// T and F are the 1-bit true and false constants.
var (
	T = BitVector{width: 1, small: 1}
	F = BitVector{width: 1, small: 0}
)

// Zero returns the zero vector of width w.
func Zero(w int) (BitVector, error) { return OfUint64(0, w) }

// One returns the one vector of width w.
func One(w int) (BitVector, error) { return OfUint64(1, w) }

// OfBool returns T or F.
func OfBool(b bool) BitVector {
	if b {
		return T
	}
	return F
}

// MidNum returns 2^(w-1), the smallest w-bit value with the sign bit
// set, for w in {8, 16, 32, 64}.
func MidNum(w int) (BitVector, error) {
	switch w {
	case 8, 16, 32, 64:
		return OfUint64(uint64(1)<<uint(w-1), w)
	}
	return BitVector{}, fmt.Errorf("%w: midNum of %d", ErrInvalidBitWidth, w)
}

// MaxNum returns 2^w - 1, the all-ones vector of width w.
func MaxNum(w int) (BitVector, error) {
	n := maskBig(w)
	return OfBig(n, w)
}

// Width returns the declared bit width.
func (bv BitVector) Width() int { return bv.width }

// Uint64 returns the low 64 bits of the value.
func (bv BitVector) Uint64() uint64 {
	switch {
	case bv.width <= 64:
		return bv.small
	case bv.width <= 256:
		return bv.mid.Uint64()
	default:
		return new(big.Int).And(bv.big, maskBig(64)).Uint64()
	}
}

// Int64 returns the value interpreted as a two's-complement integer of
// the declared width, truncated into 64 bits.
func (bv BitVector) Int64() int64 {
	v := bv.Uint64()
	if bv.width >= 64 {
		return int64(v)
	}
	if v&(uint64(1)<<uint(bv.width-1)) != 0 {
		v |= ^mask64(bv.width)
	}
	return int64(v)
}

// Big returns the value as a fresh non-negative big.Int.
func (bv BitVector) Big() *big.Int {
	switch {
	case bv.width <= 64:
		return new(big.Int).SetUint64(bv.small)
	case bv.width <= 256:
		return bv.mid.ToBig()
	default:
		return new(big.Int).Set(bv.big)
	}
}

// IsZero reports whether the value is zero.
func (bv BitVector) IsZero() bool {
	switch {
	case bv.width <= 64:
		return bv.small == 0
	case bv.width <= 256:
		return bv.mid.IsZero()
	default:
		return bv.big.Sign() == 0
	}
}

// MSB reports whether the top bit of the declared width is set.
func (bv BitVector) MSB() bool {
	switch {
	case bv.width <= 64:
		return bv.small&(uint64(1)<<uint(bv.width-1)) != 0
	case bv.width <= 256:
		shifted := new(uint256.Int).Rsh(&bv.mid, uint(bv.width-1))
		return shifted.And(shifted, uint256.NewInt(1)).IsZero() == false
	default:
		return bv.big.Bit(bv.width-1) != 0
	}
}

// IsNegative reports whether the value is negative as a two's-complement
// integer of the declared width.
func (bv BitVector) IsNegative() bool { return bv.MSB() }

// IsPositive reports whether the sign bit is clear.
func (bv BitVector) IsPositive() bool { return !bv.MSB() }

// Eq reports value equality; widths must match for two vectors to be
// equal.
func (bv BitVector) Eq(other BitVector) bool {
	if bv.width != other.width {
		return false
	}
	switch {
	case bv.width <= 64:
		return bv.small == other.small
	case bv.width <= 256:
		return bv.mid.Eq(&other.mid)
	default:
		return bv.big.Cmp(other.big) == 0
	}
}

// String formats the value as hex with a width suffix, e.g. "0x2a:32".
func (bv BitVector) String() string {
	switch {
	case bv.width <= 64:
		return fmt.Sprintf("0x%x:%d", bv.small, bv.width)
	case bv.width <= 256:
		return fmt.Sprintf("0x%x:%d", bv.mid.ToBig(), bv.width)
	default:
		return fmt.Sprintf("0x%x:%d", bv.big, bv.width)
	}
}

func (bv BitVector) checkBinary(other BitVector) error {
	if bv.width != other.width {
		return fmt.Errorf("%w: %d vs %d", ErrArithTypeMismatch, bv.width, other.width)
	}
	return nil
}

// binOp applies the matching representation-specific operation and
// re-masks the result to the operand width.
func (bv BitVector) binOp(other BitVector,
	f64 func(a, b uint64) uint64,
	fMid func(z, a, b *uint256.Int) *uint256.Int,
	fBig func(a, b *big.Int) *big.Int) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	w := bv.width
	switch {
	case w <= 64:
		return BitVector{width: w, small: f64(bv.small, other.small) & mask64(w)}, nil
	case w <= 256:
		out := BitVector{width: w}
		fMid(&out.mid, &bv.mid, &other.mid)
		out.mid.And(&out.mid, maskMid(w))
		return out, nil
	default:
		return OfBig(fBig(bv.big, other.big), w)
	}
}

// Add returns (bv + other) mod 2^w.
func (bv BitVector) Add(other BitVector) (BitVector, error) {
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a + b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.Add(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })
}

// Sub returns (bv - other) mod 2^w.
func (bv BitVector) Sub(other BitVector) (BitVector, error) {
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a - b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.Sub(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
}

// Mul returns (bv * other) mod 2^w.
func (bv BitVector) Mul(other BitVector) (BitVector, error) {
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a * b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.Mul(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })
}

// And returns the bitwise AND.
func (bv BitVector) And(other BitVector) (BitVector, error) {
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a & b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.And(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) })
}

// Or returns the bitwise OR.
func (bv BitVector) Or(other BitVector) (BitVector, error) {
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a | b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.Or(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) })
}

// Xor returns the bitwise exclusive OR.
func (bv BitVector) Xor(other BitVector) (BitVector, error) {
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a ^ b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.Xor(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) })
}

// UDiv returns the unsigned quotient.
func (bv BitVector) UDiv(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	if other.IsZero() {
		return BitVector{}, ErrDivByZero
	}
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a / b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.Div(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).Div(a, b) })
}

// URem returns the unsigned remainder.
func (bv BitVector) URem(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	if other.IsZero() {
		return BitVector{}, ErrDivByZero
	}
	return bv.binOp(other,
		func(a, b uint64) uint64 { return a % b },
		func(z, a, b *uint256.Int) *uint256.Int { return z.Mod(a, b) },
		func(a, b *big.Int) *big.Int { return new(big.Int).Mod(a, b) })
}

// SDiv interprets both operands as two's-complement, divides as
// unsigned magnitudes, and fixes the sign of the quotient.
func (bv BitVector) SDiv(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	if other.IsZero() {
		return BitVector{}, ErrDivByZero
	}
	a, b := bv, other
	negResult := a.IsNegative() != b.IsNegative()
	if a.IsNegative() {
		a = a.Neg()
	}
	if b.IsNegative() {
		b = b.Neg()
	}
	q, err := a.UDiv(b)
	if err != nil {
		return BitVector{}, err
	}
	if negResult {
		q = q.Neg()
	}
	return q, nil
}

// SRem returns the signed remainder; its sign follows the dividend.
func (bv BitVector) SRem(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	if other.IsZero() {
		return BitVector{}, ErrDivByZero
	}
	a, b := bv, other
	negResult := a.IsNegative()
	if a.IsNegative() {
		a = a.Neg()
	}
	if b.IsNegative() {
		b = b.Neg()
	}
	r, err := a.URem(b)
	if err != nil {
		return BitVector{}, err
	}
	if negResult {
		r = r.Neg()
	}
	return r, nil
}

// Shl returns bv shifted left by the amount in k; k must have the same
// width as bv. Shift amounts at or beyond the width yield zero.
func (bv BitVector) Shl(k BitVector) (BitVector, error) {
	if err := bv.checkBinary(k); err != nil {
		return BitVector{}, err
	}
	amt, over := k.shiftAmount()
	if over {
		return Zero(bv.width)
	}
	return bv.ShlUint(amt)
}

// Shr returns bv logically shifted right by the amount in k.
func (bv BitVector) Shr(k BitVector) (BitVector, error) {
	if err := bv.checkBinary(k); err != nil {
		return BitVector{}, err
	}
	amt, over := k.shiftAmount()
	if over {
		return Zero(bv.width)
	}
	return bv.ShrUint(amt)
}

// Sar returns bv arithmetically shifted right by the amount in k,
// replicating the sign bit.
func (bv BitVector) Sar(k BitVector) (BitVector, error) {
	if err := bv.checkBinary(k); err != nil {
		return BitVector{}, err
	}
	amt, over := k.shiftAmount()
	if over {
		amt = uint(bv.width)
	}
	return bv.SarUint(amt)
}

// shiftAmount extracts a shift amount, reporting overflow when the
// amount does not fit the width.
func (bv BitVector) shiftAmount() (uint, bool) {
	b := bv.Big()
	if !b.IsUint64() || b.Uint64() >= uint64(bv.width) {
		return 0, true
	}
	return uint(b.Uint64()), false
}

// ShlUint shifts left by a plain amount.
func (bv BitVector) ShlUint(amt uint) (BitVector, error) {
	if amt >= uint(bv.width) {
		return Zero(bv.width)
	}
	w := bv.width
	switch {
	case w <= 64:
		return BitVector{width: w, small: (bv.small << amt) & mask64(w)}, nil
	case w <= 256:
		out := BitVector{width: w}
		out.mid.Lsh(&bv.mid, amt)
		out.mid.And(&out.mid, maskMid(w))
		return out, nil
	default:
		return OfBig(new(big.Int).Lsh(bv.big, amt), w)
	}
}

// ShrUint shifts right logically by a plain amount.
func (bv BitVector) ShrUint(amt uint) (BitVector, error) {
	if amt >= uint(bv.width) {
		return Zero(bv.width)
	}
	w := bv.width
	switch {
	case w <= 64:
		return BitVector{width: w, small: bv.small >> amt}, nil
	case w <= 256:
		out := BitVector{width: w}
		out.mid.Rsh(&bv.mid, amt)
		return out, nil
	default:
		return OfBig(new(big.Int).Rsh(bv.big, amt), w)
	}
}

// SarUint shifts right arithmetically by a plain amount. Widths beyond
// 64 bits are handled by OR-ing in a run of high-order ones when the
// value is negative.
func (bv BitVector) SarUint(amt uint) (BitVector, error) {
	neg := bv.IsNegative()
	if amt >= uint(bv.width) {
		if neg {
			return MaxNum(bv.width)
		}
		return Zero(bv.width)
	}
	out, err := bv.ShrUint(amt)
	if err != nil || !neg {
		return out, err
	}
	// w-amt low bits survived; fill the top amt bits with ones.
	ones := new(big.Int).Lsh(maskBig(int(amt)), uint(bv.width)-amt)
	return OfBig(new(big.Int).Or(out.Big(), ones), bv.width)
}

// Neg returns the two's-complement negation (2^w - bv) mod 2^w.
func (bv BitVector) Neg() BitVector {
	w := bv.width
	switch {
	case w <= 64:
		return BitVector{width: w, small: (-bv.small) & mask64(w)}
	case w <= 256:
		out := BitVector{width: w}
		out.mid.Neg(&bv.mid)
		out.mid.And(&out.mid, maskMid(w))
		return out
	default:
		out, _ := OfBig(new(big.Int).Neg(bv.big), w)
		return out
	}
}

// Not returns the bitwise complement within the width.
func (bv BitVector) Not() BitVector {
	w := bv.width
	switch {
	case w <= 64:
		return BitVector{width: w, small: ^bv.small & mask64(w)}
	case w <= 256:
		out := BitVector{width: w}
		out.mid.Not(&bv.mid)
		out.mid.And(&out.mid, maskMid(w))
		return out
	default:
		out, _ := OfBig(new(big.Int).Xor(bv.big, maskBig(w)), w)
		return out
	}
}

// Concat returns hi:lo with width(hi)+width(lo).
func (bv BitVector) Concat(lo BitVector) (BitVector, error) {
	w := bv.width + lo.width
	if !ValidWidth(w) {
		return BitVector{}, fmt.Errorf("%w: concat to %d", ErrInvalidBitWidth, w)
	}
	hi := new(big.Int).Lsh(bv.Big(), uint(lo.width))
	return OfBig(hi.Or(hi, lo.Big()), w)
}

// Extract returns newWidth bits starting at bit pos.
func (bv BitVector) Extract(newWidth, pos int) (BitVector, error) {
	if !ValidWidth(newWidth) || pos < 0 || pos+newWidth > bv.width {
		return BitVector{}, fmt.Errorf("%w: extract %d@%d from %d", ErrInvalidBitWidth, newWidth, pos, bv.width)
	}
	return OfBig(new(big.Int).Rsh(bv.Big(), uint(pos)), newWidth)
}

// Cast truncates or zero-extends to newWidth.
func (bv BitVector) Cast(newWidth int) (BitVector, error) {
	return OfBig(bv.Big(), newWidth)
}

// ZExt zero-extends to newWidth; newWidth must not shrink the value.
func (bv BitVector) ZExt(newWidth int) (BitVector, error) {
	if newWidth < bv.width {
		return BitVector{}, fmt.Errorf("%w: zext %d to %d", ErrInvalidBitWidth, bv.width, newWidth)
	}
	return bv.Cast(newWidth)
}

// SExt sign-extends to newWidth: zero-extend, then add
// (mask(new) - mask(old)) when the value is negative at its old width.
func (bv BitVector) SExt(newWidth int) (BitVector, error) {
	if newWidth < bv.width {
		return BitVector{}, fmt.Errorf("%w: sext %d to %d", ErrInvalidBitWidth, bv.width, newWidth)
	}
	out, err := bv.Cast(newWidth)
	if err != nil {
		return BitVector{}, err
	}
	if !bv.IsNegative() {
		return out, nil
	}
	ext := new(big.Int).Sub(maskBig(newWidth), maskBig(bv.width))
	return OfBig(new(big.Int).Or(out.Big(), ext), newWidth)
}

func (bv BitVector) ucmp(other BitVector) int {
	return bv.Big().Cmp(other.Big())
}

func (bv BitVector) scmp(other BitVector) int {
	a, b := bv, other
	switch {
	case a.IsNegative() && !b.IsNegative():
		return -1
	case !a.IsNegative() && b.IsNegative():
		return 1
	default:
		return a.ucmp(b)
	}
}

// Lt returns T when bv < other, unsigned.
func (bv BitVector) Lt(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.ucmp(other) < 0), nil
}

// Le returns T when bv <= other, unsigned.
func (bv BitVector) Le(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.ucmp(other) <= 0), nil
}

// Gt returns T when bv > other, unsigned.
func (bv BitVector) Gt(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.ucmp(other) > 0), nil
}

// Ge returns T when bv >= other, unsigned.
func (bv BitVector) Ge(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.ucmp(other) >= 0), nil
}

// SLt returns T when bv < other, signed.
func (bv BitVector) SLt(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.scmp(other) < 0), nil
}

// SLe returns T when bv <= other, signed.
func (bv BitVector) SLe(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.scmp(other) <= 0), nil
}

// SGt returns T when bv > other, signed.
func (bv BitVector) SGt(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.scmp(other) > 0), nil
}

// SGe returns T when bv >= other, signed.
func (bv BitVector) SGe(other BitVector) (BitVector, error) {
	if err := bv.checkBinary(other); err != nil {
		return BitVector{}, err
	}
	return OfBool(bv.scmp(other) >= 0), nil
}
