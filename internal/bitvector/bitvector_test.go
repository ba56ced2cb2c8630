package bitvector

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBV(t *testing.T, v uint64, w int) BitVector {
	t.Helper()
	bv, err := OfUint64(v, w)
	require.NoError(t, err)
	return bv
}

func TestValidWidth(t *testing.T) {
	for _, w := range []int{1, 2, 4, 8, 16, 24, 32, 64, 80, 128, 256, 512} {
		assert.True(t, ValidWidth(w), "width %d", w)
	}
	for _, w := range []int{0, 3, 5, 6, 7, 9, 33, -8} {
		assert.False(t, ValidWidth(w), "width %d", w)
	}
}

func TestOfUint64Roundtrip(t *testing.T) {
	inputs := []uint64{0, 1, 5, 0x7F, 0x80, 0xFF, 0xFFFF, 0xDEADBEEF,
		0x8000000000000000, 0xFFFFFFFFFFFFFFFF}
	for _, w := range []int{1, 2, 4, 8, 16, 32, 64, 80, 128, 256, 512} {
		for _, x := range inputs {
			bv := mustBV(t, x, w)
			want := x
			if w < 64 {
				want = x & ((1 << uint(w)) - 1)
			}
			assert.Equal(t, want, bv.Uint64(), "width %d input %#x", w, x)
			assert.Equal(t, w, bv.Width())
		}
	}
}

func TestInvalidWidth(t *testing.T) {
	_, err := OfUint64(1, 3)
	assert.ErrorIs(t, err, ErrInvalidBitWidth)
	_, err = OfInt64(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidBitWidth)
	_, err = MidNum(24)
	assert.ErrorIs(t, err, ErrInvalidBitWidth)
}

func TestWidthMismatch(t *testing.T) {
	a := mustBV(t, 1, 32)
	b := mustBV(t, 1, 16)
	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrArithTypeMismatch)
	_, err = a.Lt(b)
	assert.ErrorIs(t, err, ErrArithTypeMismatch)
	_, err = a.Shl(b)
	assert.ErrorIs(t, err, ErrArithTypeMismatch)
}

func TestSubEqualsAddNeg(t *testing.T) {
	pairs := [][2]uint64{{0, 0}, {1, 2}, {100, 7}, {0xFFFFFFFF, 1},
		{0x80000000, 0x7FFFFFFF}, {42, 0xDEADBEEF}}
	for _, w := range []int{8, 16, 32, 64, 128} {
		for _, p := range pairs {
			a := mustBV(t, p[0], w)
			b := mustBV(t, p[1], w)
			sub, err := a.Sub(b)
			require.NoError(t, err)
			alt, err := a.Add(b.Neg())
			require.NoError(t, err)
			assert.True(t, sub.Eq(alt), "w=%d %#x-%#x", w, p[0], p[1])
		}
	}
}

func TestDeMorgan(t *testing.T) {
	pairs := [][2]uint64{{0, 0}, {0xF0, 0x0F}, {0xAAAA, 0x5555},
		{0xDEADBEEF, 0x12345678}}
	for _, w := range []int{8, 16, 32, 64, 256} {
		for _, p := range pairs {
			a := mustBV(t, p[0], w)
			b := mustBV(t, p[1], w)
			or, err := a.Or(b)
			require.NoError(t, err)
			alt, err := a.Not().And(b.Not())
			require.NoError(t, err)
			assert.True(t, or.Eq(alt.Not()), "w=%d", w)
		}
	}
}

func TestXorIsXor(t *testing.T) {
	// The exclusive-or must not degrade into OR for any representation.
	for _, w := range []int{8, 32, 64, 128, 512} {
		a := mustBV(t, 0xFF, w)
		b := mustBV(t, 0x0F, w)
		x, err := a.Xor(b)
		require.NoError(t, err)
		assert.Equal(t, uint64(0xF0), x.Uint64(), "width %d", w)
	}
}

func TestConcatExtractRoundtrip(t *testing.T) {
	for _, w := range []int{8, 16, 32, 64, 128} {
		x := mustBV(t, 0xDEADBEEFCAFEF00D, w)
		hi, err := x.Extract(w/2, w/2)
		require.NoError(t, err)
		lo, err := x.Extract(w/2, 0)
		require.NoError(t, err)
		back, err := hi.Concat(lo)
		require.NoError(t, err)
		assert.True(t, back.Eq(x), "width %d", w)
	}
}

func TestSExtZExt(t *testing.T) {
	minusOne8, err := OfInt64(-1, 8)
	require.NoError(t, err)

	se, err := minusOne8.SExt(32)
	require.NoError(t, err)
	minusOne32, err := OfInt64(-1, 32)
	require.NoError(t, err)
	assert.True(t, se.Eq(minusOne32))

	ze, err := minusOne8.ZExt(32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFF), ze.Uint64())

	// Wide targets exercise the big-int paths.
	se128, err := minusOne8.SExt(128)
	require.NoError(t, err)
	max128, err := MaxNum(128)
	require.NoError(t, err)
	assert.True(t, se128.Eq(max128))
}

func TestOfInt64Wide(t *testing.T) {
	for _, w := range []int{80, 128, 256, 512} {
		bv, err := OfInt64(-2, w)
		require.NoError(t, err)
		assert.True(t, bv.IsNegative(), "width %d", w)
		two := mustBV(t, 2, w)
		assert.True(t, bv.Neg().Eq(two), "width %d", w)
	}
}

func TestSignedDivision(t *testing.T) {
	cases := []struct {
		a, b int64
		q, r int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -3, -1},
		{7, -2, -3, 1},
		{-7, -2, 3, -1},
	}
	for _, w := range []int{8, 16, 32, 64, 128} {
		for _, c := range cases {
			a, err := OfInt64(c.a, w)
			require.NoError(t, err)
			b, err := OfInt64(c.b, w)
			require.NoError(t, err)
			q, err := a.SDiv(b)
			require.NoError(t, err)
			wantQ, err := OfInt64(c.q, w)
			require.NoError(t, err)
			assert.True(t, q.Eq(wantQ), "w=%d %d/%d", w, c.a, c.b)
			r, err := a.SRem(b)
			require.NoError(t, err)
			wantR, err := OfInt64(c.r, w)
			require.NoError(t, err)
			assert.True(t, r.Eq(wantR), "w=%d %d%%%d", w, c.a, c.b)
		}
	}
}

func TestDivByZero(t *testing.T) {
	a := mustBV(t, 10, 32)
	z := mustBV(t, 0, 32)
	for _, op := range []func(BitVector) (BitVector, error){
		a.UDiv, a.SDiv, a.URem, a.SRem,
	} {
		_, err := op(z)
		assert.ErrorIs(t, err, ErrDivByZero)
	}
}

func TestShifts(t *testing.T) {
	x := mustBV(t, 0x80000001, 32)
	shl, err := x.Shl(mustBV(t, 1, 32))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), shl.Uint64())

	shr, err := x.Shr(mustBV(t, 1, 32))
	require.NoError(t, err)
	assert.Equal(t, uint64(0x40000000), shr.Uint64())

	sar, err := x.Sar(mustBV(t, 1, 32))
	require.NoError(t, err)
	assert.Equal(t, uint64(0xC0000000), sar.Uint64())

	// Oversized amounts drain to zero (or all-ones for negative SAR).
	over, err := x.Shl(mustBV(t, 40, 32))
	require.NoError(t, err)
	assert.True(t, over.IsZero())
	sarAll, err := x.Sar(mustBV(t, 40, 32))
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFFFFFFFF), sarAll.Uint64())
}

func TestSarWide(t *testing.T) {
	// Above 64 bits the sign fill is simulated with a high-order mask.
	x, err := OfInt64(-4, 128)
	require.NoError(t, err)
	got, err := x.SarUint(1)
	require.NoError(t, err)
	want, err := OfInt64(-2, 128)
	require.NoError(t, err)
	assert.True(t, got.Eq(want))
}

func TestComparisons(t *testing.T) {
	a := mustBV(t, 0xFFFFFFFF, 32) // -1 signed
	b := mustBV(t, 1, 32)

	lt, err := a.Lt(b)
	require.NoError(t, err)
	assert.True(t, lt.Eq(F), "unsigned 0xFFFFFFFF < 1")

	slt, err := a.SLt(b)
	require.NoError(t, err)
	assert.True(t, slt.Eq(T), "signed -1 < 1")

	ge, err := a.Ge(b)
	require.NoError(t, err)
	assert.True(t, ge.Eq(T))
	sge, err := a.SGe(b)
	require.NoError(t, err)
	assert.True(t, sge.Eq(F))
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 1, T.Width())
	assert.Equal(t, uint64(1), T.Uint64())
	assert.Equal(t, uint64(0), F.Uint64())

	mid, err := MidNum(32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x80000000), mid.Uint64())
	assert.True(t, mid.IsNegative())

	max, err := MaxNum(16)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFFFF), max.Uint64())
}

func TestString(t *testing.T) {
	assert.Equal(t, "0x2a:32", mustBV(t, 42, 32).String())
	assert.Equal(t, "0x1:1", T.String())
}

func TestOfBytes(t *testing.T) {
	bv, err := OfBytes([]byte{0x0D, 0xF0, 0xFE, 0xCA})
	require.NoError(t, err)
	assert.Equal(t, 32, bv.Width())
	assert.Equal(t, uint64(0xCAFEF00D), bv.Uint64())

	wide, err := OfBytes(make([]byte, 40)) // 320-bit byte array
	require.NoError(t, err)
	assert.Equal(t, 320, wide.Width())
	assert.True(t, wide.IsZero())
}

func TestOfBig(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 300)
	n.Add(n, big.NewInt(99))
	bv, err := OfBig(n, 512)
	require.NoError(t, err)
	assert.Equal(t, 0, bv.Big().Cmp(n))

	// Truncation to a narrower width keeps the low bits.
	tr, err := OfBig(n, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), tr.Uint64())
}

func TestEqRequiresWidth(t *testing.T) {
	a := mustBV(t, 5, 32)
	b := mustBV(t, 5, 64)
	assert.False(t, a.Eq(b))
	assert.True(t, a.Eq(mustBV(t, 5, 32)))
}
