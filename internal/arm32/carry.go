package arm32

import "armlift/internal/ir"

// addWithCarry is the arithmetic primitive behind the flag-setting add
// and subtract forms and CMP/CMN: ADDS uses it directly, SUBS passes ~b
// with carry-in 1, RSBS swaps operands, and ADCS/SBCS feed APSR.C in.
//
// The result is materialized into a fresh temporary so the carry and
// overflow expressions reference it instead of duplicating the sum.
func addWithCarry(b *ir.Builder, a, x, carryIn ir.Expr) (result *ir.Temp, carryOut, overflow ir.Expr) {
	t := b.NewTemp(32)
	sum := ir.Add(ir.Add(a, x), ir.ZExt(32, carryIn))
	b.Put(t, sum)
	carryOut = ir.Lt(t, a)
	sa := ir.ExtractHigh(1, a)
	sx := ir.ExtractHigh(1, x)
	sr := ir.ExtractHigh(1, t)
	overflow = ir.And(ir.Eq(sa, sx), ir.Ne(sa, sr))
	return t, carryOut, overflow
}
