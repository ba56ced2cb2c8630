package arm32

import "armlift/internal/ir"

// Multiply and bit-twiddling emitters.

func (e *liftEnv) liftMUL(setFlags bool) error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rn, err := e.regOperand(1)
	if err != nil {
		return err
	}
	rm, err := e.regOperand(2)
	if err != nil {
		return err
	}
	nv, err := e.reg(rn)
	if err != nil {
		return err
	}
	mv, err := e.reg(rm)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	t := e.b.NewTemp(32)
	e.b.Put(t, ir.Mul(nv, mv))
	dv, err := e.reg(dst)
	if err != nil {
		return err
	}
	e.b.Put(dv, t)
	if setFlags {
		if err := e.setNZ(t); err != nil {
			return err
		}
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftMLA is Rd = Ra + Rn*Rm; liftMLS subtracts instead.
func (e *liftEnv) liftMLA(setFlags bool) error {
	return e.liftMulAcc(setFlags, false)
}

func (e *liftEnv) liftMLS() error {
	return e.liftMulAcc(false, true)
}

func (e *liftEnv) liftMulAcc(setFlags, subtract bool) error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rn, err := e.regOperand(1)
	if err != nil {
		return err
	}
	rm, err := e.regOperand(2)
	if err != nil {
		return err
	}
	ra, err := e.regOperand(3)
	if err != nil {
		return err
	}
	nv, err := e.reg(rn)
	if err != nil {
		return err
	}
	mv, err := e.reg(rm)
	if err != nil {
		return err
	}
	av, err := e.reg(ra)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	t := e.b.NewTemp(32)
	if subtract {
		e.b.Put(t, ir.Sub(av, ir.Mul(nv, mv)))
	} else {
		e.b.Put(t, ir.Add(av, ir.Mul(nv, mv)))
	}
	dv, err := e.reg(dst)
	if err != nil {
		return err
	}
	e.b.Put(dv, t)
	if setFlags {
		if err := e.setNZ(t); err != nil {
			return err
		}
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftMulLong covers UMULL/SMULL/UMLAL/SMLAL: the 64-bit product is
// built in a temporary, accumulated when requested, and split across
// RdLo/RdHi.
func (e *liftEnv) liftMulLong(signed, accumulate, setFlags bool) error {
	rdLo, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rdHi, err := e.regOperand(1)
	if err != nil {
		return err
	}
	rn, err := e.regOperand(2)
	if err != nil {
		return err
	}
	rm, err := e.regOperand(3)
	if err != nil {
		return err
	}
	nv, err := e.reg(rn)
	if err != nil {
		return err
	}
	mv, err := e.reg(rm)
	if err != nil {
		return err
	}
	lov, err := e.reg(rdLo)
	if err != nil {
		return err
	}
	hiv, err := e.reg(rdHi)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	ext := ir.ZExt
	if signed {
		ext = ir.SExt
	}
	product := ir.Mul(ext(64, nv), ext(64, mv))
	if accumulate {
		product = ir.Add(product, ir.ConcatE(hiv, lov))
	}
	t := e.b.NewTemp(64)
	e.b.Put(t, product)
	e.b.Put(lov, ir.ExtractLow(32, t))
	e.b.Put(hiv, ir.ExtractHigh(32, t))
	if setFlags {
		apsr, err := e.reg(APSR)
		if err != nil {
			return err
		}
		setPSR(e.b, apsr, PSRN, ir.ExtractHigh(1, t))
		setPSR(e.b, apsr, PSRZ, ir.Eq(t, ir.Num0(64)))
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftCLZ counts leading zeros with a branch-free binary search kept in
// two running temporaries.
func (e *liftEnv) liftCLZ() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rm, err := e.regOperand(1)
	if err != nil {
		return err
	}
	mv, err := e.reg(rm)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	x := e.b.NewTemp(32)
	n := e.b.NewTemp(32)
	e.b.Put(x, mv)
	e.b.Put(n, ir.Num0(32))
	for _, s := range []uint64{16, 8, 4, 2, 1} {
		y := ir.Shr(x, ir.NumU64(s, 32))
		nonzero := ir.Ne(y, ir.Num0(32))
		e.b.Put(n, ir.IteE(nonzero, ir.Add(n, ir.NumU64(s, 32)), n))
		e.b.Put(x, ir.IteE(nonzero, y, x))
	}
	dv, err := e.reg(dst)
	if err != nil {
		return err
	}
	// n now holds floor(log2(input)) for nonzero inputs.
	e.b.Put(dv, ir.IteE(
		ir.Eq(mv, ir.Num0(32)),
		ir.NumU64(32, 32),
		ir.Sub(ir.NumU64(31, 32), n)))
	e.endCondGate(fail, gated)
	return nil
}

// liftRBIT reverses the bit order with the usual mask-and-merge ladder.
func (e *liftEnv) liftRBIT() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rm, err := e.regOperand(1)
	if err != nil {
		return err
	}
	mv, err := e.reg(rm)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	t := e.b.NewTemp(32)
	e.b.Put(t, mv)
	steps := []struct {
		hi, lo uint64
		sh     uint64
	}{
		{0xAAAAAAAA, 0x55555555, 1},
		{0xCCCCCCCC, 0x33333333, 2},
		{0xF0F0F0F0, 0x0F0F0F0F, 4},
		{0xFF00FF00, 0x00FF00FF, 8},
	}
	for _, s := range steps {
		e.b.Put(t, ir.Or(
			ir.Shr(ir.And(t, ir.NumU64(s.hi, 32)), ir.NumU64(s.sh, 32)),
			ir.Shl(ir.And(t, ir.NumU64(s.lo, 32)), ir.NumU64(s.sh, 32))))
	}
	dv, err := e.reg(dst)
	if err != nil {
		return err
	}
	e.b.Put(dv, ir.Or(
		ir.Shr(t, ir.NumU64(16, 32)),
		ir.Shl(t, ir.NumU64(16, 32))))
	e.endCondGate(fail, gated)
	return nil
}

// byteOf extracts byte i of a 32-bit expression.
func byteOf(x ir.Expr, i int) ir.Expr { return ir.ExtractE(x, 8, i*8) }

func (e *liftEnv) liftByteReverse(build func(mv ir.Expr) ir.Expr) error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rm, err := e.regOperand(1)
	if err != nil {
		return err
	}
	mv, err := e.reg(rm)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	dv, err := e.reg(dst)
	if err != nil {
		return err
	}
	e.b.Put(dv, build(mv))
	e.endCondGate(fail, gated)
	return nil
}

func (e *liftEnv) liftREV() error {
	return e.liftByteReverse(func(mv ir.Expr) ir.Expr {
		return ir.ConcatE(
			ir.ConcatE(ir.ConcatE(byteOf(mv, 0), byteOf(mv, 1)), byteOf(mv, 2)),
			byteOf(mv, 3))
	})
}

func (e *liftEnv) liftREV16() error {
	return e.liftByteReverse(func(mv ir.Expr) ir.Expr {
		return ir.ConcatE(
			ir.ConcatE(ir.ConcatE(byteOf(mv, 2), byteOf(mv, 3)), byteOf(mv, 0)),
			byteOf(mv, 1))
	})
}

func (e *liftEnv) liftREVSH() error {
	return e.liftByteReverse(func(mv ir.Expr) ir.Expr {
		return ir.SExt(32, ir.ConcatE(byteOf(mv, 0), byteOf(mv, 1)))
	})
}
