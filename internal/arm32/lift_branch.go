package arm32

import (
	"fmt"

	"armlift/internal/ir"
)

// Branch emitters. Branch immediates carry the absolute target address;
// the decoder front-end resolves PC-relative displacements before the
// lifter sees them.

// returnAddress is the LR value a call leaves behind: the next
// instruction's address, with bit 0 set in Thumb mode so a later BX LR
// interworks back.
func (e *liftEnv) returnAddress() uint64 {
	next := e.ins.Addr + uint64(e.ins.NumBytes)
	if e.ins.Mode == ModeThumb {
		return next | 1
	}
	return next
}

func (e *liftEnv) liftB() error {
	target, err := e.immOperand(0)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	if err := e.branchWritePC(ir.NumI64(target, 32)); err != nil {
		return err
	}
	e.endCondGate(fail, gated)
	return nil
}

// checkArchMode rejects a call whose decoded mode disagrees with the
// translation context; interworking state would otherwise go wrong.
func (e *liftEnv) checkArchMode() error {
	if e.ins.Mode != e.ctx.Mode() {
		return fmt.Errorf("%w: instruction is %s, context is %s",
			ErrInvalidTargetArchMode, e.ins.Mode, e.ctx.Mode())
	}
	return nil
}

func (e *liftEnv) liftBL() error {
	if err := e.checkArchMode(); err != nil {
		return err
	}
	target, err := e.immOperand(0)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	lr, err := e.reg(LR)
	if err != nil {
		return err
	}
	e.b.Put(lr, ir.NumU64(e.returnAddress(), 32))
	if err := e.branchWritePC(ir.NumI64(target, 32)); err != nil {
		return err
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftBLX handles both forms: an immediate target always switches the
// instruction set, a register target interworks through bxWritePC.
func (e *liftEnv) liftBLX() error {
	if err := e.checkArchMode(); err != nil {
		return err
	}
	if len(e.ins.Operands) < 1 {
		return e.operandErr()
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	lr, err := e.reg(LR)
	if err != nil {
		return err
	}
	e.b.Put(lr, ir.NumU64(e.returnAddress(), 32))

	switch o := e.ins.Operands[0].(type) {
	case OprImm:
		apsr, err := e.reg(APSR)
		if err != nil {
			return err
		}
		pc, err := e.reg(PC)
		if err != nil {
			return err
		}
		if e.ctx.Mode() == ModeARM {
			// ARM to Thumb.
			enablePSR(e.b, apsr, PSRT)
			e.b.InterJmp(pc, ir.NumU64(uint64(o.Val)&^1, 32))
		} else {
			// Thumb to ARM.
			disablePSR(e.b, apsr, PSRT)
			e.b.InterJmp(pc, ir.NumU64(uint64(o.Val)&^3, 32))
		}
	case OprReg:
		rv, err := e.reg(o.Reg)
		if err != nil {
			return err
		}
		if err := e.bxWritePC(rv); err != nil {
			return err
		}
	default:
		return e.operandErr()
	}
	e.endCondGate(fail, gated)
	return nil
}

func (e *liftEnv) liftBX() error {
	rm, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rv, err := e.reg(rm)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	if err := e.bxWritePC(rv); err != nil {
		return err
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftCBZ covers CBZ and CBNZ; Thumb-only, never conditional, so the
// compare itself is the gate.
func (e *liftEnv) liftCBZ(branchOnZero bool) error {
	rn, err := e.regOperand(0)
	if err != nil {
		return err
	}
	target, err := e.immOperand(1)
	if err != nil {
		return err
	}
	nv, err := e.reg(rn)
	if err != nil {
		return err
	}
	e.b.ISMark(e.ins.Addr, e.ins.NumBytes)
	cond := ir.Eq(nv, ir.Num0(32))
	if !branchOnZero {
		cond = ir.Ne(nv, ir.Num0(32))
	}
	taken := e.b.NewLabel("cbTaken")
	fall := e.b.NewLabel("cbFall")
	e.b.CJmp(cond, taken, fall)
	e.b.LMark(taken)
	if err := e.branchWritePC(ir.NumI64(target, 32)); err != nil {
		return err
	}
	e.b.LMark(fall)
	e.b.IEMark(e.ins.Addr + uint64(e.ins.NumBytes))
	return nil
}

// liftTableBranch covers TBB (byte table) and TBH (halfword table):
// load the entry at Rn + Rm (doubled for TBH), zero-extend, double it,
// and branch that far past the current PC.
func (e *liftEnv) liftTableBranch(w int) error {
	m, err := e.memOperandAt(0)
	if err != nil {
		return err
	}
	base, err := e.reg(m.Base)
	if err != nil {
		return err
	}
	idx, err := e.reg(m.Index)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	offset := ir.Expr(idx)
	if w == 16 {
		offset = ir.Shl(idx, ir.Num1(32))
	}
	entry := ir.LoadLE(w, ir.Add(base, offset))
	t := e.b.NewTemp(32)
	e.b.Put(t, ir.ZExt(32, entry))
	// Thumb PC reads as the instruction address plus four.
	pcRead := ir.NumU64(e.ins.Addr+4, 32)
	target := ir.Add(pcRead, ir.Mul(t, ir.NumU64(2, 32)))
	if err := e.branchWritePC(target); err != nil {
		return err
	}
	e.endCondGate(fail, gated)
	return nil
}
