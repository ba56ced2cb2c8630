package arm32

import "armlift/internal/ir"

// PC-write helpers. Three variants, selected per instruction: plain
// branches align and jump, BX-style writes dispatch on the target's low
// bits to switch instruction sets, and ARMv7 ALU writes to PC behave
// like BX in ARM mode and like a branch in Thumb mode.

// branchWritePC jumps to target with the low bit (Thumb) or low two
// bits (ARM) cleared.
func (e *liftEnv) branchWritePC(target ir.Expr) error {
	pc, err := e.reg(PC)
	if err != nil {
		return err
	}
	mask := uint64(0xFFFFFFFC)
	if e.ctx.Mode() == ModeThumb {
		mask = 0xFFFFFFFE
	}
	e.b.InterJmp(pc, ir.And(target, ir.NumU64(mask, 32)))
	return nil
}

// bxWritePC is the interworking branch: bit 0 set switches to Thumb,
// bit 1 clear switches to ARM, and the remaining encoding is
// architecturally UNPREDICTABLE.
func (e *liftEnv) bxWritePC(target ir.Expr) error {
	pc, err := e.reg(PC)
	if err != nil {
		return err
	}
	apsr, err := e.reg(APSR)
	if err != nil {
		return err
	}
	toThumb := e.b.NewLabel("bxThumb")
	notThumb := e.b.NewLabel("bxNotThumb")
	toARM := e.b.NewLabel("bxARM")
	undef := e.b.NewLabel("bxUndef")

	bit0 := ir.ExtractLow(1, target)
	e.b.CJmp(ir.Eq(bit0, ir.B1()), toThumb, notThumb)

	e.b.LMark(toThumb)
	disablePSR(e.b, apsr, PSRJ)
	enablePSR(e.b, apsr, PSRT)
	e.b.InterJmp(pc, ir.And(target, ir.NumU64(0xFFFFFFFE, 32)))

	e.b.LMark(notThumb)
	bit1 := ir.ExtractE(target, 1, 1)
	e.b.CJmp(ir.Eq(bit1, ir.B0()), toARM, undef)

	e.b.LMark(toARM)
	disablePSR(e.b, apsr, PSRJ)
	disablePSR(e.b, apsr, PSRT)
	e.b.InterJmp(pc, target)

	e.b.LMark(undef)
	e.b.SideEffect(ir.SideUndefinedInstr)
	return nil
}

// writePC is the ARMv7 ALU-write-PC rule.
func (e *liftEnv) writePC(target ir.Expr) error {
	if e.ctx.Mode() == ModeARM {
		return e.bxWritePC(target)
	}
	return e.branchWritePC(target)
}

// loadWritePC is the rule for loads whose destination is PC; from
// ARMv5T on it interworks like BX.
func (e *liftEnv) loadWritePC(target ir.Expr) error {
	return e.bxWritePC(target)
}
