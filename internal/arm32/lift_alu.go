package arm32

import "armlift/internal/ir"

// Data-processing emitters. The common template: parse operands, open
// the condition gate, compute the result, route a PC destination
// through the PC-write rules, update flags for the S-forms, close the
// gate.

type arithKind int

const (
	arithADD arithKind = iota
	arithSUB
	arithRSB
	arithADC
	arithSBC
	arithRSC
)

type logicKind int

const (
	logicAND logicKind = iota
	logicORR
	logicEOR
	logicBIC
	logicORN
	logicMOV
	logicMVN
)

// parseDstSrcFlex splits the operand tuple into destination register,
// first source expression, and flexible second operand (value + shifter
// carry). Two-operand forms reuse the destination as the first source.
func (e *liftEnv) parseDstSrcFlex(carryIn ir.Expr) (Register, ir.Expr, ir.Expr, ir.Expr, error) {
	oprs := e.ins.Operands
	if len(oprs) < 2 {
		return 0, nil, nil, nil, e.operandErr()
	}
	dst, err := e.regOperand(0)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	// (Rd, flex) and (Rd, Rm, regshift/shift) are the two-operand
	// forms; (Rd, Rn, flex...) is the three-operand form.
	var srcReg Register
	var rest []Operand
	switch len(oprs) {
	case 2:
		srcReg, rest = dst, oprs[1:]
	case 3:
		switch oprs[2].(type) {
		case OprShift, OprRegShift:
			srcReg, rest = dst, oprs[1:]
		default:
			r, err := e.regOperand(1)
			if err != nil {
				return 0, nil, nil, nil, err
			}
			srcReg, rest = r, oprs[2:]
		}
	case 4:
		r, err := e.regOperand(1)
		if err != nil {
			return 0, nil, nil, nil, err
		}
		srcReg, rest = r, oprs[2:]
	default:
		return 0, nil, nil, nil, e.operandErr()
	}
	src1, err := e.reg(srcReg)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	src2, shiftCarry, err := e.flexSrc(rest, carryIn)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	return dst, src1, src2, shiftCarry, nil
}

// arithOperands rewrites (a, b) into the addWithCarry triple for each
// arithmetic kind: subtraction complements b with carry-in one, reverse
// forms swap the operands.
func arithOperands(kind arithKind, a, b, apsrC ir.Expr) (ir.Expr, ir.Expr, ir.Expr) {
	switch kind {
	case arithADD:
		return a, b, ir.B0()
	case arithSUB:
		return a, ir.Not(b), ir.B1()
	case arithRSB:
		return b, ir.Not(a), ir.B1()
	case arithADC:
		return a, b, apsrC
	case arithSBC:
		return a, ir.Not(b), apsrC
	default: // arithRSC
		return b, ir.Not(a), apsrC
	}
}

// arithValue is the plain-expression form used when flags are not
// needed.
func arithValue(kind arithKind, a, b, apsrC ir.Expr) ir.Expr {
	switch kind {
	case arithADD:
		return ir.Add(a, b)
	case arithSUB:
		return ir.Sub(a, b)
	case arithRSB:
		return ir.Sub(b, a)
	case arithADC:
		return ir.Add(ir.Add(a, b), ir.ZExt(32, apsrC))
	case arithSBC:
		return ir.Add(ir.Add(a, ir.Not(b)), ir.ZExt(32, apsrC))
	default: // arithRSC
		return ir.Add(ir.Add(ir.Not(a), b), ir.ZExt(32, apsrC))
	}
}

func (e *liftEnv) liftArith(kind arithKind, setFlags bool) error {
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	dst, a, bx, _, err := e.parseDstSrcFlex(apsrC)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	switch {
	case dst == PC && setFlags:
		// SUBS PC, LR and friends: exception return.
		if err := e.exceptionReturn(arithValue(kind, a, bx, apsrC)); err != nil {
			return err
		}
	case dst == PC:
		if err := e.writePC(arithValue(kind, a, bx, apsrC)); err != nil {
			return err
		}
	case setFlags:
		x, y, cin := arithOperands(kind, a, bx, apsrC)
		t, carry, overflow := addWithCarry(e.b, x, y, cin)
		dv, err := e.reg(dst)
		if err != nil {
			return err
		}
		e.b.Put(dv, t)
		if err := e.setNZCV(t, carry, overflow); err != nil {
			return err
		}
	default:
		dv, err := e.reg(dst)
		if err != nil {
			return err
		}
		e.b.Put(dv, arithValue(kind, a, bx, apsrC))
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftCompare handles CMP (subtract) and CMN (add): flags only, no
// destination write.
func (e *liftEnv) liftCompare(kind arithKind) error {
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	oprs := e.ins.Operands
	if len(oprs) < 2 {
		return e.operandErr()
	}
	rn, err := e.regOperand(0)
	if err != nil {
		return err
	}
	a, err := e.reg(rn)
	if err != nil {
		return err
	}
	bx, _, err := e.flexSrc(oprs[1:], apsrC)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	x, y, cin := arithOperands(kind, a, bx, apsrC)
	t, carry, overflow := addWithCarry(e.b, x, y, cin)
	if err := e.setNZCV(t, carry, overflow); err != nil {
		return err
	}
	e.endCondGate(fail, gated)
	return nil
}

func logicValue(kind logicKind, a, b ir.Expr) ir.Expr {
	switch kind {
	case logicAND:
		return ir.And(a, b)
	case logicORR:
		return ir.Or(a, b)
	case logicEOR:
		return ir.Xor(a, b)
	case logicBIC:
		return ir.And(a, ir.Not(b))
	case logicORN:
		return ir.Or(a, ir.Not(b))
	case logicMOV:
		return b
	default: // logicMVN
		return ir.Not(b)
	}
}

func (e *liftEnv) liftLogical(kind logicKind, setFlags bool) error {
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	var dst Register
	var a, bx, shiftCarry ir.Expr
	if kind == logicMOV || kind == logicMVN {
		oprs := e.ins.Operands
		if len(oprs) < 2 {
			return e.operandErr()
		}
		dst, err = e.regOperand(0)
		if err != nil {
			return err
		}
		bx, shiftCarry, err = e.flexSrc(oprs[1:], apsrC)
		if err != nil {
			return err
		}
	} else {
		dst, a, bx, shiftCarry, err = e.parseDstSrcFlex(apsrC)
		if err != nil {
			return err
		}
	}
	result := logicValue(kind, a, bx)

	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	switch {
	case dst == PC && setFlags:
		if err := e.exceptionReturn(result); err != nil {
			return err
		}
	case dst == PC:
		if err := e.writePC(result); err != nil {
			return err
		}
	case setFlags:
		t := e.b.NewTemp(32)
		e.b.Put(t, result)
		dv, err := e.reg(dst)
		if err != nil {
			return err
		}
		e.b.Put(dv, t)
		if err := e.setNZC(t, shiftCarry); err != nil {
			return err
		}
	default:
		dv, err := e.reg(dst)
		if err != nil {
			return err
		}
		e.b.Put(dv, result)
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftLogicalTest handles TST and TEQ: logical flags without a write.
func (e *liftEnv) liftLogicalTest(kind logicKind) error {
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	oprs := e.ins.Operands
	if len(oprs) < 2 {
		return e.operandErr()
	}
	rn, err := e.regOperand(0)
	if err != nil {
		return err
	}
	a, err := e.reg(rn)
	if err != nil {
		return err
	}
	bx, shiftCarry, err := e.flexSrc(oprs[1:], apsrC)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	t := e.b.NewTemp(32)
	e.b.Put(t, logicValue(kind, a, bx))
	if err := e.setNZC(t, shiftCarry); err != nil {
		return err
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftShiftOp handles the shift mnemonics LSL/LSR/ASR/ROR/RRX.
// Immediate forms are (Rd, Rm, #imm); register-amount forms are
// (Rd, Rn, Rm); RRX is (Rd, Rm).
func (e *liftEnv) liftShiftOp(kind ShiftKind, setFlags bool) error {
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	oprs := e.ins.Operands
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	var result, carry ir.Expr
	switch {
	case kind == ShiftRRX && len(oprs) == 2:
		rm, err := e.regOperand(1)
		if err != nil {
			return err
		}
		rv, err := e.reg(rm)
		if err != nil {
			return err
		}
		result, carry, err = shiftC(rv, 32, ShiftRRX, 1, apsrC)
		if err != nil {
			return err
		}
	case len(oprs) == 3:
		rm, err := e.regOperand(1)
		if err != nil {
			return err
		}
		rv, err := e.reg(rm)
		if err != nil {
			return err
		}
		switch amt := oprs[2].(type) {
		case OprImm:
			result, carry, err = shiftC(rv, 32, kind, uint8(amt.Val), apsrC)
			if err != nil {
				return err
			}
		case OprReg:
			rs, err := e.reg(amt.Reg)
			if err != nil {
				return err
			}
			amtE := ir.ZExt(32, ir.ExtractLow(8, rs))
			result, carry, err = shiftCForRegAmount(rv, 32, kind, amtE, apsrC)
			if err != nil {
				return err
			}
		default:
			return e.operandErr()
		}
	default:
		return e.operandErr()
	}

	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	switch {
	case dst == PC:
		if err := e.writePC(result); err != nil {
			return err
		}
	case setFlags:
		t := e.b.NewTemp(32)
		e.b.Put(t, result)
		dv, err := e.reg(dst)
		if err != nil {
			return err
		}
		e.b.Put(dv, t)
		if err := e.setNZC(t, carry); err != nil {
			return err
		}
	default:
		dv, err := e.reg(dst)
		if err != nil {
			return err
		}
		e.b.Put(dv, result)
	}
	e.endCondGate(fail, gated)
	return nil
}

func (e *liftEnv) liftMOVW() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	imm, err := e.immOperand(1)
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
	e.b.Put(dv, ir.NumU64(uint64(imm)&0xFFFF, 32))
	e.endCondGate(fail, gated)
	return nil
}

// liftMOVT replaces the destination's top halfword, keeping the low one.
func (e *liftEnv) liftMOVT() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	imm, err := e.immOperand(1)
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
	low := ir.And(dv, ir.NumU64(0xFFFF, 32))
	high := ir.NumU64((uint64(imm)&0xFFFF)<<16, 32)
	e.b.Put(dv, ir.Or(high, low))
	e.endCondGate(fail, gated)
	return nil
}

// liftADR materializes a PC-relative address.
func (e *liftEnv) liftADR() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	imm, err := e.immOperand(1)
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
	e.b.Put(dv, ir.NumI64(int64(e.ins.Addr&^3)+imm, 32))
	e.endCondGate(fail, gated)
	return nil
}

// exceptionReturn emits the SUBS-PC-LR family: restore CPSR from SPSR
// and branch, after rejecting the modes in which the manual marks the
// instruction UNPREDICTABLE (User, System, Hyp).
func (e *liftEnv) exceptionReturn(result ir.Expr) error {
	cpsr, err := e.reg(CPSR)
	if err != nil {
		return err
	}
	spsr, err := e.reg(SPSR)
	if err != nil {
		return err
	}
	undef := e.b.NewLabel("erUndef")
	ok := e.b.NewLabel("erOk")
	done := e.b.NewLabel("erDone")

	m := getPSR(cpsr, PSRM)
	isUser := ir.Eq(m, ir.NumU64(0x10, 32))
	isSystem := ir.Eq(m, ir.NumU64(0x1F, 32))
	isHyp := ir.Eq(m, ir.NumU64(0x1A, 32))
	bad := ir.Or(ir.Or(isUser, isSystem), isHyp)

	e.b.CJmp(bad, undef, ok)
	e.b.LMark(undef)
	e.b.SideEffect(ir.SideUndefinedInstr)
	e.b.Jmp(done)
	e.b.LMark(ok)
	e.b.Put(cpsr, spsr)
	if err := e.branchWritePC(result); err != nil {
		return err
	}
	e.b.LMark(done)
	return nil
}
