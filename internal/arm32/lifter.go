// Package arm32 lifts decoded ARM/Thumb instructions into the IR. The
// entry point is Translate; everything else implements the ARM
// architecture manual's pseudocode: condition gating, shifter carry,
// status-register effects, PC-write rules, and the per-instruction
// semantics.
package arm32

import (
	"fmt"

	"armlift/internal/ir"
)

// statement capacity hint for one instruction; block transfers routinely
// exceed it, append simply grows.
const stmtHint = 16

// Translate lifts one instruction into an IR statement sequence. The
// output begins with exactly one ISMark and ends with exactly one
// IEMark. The context is read-only and may be shared; the builder, and
// with it the temporary-variable source, is private to this call.
func Translate(ins *InstructionInfo, ctx Context) ([]ir.Stmt, error) {
	e := &liftEnv{ins: ins, ctx: ctx, b: ir.NewBuilder(stmtHint)}
	if err := e.dispatch(); err != nil {
		return nil, err
	}
	return e.b.Finish(), nil
}

// liftEnv bundles the per-translation state threaded through the
// emitters.
type liftEnv struct {
	ins *InstructionInfo
	ctx Context
	b   *ir.Builder
}

func (e *liftEnv) dispatch() error {
	switch e.ins.Opcode {
	case OpADD:
		return e.liftArith(arithADD, false)
	case OpADDS:
		return e.liftArith(arithADD, true)
	case OpSUB:
		return e.liftArith(arithSUB, false)
	case OpSUBS:
		return e.liftArith(arithSUB, true)
	case OpRSB:
		return e.liftArith(arithRSB, false)
	case OpRSBS:
		return e.liftArith(arithRSB, true)
	case OpADC:
		return e.liftArith(arithADC, false)
	case OpADCS:
		return e.liftArith(arithADC, true)
	case OpSBC:
		return e.liftArith(arithSBC, false)
	case OpSBCS:
		return e.liftArith(arithSBC, true)
	case OpRSC:
		return e.liftArith(arithRSC, false)
	case OpRSCS:
		return e.liftArith(arithRSC, true)
	case OpCMP:
		return e.liftCompare(arithSUB)
	case OpCMN:
		return e.liftCompare(arithADD)
	case OpAND:
		return e.liftLogical(logicAND, false)
	case OpANDS:
		return e.liftLogical(logicAND, true)
	case OpORR:
		return e.liftLogical(logicORR, false)
	case OpORRS:
		return e.liftLogical(logicORR, true)
	case OpEOR:
		return e.liftLogical(logicEOR, false)
	case OpEORS:
		return e.liftLogical(logicEOR, true)
	case OpBIC:
		return e.liftLogical(logicBIC, false)
	case OpBICS:
		return e.liftLogical(logicBIC, true)
	case OpORN:
		return e.liftLogical(logicORN, false)
	case OpORNS:
		return e.liftLogical(logicORN, true)
	case OpMOV:
		return e.liftLogical(logicMOV, false)
	case OpMOVS:
		return e.liftLogical(logicMOV, true)
	case OpMVN:
		return e.liftLogical(logicMVN, false)
	case OpMVNS:
		return e.liftLogical(logicMVN, true)
	case OpTST:
		return e.liftLogicalTest(logicAND)
	case OpTEQ:
		return e.liftLogicalTest(logicEOR)
	case OpLSL:
		return e.liftShiftOp(ShiftLSL, false)
	case OpLSLS:
		return e.liftShiftOp(ShiftLSL, true)
	case OpLSR:
		return e.liftShiftOp(ShiftLSR, false)
	case OpLSRS:
		return e.liftShiftOp(ShiftLSR, true)
	case OpASR:
		return e.liftShiftOp(ShiftASR, false)
	case OpASRS:
		return e.liftShiftOp(ShiftASR, true)
	case OpROR:
		return e.liftShiftOp(ShiftROR, false)
	case OpRORS:
		return e.liftShiftOp(ShiftROR, true)
	case OpRRX:
		return e.liftShiftOp(ShiftRRX, false)
	case OpRRXS:
		return e.liftShiftOp(ShiftRRX, true)
	case OpMOVW:
		return e.liftMOVW()
	case OpMOVT:
		return e.liftMOVT()
	case OpADR:
		return e.liftADR()

	case OpMUL:
		return e.liftMUL(false)
	case OpMULS:
		return e.liftMUL(true)
	case OpMLA:
		return e.liftMLA(false)
	case OpMLAS:
		return e.liftMLA(true)
	case OpMLS:
		return e.liftMLS()
	case OpUMULL:
		return e.liftMulLong(false, false, false)
	case OpUMULLS:
		return e.liftMulLong(false, false, true)
	case OpSMULL:
		return e.liftMulLong(true, false, false)
	case OpSMULLS:
		return e.liftMulLong(true, false, true)
	case OpUMLAL:
		return e.liftMulLong(false, true, false)
	case OpSMLAL:
		return e.liftMulLong(true, true, false)

	case OpCLZ:
		return e.liftCLZ()
	case OpRBIT:
		return e.liftRBIT()
	case OpREV:
		return e.liftREV()
	case OpREV16:
		return e.liftREV16()
	case OpREVSH:
		return e.liftREVSH()
	case OpNOP, OpSEV, OpWFE, OpWFI, OpYIELD:
		return e.liftHint()
	case OpSVC:
		return e.liftSideEffect(ir.SideSysCall)
	case OpBKPT:
		return e.liftSideEffect(ir.SideBreakpoint)

	case OpSXTB:
		return e.liftExtend(8, true, false)
	case OpSXTH:
		return e.liftExtend(16, true, false)
	case OpUXTB:
		return e.liftExtend(8, false, false)
	case OpUXTH:
		return e.liftExtend(16, false, false)
	case OpSXTAB:
		return e.liftExtend(8, true, true)
	case OpSXTAH:
		return e.liftExtend(16, true, true)
	case OpUXTAB:
		return e.liftExtend(8, false, true)
	case OpUXTAH:
		return e.liftExtend(16, false, true)

	case OpBFC:
		return e.liftBFC()
	case OpBFI:
		return e.liftBFI()
	case OpUBFX:
		return e.liftBFX(false)
	case OpSBFX:
		return e.liftBFX(true)

	case OpMRS:
		return e.liftMRS()
	case OpMSR:
		return e.liftMSR()

	case OpB:
		return e.liftB()
	case OpBL:
		return e.liftBL()
	case OpBLX:
		return e.liftBLX()
	case OpBX:
		return e.liftBX()
	case OpCBZ:
		return e.liftCBZ(true)
	case OpCBNZ:
		return e.liftCBZ(false)
	case OpTBB:
		return e.liftTableBranch(8)
	case OpTBH:
		return e.liftTableBranch(16)

	case OpLDR:
		return e.liftLoad(32, false)
	case OpLDRB:
		return e.liftLoad(8, false)
	case OpLDRH:
		return e.liftLoad(16, false)
	case OpLDRSB:
		return e.liftLoad(8, true)
	case OpLDRSH:
		return e.liftLoad(16, true)
	case OpLDRD:
		return e.liftLDRD()
	case OpSTR:
		return e.liftStore(32)
	case OpSTRB:
		return e.liftStore(8)
	case OpSTRH:
		return e.liftStore(16)
	case OpSTRD:
		return e.liftSTRD()

	case OpLDM:
		return e.liftBlockLoad(blockIA)
	case OpLDMIB:
		return e.liftBlockLoad(blockIB)
	case OpLDMDA:
		return e.liftBlockLoad(blockDA)
	case OpLDMDB:
		return e.liftBlockLoad(blockDB)
	case OpSTM:
		return e.liftBlockStore(blockIA)
	case OpSTMIB:
		return e.liftBlockStore(blockIB)
	case OpSTMDA:
		return e.liftBlockStore(blockDA)
	case OpSTMDB:
		return e.liftBlockStore(blockDB)
	case OpPUSH:
		return e.liftPUSH()
	case OpPOP:
		return e.liftPOP()

	case OpVLDR:
		return e.liftVLDR()
	case OpVSTR:
		return e.liftVSTR()
	case OpVPUSH:
		return e.liftVPUSH()
	case OpVPOP:
		return e.liftVPOP()
	case OpVADD, OpVSUB, OpVMUL, OpVDIV, OpVMOV, OpVCMP, OpVCVT,
		OpVMLA, OpVMLS:
		return e.liftSideEffect(ir.SideUnsupportedFP)

	default:
		return fmt.Errorf("%w: %s", ErrNotImplemented, e.ins.Opcode)
	}
}

// operandErr builds an InvalidOperand error for the current opcode.
func (e *liftEnv) operandErr() error {
	return fmt.Errorf("%w: %s with %d operand(s)", ErrInvalidOperand,
		e.ins.Opcode, len(e.ins.Operands))
}

// regOperand extracts a plain register at operand position i.
func (e *liftEnv) regOperand(i int) (Register, error) {
	if i >= len(e.ins.Operands) {
		return 0, e.operandErr()
	}
	r, ok := e.ins.Operands[i].(OprReg)
	if !ok {
		return 0, e.operandErr()
	}
	return r.Reg, nil
}

// immOperand extracts an immediate at operand position i.
func (e *liftEnv) immOperand(i int) (int64, error) {
	if i >= len(e.ins.Operands) {
		return 0, e.operandErr()
	}
	imm, ok := e.ins.Operands[i].(OprImm)
	if !ok {
		return 0, e.operandErr()
	}
	return imm.Val, nil
}

// memOperandAt extracts a memory operand at position i.
func (e *liftEnv) memOperandAt(i int) (OprMemory, error) {
	if i >= len(e.ins.Operands) {
		return OprMemory{}, e.operandErr()
	}
	m, ok := e.ins.Operands[i].(OprMemory)
	if !ok {
		return OprMemory{}, e.operandErr()
	}
	return m, nil
}

// flexSrc lowers the flexible second operand: the trailing operands
// after the fixed registers. Forms: immediate, register, or register
// with an attached shift. Returns the value and the shifter carry-out.
func (e *liftEnv) flexSrc(oprs []Operand, carryIn ir.Expr) (ir.Expr, ir.Expr, error) {
	switch len(oprs) {
	case 1:
		switch o := oprs[0].(type) {
		case OprImm:
			// The decoder pre-rotates modified immediates, so the
			// shifter carry stays the prior carry here.
			return ir.NumI64(o.Val, 32), carryIn, nil
		case OprReg:
			rv, err := e.reg(o.Reg)
			if err != nil {
				return nil, nil, err
			}
			return rv, carryIn, nil
		}
	case 2:
		if r, ok := oprs[0].(OprReg); ok {
			return e.transShiftedReg(r.Reg, oprs[1], carryIn)
		}
	}
	return nil, nil, e.operandErr()
}

// setNZ updates APSR.N and APSR.Z from a 32-bit result.
func (e *liftEnv) setNZ(result ir.Expr) error {
	apsr, err := e.reg(APSR)
	if err != nil {
		return err
	}
	setPSR(e.b, apsr, PSRN, ir.ExtractHigh(1, result))
	setPSR(e.b, apsr, PSRZ, ir.Eq(result, ir.Num0(32)))
	return nil
}

// setNZC updates N, Z, and C; the logical data-processing flags.
func (e *liftEnv) setNZC(result, carry ir.Expr) error {
	if err := e.setNZ(result); err != nil {
		return err
	}
	apsr, err := e.reg(APSR)
	if err != nil {
		return err
	}
	setPSR(e.b, apsr, PSRC, carry)
	return nil
}

// setNZCV updates all four arithmetic flags.
func (e *liftEnv) setNZCV(result, carry, overflow ir.Expr) error {
	if err := e.setNZC(result, carry); err != nil {
		return err
	}
	apsr, err := e.reg(APSR)
	if err != nil {
		return err
	}
	setPSR(e.b, apsr, PSRV, overflow)
	return nil
}

// liftHint covers NOP and the event hints: a condition gate around an
// empty body.
func (e *liftEnv) liftHint() error {
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftSideEffect emits a single opaque side effect.
func (e *liftEnv) liftSideEffect(kind ir.SideEffectKind) error {
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	e.b.SideEffect(kind)
	e.endCondGate(fail, gated)
	return nil
}
