package arm32

import (
	"fmt"

	"armlift/internal/ir"
)

// condExpr builds the 1-bit pass condition for a condition code from
// the APSR flag bits.
func condExpr(apsr *ir.Var, c Condition) (ir.Expr, error) {
	n := psrBit(apsr, PSRN)
	z := psrBit(apsr, PSRZ)
	cf := psrBit(apsr, PSRC)
	v := psrBit(apsr, PSRV)
	switch c {
	case CondEQ:
		return z, nil
	case CondNE:
		return ir.Not(z), nil
	case CondCS:
		return cf, nil
	case CondCC:
		return ir.Not(cf), nil
	case CondMI:
		return n, nil
	case CondPL:
		return ir.Not(n), nil
	case CondVS:
		return v, nil
	case CondVC:
		return ir.Not(v), nil
	case CondHI:
		return ir.And(cf, ir.Not(z)), nil
	case CondLS:
		return ir.Not(ir.And(cf, ir.Not(z))), nil
	case CondGE:
		return ir.Eq(n, v), nil
	case CondLT:
		return ir.Ne(n, v), nil
	case CondGT:
		return ir.And(ir.Eq(n, v), ir.Not(z)), nil
	case CondLE:
		return ir.Not(ir.And(ir.Eq(n, v), ir.Not(z))), nil
	case CondAL, CondUN:
		return ir.B1(), nil
	default:
		return nil, fmt.Errorf("%w: condition %d", ErrInvalidOpcode, int(c))
	}
}

// startCondGate emits the ISMark and, for a conditional instruction,
// the CJmp/LMark prologue. The returned label must be passed to
// endCondGate.
func (e *liftEnv) startCondGate() (ir.Label, bool, error) {
	e.b.ISMark(e.ins.Addr, e.ins.NumBytes)
	if e.ins.Cond == CondAL || e.ins.Cond == CondUN {
		return ir.Label{}, false, nil
	}
	apsr, err := e.reg(APSR)
	if err != nil {
		return ir.Label{}, false, err
	}
	cond, err := condExpr(apsr, e.ins.Cond)
	if err != nil {
		return ir.Label{}, false, err
	}
	pass := e.b.NewLabel("condPass")
	fail := e.b.NewLabel("condFail")
	e.b.CJmp(cond, pass, fail)
	e.b.LMark(pass)
	return fail, true, nil
}

// endCondGate closes the gate opened by startCondGate and emits the
// IEMark.
func (e *liftEnv) endCondGate(fail ir.Label, gated bool) {
	if gated {
		e.b.LMark(fail)
	}
	e.b.IEMark(e.ins.Addr + uint64(e.ins.NumBytes))
}
