package arm32

import (
	"fmt"

	"armlift/internal/ir"
)

// VFP transfer emitters. Only the load/store shapes are modeled;
// arithmetic goes through SideEffect(UnsupportedFP). Single-precision
// registers move as 32-bit accesses, double-precision ones as two
// 32-bit halves concatenated hi over lo.

func (e *liftEnv) simdOperand(i int) (Register, error) {
	if i >= len(e.ins.Operands) {
		return 0, e.operandErr()
	}
	s, ok := e.ins.Operands[i].(OprSIMD)
	if !ok {
		return 0, e.operandErr()
	}
	if !s.Reg.IsSingle() && !s.Reg.IsDouble() {
		return 0, fmt.Errorf("%w: %s as SIMD operand", ErrInvalidRegister, s.Reg)
	}
	return s.Reg, nil
}

func (e *liftEnv) liftVLDR() error {
	rd, err := e.simdOperand(0)
	if err != nil {
		return err
	}
	m, err := e.memOperandAt(1)
	if err != nil {
		return err
	}
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	mo, err := e.transMemOpr(m, apsrC)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	dv, err := e.reg(rd)
	if err != nil {
		return err
	}
	if rd.IsSingle() {
		e.b.Put(dv, ir.LoadLE(32, mo.addr))
	} else {
		lo := ir.LoadLE(32, mo.addr)
		hi := ir.LoadLE(32, ir.Add(mo.addr, ir.NumU64(4, 32)))
		e.b.Put(dv, ir.ConcatE(hi, lo))
	}
	mo.emitWriteBack(e.b)
	e.endCondGate(fail, gated)
	return nil
}

func (e *liftEnv) liftVSTR() error {
	rd, err := e.simdOperand(0)
	if err != nil {
		return err
	}
	m, err := e.memOperandAt(1)
	if err != nil {
		return err
	}
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	mo, err := e.transMemOpr(m, apsrC)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	dv, err := e.reg(rd)
	if err != nil {
		return err
	}
	if rd.IsSingle() {
		e.b.Store(mo.addr, dv)
	} else {
		e.b.Store(mo.addr, ir.ExtractLow(32, dv))
		e.b.Store(ir.Add(mo.addr, ir.NumU64(4, 32)), ir.ExtractHigh(32, dv))
	}
	mo.emitWriteBack(e.b)
	e.endCondGate(fail, gated)
	return nil
}

// vfpList extracts the SIMD register list and its access stride: four
// bytes for S registers, eight for D registers.
func (e *liftEnv) vfpList() ([]Register, int, error) {
	if len(e.ins.Operands) != 1 {
		return nil, 0, e.operandErr()
	}
	list, ok := e.ins.Operands[0].(OprRegList)
	if !ok {
		return nil, 0, e.operandErr()
	}
	if len(list.Regs) == 0 {
		return nil, 0, fmt.Errorf("%w: empty register list", ErrInvalidOperand)
	}
	first := list.Regs[0]
	stride := 4
	if first.IsDouble() {
		stride = 8
	}
	for _, r := range list.Regs {
		if r.IsSingle() != first.IsSingle() || r.IsDouble() != first.IsDouble() {
			return nil, 0, fmt.Errorf("%w: mixed register list", ErrInvalidRegister)
		}
	}
	return list.Regs, stride, nil
}

// liftVPUSH stores the list below SP and decrements it.
func (e *liftEnv) liftVPUSH() error {
	regs, stride, err := e.vfpList()
	if err != nil {
		return err
	}
	sp, err := e.reg(SP)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	total := uint64(len(regs) * stride)
	addr := e.b.NewTemp(32)
	e.b.Put(addr, ir.Sub(sp, ir.NumU64(total, 32)))
	for i, r := range regs {
		rv, err := e.reg(r)
		if err != nil {
			return err
		}
		loc := ir.Expr(addr)
		if i > 0 {
			loc = ir.Add(addr, ir.NumU64(uint64(i*stride), 32))
		}
		if stride == 4 {
			e.b.Store(loc, rv)
		} else {
			e.b.Store(loc, ir.ExtractLow(32, rv))
			e.b.Store(ir.Add(loc, ir.NumU64(4, 32)), ir.ExtractHigh(32, rv))
		}
	}
	e.b.Put(sp, ir.Sub(sp, ir.NumU64(total, 32)))
	e.endCondGate(fail, gated)
	return nil
}

// liftVPOP loads the list from SP upward and increments it.
func (e *liftEnv) liftVPOP() error {
	regs, stride, err := e.vfpList()
	if err != nil {
		return err
	}
	sp, err := e.reg(SP)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	for i, r := range regs {
		rv, err := e.reg(r)
		if err != nil {
			return err
		}
		loc := ir.Expr(sp)
		if i > 0 {
			loc = ir.Add(sp, ir.NumU64(uint64(i*stride), 32))
		}
		if stride == 4 {
			e.b.Put(rv, ir.LoadLE(32, loc))
		} else {
			lo := ir.LoadLE(32, loc)
			hi := ir.LoadLE(32, ir.Add(loc, ir.NumU64(4, 32)))
			e.b.Put(rv, ir.ConcatE(hi, lo))
		}
	}
	total := uint64(len(regs) * stride)
	e.b.Put(sp, ir.Add(sp, ir.NumU64(total, 32)))
	e.endCondGate(fail, gated)
	return nil
}
