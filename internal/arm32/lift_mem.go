package arm32

import (
	"fmt"
	"math/bits"

	"armlift/internal/ir"
)

// Load/store emitters, single and block.

// liftLoad covers LDR, LDRB, LDRH, LDRSB, LDRSH. The loaded value goes
// through a temporary so the base write-back lands between the access
// and the destination write.
func (e *liftEnv) liftLoad(w int, signed bool) error {
	rt, err := e.regOperand(0)
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
	var loaded ir.Expr = ir.LoadLE(w, mo.addr)
	if w < 32 {
		if signed {
			loaded = ir.SExt(32, loaded)
		} else {
			loaded = ir.ZExt(32, loaded)
		}
	}
	t := e.b.NewTemp(32)
	e.b.Put(t, loaded)
	mo.emitWriteBack(e.b)
	if rt == PC {
		if err := e.loadWritePC(t); err != nil {
			return err
		}
	} else {
		tv, err := e.reg(rt)
		if err != nil {
			return err
		}
		e.b.Put(tv, t)
	}
	e.endCondGate(fail, gated)
	return nil
}

func (e *liftEnv) liftLDRD() error {
	rt, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rt2, err := e.regOperand(1)
	if err != nil {
		return err
	}
	m, err := e.memOperandAt(2)
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
	t1 := e.b.NewTemp(32)
	t2 := e.b.NewTemp(32)
	e.b.Put(t1, ir.LoadLE(32, mo.addr))
	e.b.Put(t2, ir.LoadLE(32, ir.Add(mo.addr, ir.NumU64(4, 32))))
	mo.emitWriteBack(e.b)
	tv, err := e.reg(rt)
	if err != nil {
		return err
	}
	t2v, err := e.reg(rt2)
	if err != nil {
		return err
	}
	e.b.Put(tv, t1)
	e.b.Put(t2v, t2)
	e.endCondGate(fail, gated)
	return nil
}

func (e *liftEnv) liftStore(w int) error {
	rt, err := e.regOperand(0)
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
	tv, err := e.reg(rt)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	var src ir.Expr = tv
	if w < 32 {
		src = ir.ExtractLow(w, tv)
	}
	e.b.Store(mo.addr, src)
	mo.emitWriteBack(e.b)
	e.endCondGate(fail, gated)
	return nil
}

func (e *liftEnv) liftSTRD() error {
	rt, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rt2, err := e.regOperand(1)
	if err != nil {
		return err
	}
	m, err := e.memOperandAt(2)
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
	tv, err := e.reg(rt)
	if err != nil {
		return err
	}
	t2v, err := e.reg(rt2)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	e.b.Store(mo.addr, tv)
	e.b.Store(ir.Add(mo.addr, ir.NumU64(4, 32)), t2v)
	mo.emitWriteBack(e.b)
	e.endCondGate(fail, gated)
	return nil
}

// blockKind is the block-transfer addressing suffix.
type blockKind int

const (
	blockIA blockKind = iota // increment after
	blockIB                  // increment before
	blockDA                  // decrement after
	blockDB                  // decrement before
)

// blockStart builds the lowest access address for a block transfer of
// count words.
func blockStart(kind blockKind, base ir.Expr, count int) (ir.Expr, error) {
	n := uint64(count) * 4
	switch kind {
	case blockIA:
		return base, nil
	case blockIB:
		return ir.Add(base, ir.NumU64(4, 32)), nil
	case blockDA:
		return ir.Sub(base, ir.NumU64(n-4, 32)), nil
	case blockDB:
		return ir.Sub(base, ir.NumU64(n, 32)), nil
	default:
		return nil, fmt.Errorf("%w: block kind %d", ErrInvalidOpcode, int(kind))
	}
}

// blockNewBase is the written-back base value.
func blockNewBase(kind blockKind, base ir.Expr, count int) ir.Expr {
	n := ir.NumU64(uint64(count)*4, 32)
	if kind == blockDA || kind == blockDB {
		return ir.Sub(base, n)
	}
	return ir.Add(base, n)
}

// parseBlockOperands splits (Rn, reglist) and returns the base register
// plus the 16-bit mask.
func (e *liftEnv) parseBlockOperands() (Register, uint16, error) {
	rn, err := e.regOperand(0)
	if err != nil {
		return 0, 0, err
	}
	if len(e.ins.Operands) < 2 {
		return 0, 0, e.operandErr()
	}
	list, ok := e.ins.Operands[1].(OprRegList)
	if !ok {
		return 0, 0, e.operandErr()
	}
	mask, err := regListMask(list.Regs)
	if err != nil {
		return 0, 0, err
	}
	if mask == 0 {
		return 0, 0, fmt.Errorf("%w: empty register list", ErrInvalidOperand)
	}
	return rn, uint16(mask), nil
}

// liftBlockLoad emits LDM and its addressing variants: one load per set
// mask bit, low to high, addresses rising by four; bit 15 interworks
// through loadWritePC. Write-back leaves the base undefined when the
// base is also loaded.
func (e *liftEnv) liftBlockLoad(kind blockKind) error {
	rn, mask, err := e.parseBlockOperands()
	if err != nil {
		return err
	}
	base, err := e.reg(rn)
	if err != nil {
		return err
	}
	count := bits.OnesCount16(mask)
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	start, err := blockStart(kind, base, count)
	if err != nil {
		return err
	}
	addr := e.b.NewTemp(32)
	e.b.Put(addr, start)

	var pcTemp *ir.Temp
	slot := 0
	for bit := 0; bit < 16; bit++ {
		if mask&(1<<uint(bit)) == 0 {
			continue
		}
		loc := ir.Expr(addr)
		if slot > 0 {
			loc = ir.Add(addr, ir.NumU64(uint64(slot)*4, 32))
		}
		if bit == 15 {
			pcTemp = e.b.NewTemp(32)
			e.b.Put(pcTemp, ir.LoadLE(32, loc))
		} else {
			reg, err := RegFromNumber(bit)
			if err != nil {
				return err
			}
			rv, err := e.reg(reg)
			if err != nil {
				return err
			}
			e.b.Put(rv, ir.LoadLE(32, loc))
		}
		slot++
	}
	if e.ins.WriteBack {
		if n, _ := rn.Number(); mask&(1<<uint(n)) != 0 {
			// Base also loaded: the written-back value is UNKNOWN.
			e.b.Put(base, ir.Undef(32, "base in register list"))
		} else {
			e.b.Put(base, blockNewBase(kind, base, count))
		}
	}
	if pcTemp != nil {
		if err := e.loadWritePC(pcTemp); err != nil {
			return err
		}
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftBlockStore emits STM and variants. A stored PC reads as the
// instruction address plus the usual pipeline offset.
func (e *liftEnv) liftBlockStore(kind blockKind) error {
	rn, mask, err := e.parseBlockOperands()
	if err != nil {
		return err
	}
	base, err := e.reg(rn)
	if err != nil {
		return err
	}
	count := bits.OnesCount16(mask)
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	start, err := blockStart(kind, base, count)
	if err != nil {
		return err
	}
	addr := e.b.NewTemp(32)
	e.b.Put(addr, start)

	slot := 0
	for bit := 0; bit < 16; bit++ {
		if mask&(1<<uint(bit)) == 0 {
			continue
		}
		loc := ir.Expr(addr)
		if slot > 0 {
			loc = ir.Add(addr, ir.NumU64(uint64(slot)*4, 32))
		}
		var src ir.Expr
		if bit == 15 {
			off := uint64(8)
			if e.ins.Mode == ModeThumb {
				off = 4
			}
			src = ir.NumU64(e.ins.Addr+off, 32)
		} else {
			reg, err := RegFromNumber(bit)
			if err != nil {
				return err
			}
			rv, err := e.reg(reg)
			if err != nil {
				return err
			}
			src = rv
		}
		e.b.Store(loc, src)
		slot++
	}
	if e.ins.WriteBack {
		e.b.Put(base, blockNewBase(kind, base, count))
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftPUSH is STMDB SP! with the list as the only operand.
func (e *liftEnv) liftPUSH() error {
	return e.liftStackBlock(OpSTMDB)
}

// liftPOP is LDMIA SP!.
func (e *liftEnv) liftPOP() error {
	return e.liftStackBlock(OpLDM)
}

// liftStackBlock rewrites PUSH/POP into the equivalent block transfer
// on SP with write-back and re-dispatches.
func (e *liftEnv) liftStackBlock(op Opcode) error {
	if len(e.ins.Operands) != 1 {
		return e.operandErr()
	}
	rewritten := *e.ins
	rewritten.Opcode = op
	rewritten.Operands = []Operand{OprReg{Reg: SP}, e.ins.Operands[0]}
	rewritten.WriteBack = true
	saved := e.ins
	e.ins = &rewritten
	defer func() { e.ins = saved }()
	if op == OpSTMDB {
		return e.liftBlockStore(blockDB)
	}
	return e.liftBlockLoad(blockIA)
}
