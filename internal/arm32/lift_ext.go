package arm32

import (
	"fmt"
	"strings"

	"armlift/internal/ir"
)

// Extend, bit-field, and status-register transfer emitters.

// liftExtend handles [SU]XT[BH] and the accumulating [SU]XTA[BH]
// variants: rotate the source, take the low byte or halfword, extend,
// and optionally add the first source register.
func (e *liftEnv) liftExtend(w int, signed, accumulate bool) error {
	apsrC, err := e.carryIn()
	if err != nil {
		return err
	}
	oprs := e.ins.Operands
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	var acc ir.Expr
	src := 1
	if accumulate {
		rn, err := e.regOperand(1)
		if err != nil {
			return err
		}
		acc, err = e.reg(rn)
		if err != nil {
			return err
		}
		src = 2
	}
	rm, err := e.regOperand(src)
	if err != nil {
		return err
	}
	mv, err := e.reg(rm)
	if err != nil {
		return err
	}
	var rot uint8
	if len(oprs) > src+1 {
		sh, ok := oprs[src+1].(OprShift)
		if !ok || sh.Kind != ShiftROR {
			return e.operandErr()
		}
		rot = sh.Amount
	}
	rotated, err := shift(mv, 32, ShiftROR, rot, apsrC)
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
	result := ext(32, ir.ExtractLow(w, rotated))
	if accumulate {
		result = ir.Add(acc, result)
	}
	dv, err := e.reg(dst)
	if err != nil {
		return err
	}
	e.b.Put(dv, result)
	e.endCondGate(fail, gated)
	return nil
}

// bitFieldMask is (2^width - 1) << lsb.
func bitFieldMask(lsb, width int64) uint64 {
	return ((uint64(1) << uint(width)) - 1) << uint(lsb)
}

// liftBFC clears Rd[lsb+width-1 : lsb].
func (e *liftEnv) liftBFC() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	lsb, err := e.immOperand(1)
	if err != nil {
		return err
	}
	width, err := e.immOperand(2)
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
	mask := bitFieldMask(lsb, width)
	e.b.Put(dv, ir.And(dv, ir.NumU64(^mask&0xFFFFFFFF, 32)))
	e.endCondGate(fail, gated)
	return nil
}

// liftBFI inserts Rn[width-1:0] into Rd at lsb.
func (e *liftEnv) liftBFI() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rn, err := e.regOperand(1)
	if err != nil {
		return err
	}
	lsb, err := e.immOperand(2)
	if err != nil {
		return err
	}
	width, err := e.immOperand(3)
	if err != nil {
		return err
	}
	nv, err := e.reg(rn)
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
	mask := bitFieldMask(lsb, width)
	low := ir.And(nv, ir.NumU64((uint64(1)<<uint(width))-1, 32))
	e.b.Put(dv, ir.Or(
		ir.And(dv, ir.NumU64(^mask&0xFFFFFFFF, 32)),
		ir.Shl(low, ir.NumU64(uint64(lsb), 32))))
	e.endCondGate(fail, gated)
	return nil
}

// liftBFX extracts a bit field, zero- or sign-extended to 32 bits.
func (e *liftEnv) liftBFX(signed bool) error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	rn, err := e.regOperand(1)
	if err != nil {
		return err
	}
	lsb, err := e.immOperand(2)
	if err != nil {
		return err
	}
	width, err := e.immOperand(3)
	if err != nil {
		return err
	}
	if width < 1 || lsb+width > 32 {
		return fmt.Errorf("%w: bit field %d@%d", ErrInvalidOperand, width, lsb)
	}
	nv, err := e.reg(rn)
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
	field := ir.ExtractE(nv, int(width), int(lsb))
	if signed {
		e.b.Put(dv, ir.SExt(32, field))
	} else {
		e.b.Put(dv, ir.ZExt(32, field))
	}
	e.endCondGate(fail, gated)
	return nil
}

// liftMRS reads a status register into a core register.
func (e *liftEnv) liftMRS() error {
	dst, err := e.regOperand(0)
	if err != nil {
		return err
	}
	if len(e.ins.Operands) < 2 {
		return e.operandErr()
	}
	src, ok := e.ins.Operands[1].(OprSpecReg)
	if !ok {
		return e.operandErr()
	}
	sv, err := e.reg(src.Reg)
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
	e.b.Put(dv, sv)
	e.endCondGate(fail, gated)
	return nil
}

// msrByteMask maps the "_fsxc" suffix of an MSR operand to the byte
// lanes it writes; an empty suffix writes the whole register.
func msrByteMask(flags string) uint64 {
	if flags == "" {
		return 0xFFFFFFFF
	}
	var mask uint64
	if strings.ContainsRune(flags, 'f') {
		mask |= 0xFF000000
	}
	if strings.ContainsRune(flags, 's') {
		mask |= 0x00FF0000
	}
	if strings.ContainsRune(flags, 'x') {
		mask |= 0x0000FF00
	}
	if strings.ContainsRune(flags, 'c') {
		mask |= 0x000000FF
	}
	return mask
}

// liftMSR writes the selected byte lanes of a status register from an
// immediate or register source.
func (e *liftEnv) liftMSR() error {
	if len(e.ins.Operands) < 2 {
		return e.operandErr()
	}
	spec, ok := e.ins.Operands[0].(OprSpecReg)
	if !ok {
		return e.operandErr()
	}
	src, err := e.transOpr(e.ins.Operands[1])
	if err != nil {
		return err
	}
	pv, err := e.reg(spec.Reg)
	if err != nil {
		return err
	}
	fail, gated, err := e.startCondGate()
	if err != nil {
		return err
	}
	mask := msrByteMask(spec.Flags)
	e.b.Put(pv, ir.Or(
		ir.And(pv, ir.NumU64(^mask&0xFFFFFFFF, 32)),
		ir.And(src, ir.NumU64(mask, 32))))
	e.endCondGate(fail, gated)
	return nil
}
